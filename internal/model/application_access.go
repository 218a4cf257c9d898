package model

import (
	"time"

	"gorm.io/gorm"
)

// Application is the closed set of product applications a user can be granted
type Application string

const (
	ApplicationDashboard   Application = "dashboard"
	ApplicationReports     Application = "reports"
	ApplicationExperiments Application = "experiments"
	ApplicationAdminPanel  Application = "admin_panel"
)

// ValidApplication reports whether the value is one of the known applications
func ValidApplication(a Application) bool {
	switch a {
	case ApplicationDashboard, ApplicationReports, ApplicationExperiments, ApplicationAdminPanel:
		return true
	}
	return false
}

// UserApplicationAccess represents a per-application access grant for a user
// One row per user x application pair
type UserApplicationAccess struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	UserID      uint           `json:"user_id" gorm:"index:idx_user_application,unique;not null"`
	Application Application    `json:"application" gorm:"type:varchar(50);index:idx_user_application,unique;not null"`
	Granted     bool           `json:"granted" gorm:"default:false"`
	GrantedBy   *uint          `json:"granted_by,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
