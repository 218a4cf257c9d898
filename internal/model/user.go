package model

import (
	"time"

	"gorm.io/gorm"
)

// User represents an admin-backend user stored in the database
// Auth0Sub holds the identity provider's subject identifier (e.g. "auth0|abc123").
// It is opaque text, not a UUID, and nullable because rows created before the
// column existed are matched by email instead.
type User struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	Email          string         `json:"email" gorm:"type:varchar(100);uniqueIndex"`
	Auth0Sub       *string        `json:"auth0_sub,omitempty" gorm:"type:varchar(100);uniqueIndex"`
	Password       string         `json:"-" gorm:"type:varchar(255)"`
	FirstName      string         `json:"first_name" gorm:"type:varchar(100)"`
	LastName       string         `json:"last_name" gorm:"type:varchar(100)"`
	Role           Role           `json:"role" gorm:"type:varchar(50);not null;default:'viewer'"`
	Department     string         `json:"department" gorm:"type:varchar(100)"`
	Location       string         `json:"location" gorm:"type:varchar(100)"`
	Phone          string         `json:"phone" gorm:"type:varchar(50)"`
	OrganisationID *uint          `json:"organisation_id,omitempty" gorm:"index"`
	Active         bool           `json:"active" gorm:"default:true"`
	LastLoginAt    *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Organisation *Organisation `json:"organisation,omitempty" gorm:"foreignKey:OrganisationID"`
}

// FullName returns the user's display name
func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
