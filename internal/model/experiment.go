package model

import (
	"time"

	"gorm.io/gorm"
)

// ExperimentStatus is the lifecycle state of a causal experiment
type ExperimentStatus string

const (
	ExperimentDraft     ExperimentStatus = "draft"
	ExperimentRunning   ExperimentStatus = "running"
	ExperimentCompleted ExperimentStatus = "completed"
)

// CausalExperiment represents an analyst-defined experiment with free-form
// JSON configuration and results, scoped to an organisation
type CausalExperiment struct {
	ID             uint             `json:"id" gorm:"primaryKey"`
	Name           string           `json:"name" gorm:"type:varchar(200);not null"`
	OrganisationID uint             `json:"organisation_id" gorm:"index;not null"`
	Status         ExperimentStatus `json:"status" gorm:"type:varchar(20);not null;default:'draft'"`
	Config         string           `json:"config" gorm:"type:jsonb"`
	Results        string           `json:"results" gorm:"type:jsonb"`
	CreatedBy      uint             `json:"created_by"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
	DeletedAt      gorm.DeletedAt   `json:"-" gorm:"index"`

	// Relations
	Organisation Organisation `json:"organisation,omitempty" gorm:"foreignKey:OrganisationID"`
}
