package model

import (
	"time"

	"gorm.io/gorm"
)

// FlagStatus is the lifecycle state of a feature flag
type FlagStatus string

const (
	FlagEnabled  FlagStatus = "enabled"
	FlagDisabled FlagStatus = "disabled"
	FlagArchived FlagStatus = "archived"
)

// ValidFlagStatus reports whether the value is one of the known flag states
func ValidFlagStatus(s FlagStatus) bool {
	switch s {
	case FlagEnabled, FlagDisabled, FlagArchived:
		return true
	}
	return false
}

// FeatureFlag represents a product feature toggle
// Archived flags are terminal: they cannot be re-enabled
type FeatureFlag struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Key         string         `json:"key" gorm:"type:varchar(100);uniqueIndex;not null"`
	Description string         `json:"description" gorm:"type:text"`
	Status      FlagStatus     `json:"status" gorm:"type:varchar(20);not null;default:'disabled'"`
	RolloutNote string         `json:"rollout_note" gorm:"type:text"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}
