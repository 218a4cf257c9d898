package model

import (
	"time"

	"gorm.io/gorm"
)

// InvitationStatus is the lifecycle state of a user invitation
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationExpired  InvitationStatus = "expired"
	InvitationRevoked  InvitationStatus = "revoked"
)

// UserInvitation represents a pending invitation for a user to join an organisation
// The token is an opaque random value mailed to the invitee; expiry is checked
// when the invitation is looked up, there is no background sweeper.
type UserInvitation struct {
	ID             uint             `json:"id" gorm:"primaryKey"`
	Email          string           `json:"email" gorm:"type:varchar(100);index;not null"`
	OrganisationID uint             `json:"organisation_id" gorm:"index;not null"`
	Role           Role             `json:"role" gorm:"type:varchar(50);not null;default:'viewer'"`
	Token          string           `json:"-" gorm:"type:varchar(100);uniqueIndex;not null"`
	Status         InvitationStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending'"`
	ExpiresAt      time.Time        `json:"expires_at"`
	InvitedBy      uint             `json:"invited_by"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
	DeletedAt      gorm.DeletedAt   `json:"-" gorm:"index"`

	// Relations
	Organisation Organisation `json:"organisation,omitempty" gorm:"foreignKey:OrganisationID"`
}

// IsExpired reports whether the invitation is past its expiry at the given time
func (i *UserInvitation) IsExpired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// Acceptable reports whether the invitation can still be accepted at the given time
func (i *UserInvitation) Acceptable(now time.Time) bool {
	return i.Status == InvitationPending && !i.IsExpired(now)
}
