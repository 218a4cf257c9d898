package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInvitationAcceptable(t *testing.T) {
	now := time.Now()

	pending := UserInvitation{Status: InvitationPending, ExpiresAt: now.Add(time.Hour)}
	assert.True(t, pending.Acceptable(now))
	assert.False(t, pending.IsExpired(now))

	expired := UserInvitation{Status: InvitationPending, ExpiresAt: now.Add(-time.Minute)}
	assert.True(t, expired.IsExpired(now))
	assert.False(t, expired.Acceptable(now))

	for _, status := range []InvitationStatus{InvitationAccepted, InvitationExpired, InvitationRevoked} {
		inv := UserInvitation{Status: status, ExpiresAt: now.Add(time.Hour)}
		assert.False(t, inv.Acceptable(now), "status %s must not be acceptable", status)
	}
}

func TestInvitationExpiryBoundary(t *testing.T) {
	now := time.Now()
	inv := UserInvitation{Status: InvitationPending, ExpiresAt: now}

	// Exactly at expiry the invitation is still acceptable; only after it
	assert.False(t, inv.IsExpired(now))
	assert.True(t, inv.IsExpired(now.Add(time.Nanosecond)))
}
