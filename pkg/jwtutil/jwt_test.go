package jwtutil

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admin-service/pkg/config"
)

func testConfig() *config.JWTConfig {
	return &config.JWTConfig{
		SigningKey:      "test-signing-key",
		ExpirationHours: 1,
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	util := NewJWTUtil(testConfig())

	token, err := util.GenerateToken("ops@example.com", 42, "auth0|5f7c8ec7c33c6c004bbafe82", "admin")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := util.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ops@example.com", claims.Email)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "auth0|5f7c8ec7c33c6c004bbafe82", claims.Subject)
}

// The identity provider subject is opaque text of the form "auth0|<hex>".
// A past incident came from code that assumed it was a UUID; keep proving
// it is not parseable as one.
func TestAuth0SubjectIsNotAUUID(t *testing.T) {
	util := NewJWTUtil(testConfig())

	subject := "auth0|5f7c8ec7c33c6c004bbafe82"
	token, err := util.GenerateToken("ops@example.com", 42, subject, "viewer")
	require.NoError(t, err)

	claims, err := util.ValidateToken(token)
	require.NoError(t, err)

	_, parseErr := uuid.Parse(claims.Subject)
	assert.Error(t, parseErr, "auth0 subject must never parse as a UUID")
	assert.Equal(t, subject, claims.Subject, "subject must survive the round trip unmodified")
}

func TestValidateTokenWrongKey(t *testing.T) {
	util := NewJWTUtil(testConfig())
	other := NewJWTUtil(&config.JWTConfig{SigningKey: "a-different-key", ExpirationHours: 1})

	token, err := util.GenerateToken("ops@example.com", 1, "", "viewer")
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenExpired(t *testing.T) {
	cfg := testConfig()
	util := NewJWTUtil(cfg)

	claims := UserClaims{
		Email:  "ops@example.com",
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.SigningKey))
	require.NoError(t, err)

	_, err = util.ValidateToken(signed)
	assert.Error(t, err)
}

func TestValidateTokenRejectsUnexpectedAlgorithm(t *testing.T) {
	util := NewJWTUtil(testConfig())

	// alg=none style token must never validate
	_, err := util.ValidateToken("eyJhbGciOiJub25lIn0.e30.")
	assert.Error(t, err)
}

func TestValidateTokenWithoutConfig(t *testing.T) {
	util := &JWTUtil{}
	_, err := util.ValidateToken("anything")
	assert.Error(t, err)

	_, err = util.GenerateToken("ops@example.com", 1, "", "viewer")
	assert.Error(t, err)
}
