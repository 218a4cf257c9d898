package middleware

import (
	"admin-service/internal/model"
	"admin-service/pkg/database"
	"admin-service/pkg/jwtutil"
	"admin-service/pkg/logger"
	"admin-service/prometheus"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Context keys set by AuthMiddleware
const (
	ContextUserID   = "user_id"
	ContextEmail    = "email"
	ContextUserRole = "user_role"
)

// AuthMiddleware validates the JWT token from the Authorization header and
// resolves the token's claims to an internal user record. The subject claim
// from the identity provider is matched first; rows created before the subject
// column existed are matched by email.
func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		// Get the Authorization header
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			log.Error("Missing Authorization header")
			prometheus.RecordAuthError("missing_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
		}

		// Check if it's a Bearer token
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			log.Error("Invalid Authorization header format")
			prometheus.RecordAuthError("invalid_auth_format")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
		}

		// Extract the token
		tokenString := parts[1]

		// Validate the token
		claims, err := jwtutil.Get().ValidateToken(tokenString)
		if err != nil {
			log.Error("Invalid JWT token", zap.Error(err))
			prometheus.RecordAuthError("invalid_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}

		// Resolve the claims to an internal user record
		user, err := ResolveUser(claims)
		if err != nil {
			log.Error("No user record for token claims",
				zap.String("subject", claims.Subject),
				zap.String("email", claims.Email))
			prometheus.RecordAuthError("user_not_found")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unknown user"})
		}

		if !user.Active {
			log.Error("Deactivated user attempted access", zap.Uint("user_id", user.ID))
			prometheus.RecordAuthError("user_deactivated")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "user is deactivated"})
		}

		// Store user info in context for later use
		c.Set(ContextUserID, user.ID)
		c.Set(ContextEmail, user.Email)
		c.Set(ContextUserRole, user.Role)

		log.Debug("Request authenticated",
			zap.Uint("user_id", user.ID),
			zap.String("role", string(user.Role)))

		return next(c)
	}
}

// ResolveUser looks up the internal user record for a set of token claims.
// The identity provider subject (e.g. "auth0|abc123") is opaque text, never
// parsed; lookup is an exact string match with email as the fallback.
func ResolveUser(claims *jwtutil.UserClaims) (*model.User, error) {
	var user model.User

	if claims.Subject != "" {
		result := database.GetDB().Where("auth0_sub = ?", claims.Subject).First(&user)
		if result.Error == nil {
			return &user, nil
		}
	}

	result := database.GetDB().Where("email = ?", claims.Email).First(&user)
	if result.Error != nil {
		return nil, result.Error
	}
	return &user, nil
}
