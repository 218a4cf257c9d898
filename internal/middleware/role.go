package middleware

import (
	"admin-service/internal/model"
	"admin-service/pkg/logger"
	"admin-service/prometheus"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// RequireRole creates a middleware that allows the request through only when
// the authenticated user's role appears in the allow-list. A super_admin
// passes every gate. Must run after AuthMiddleware.
func RequireRole(allowed ...model.Role) echo.MiddlewareFunc {
	allowset := make(map[model.Role]bool, len(allowed))
	for _, r := range allowed {
		allowset[r] = true
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)

			role, ok := c.Get(ContextUserRole).(model.Role)
			if !ok {
				log.Error("Role gate reached without authenticated user")
				prometheus.RecordAuthError("missing_role_context")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
			}

			if role == model.RoleSuperAdmin || allowset[role] {
				return next(c)
			}

			log.Warn("Access denied by role gate",
				zap.String("role", string(role)),
				zap.String("path", c.Path()))
			prometheus.RecordAuthError("access_denied")
			return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
		}
	}
}

// RequireMinRole creates a middleware that allows any role at least as
// privileged as the given role. Must run after AuthMiddleware.
func RequireMinRole(min model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)

			role, ok := c.Get(ContextUserRole).(model.Role)
			if !ok {
				log.Error("Role gate reached without authenticated user")
				prometheus.RecordAuthError("missing_role_context")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
			}

			if role.AtLeast(min) {
				return next(c)
			}

			log.Warn("Access denied by role gate",
				zap.String("role", string(role)),
				zap.String("required", string(min)),
				zap.String("path", c.Path()))
			prometheus.RecordAuthError("access_denied")
			return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
		}
	}
}
