package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"admin-service/pkg/logger"
	"admin-service/prometheus"
)

// Error type labels rendered at the request boundary
const (
	ErrTypeHTTP     = "http_exception"
	ErrTypeDatabase = "database_error"
	ErrTypeInternal = "internal_error"
)

// ErrorHandler returns an echo.HTTPErrorHandler that catches every error
// escaping a handler and renders it as a JSON body of the form
// {"error": {"status": ..., "type": ..., "message": ...}}.
func ErrorHandler() echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		log := logger.FromContext(c)

		status := http.StatusInternalServerError
		errType := ErrTypeInternal
		message := "internal server error"

		var httpErr *echo.HTTPError
		var pgErr *pgconn.PgError

		switch {
		case errors.As(err, &httpErr):
			status = httpErr.Code
			errType = ErrTypeHTTP
			if m, ok := httpErr.Message.(string); ok {
				message = m
			} else {
				message = http.StatusText(status)
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			status = http.StatusNotFound
			errType = ErrTypeDatabase
			message = "record not found"
		case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueViolation(err):
			status = http.StatusConflict
			errType = ErrTypeDatabase
			message = "duplicate record"
		case errors.As(err, &pgErr), errors.Is(err, gorm.ErrInvalidTransaction):
			errType = ErrTypeDatabase
			message = "database error"
		}

		if status >= http.StatusInternalServerError {
			log.Error("Request failed", zap.Int("status", status), zap.String("type", errType), zap.Error(err))
		} else {
			log.Warn("Request rejected", zap.Int("status", status), zap.String("type", errType), zap.Error(err))
		}
		prometheus.RecordRequestError(errType)

		body := echo.Map{
			"error": echo.Map{
				"status":  status,
				"type":    errType,
				"message": message,
			},
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, body)
		}
		if writeErr != nil {
			log.Error("Failed to write error response", zap.Error(writeErr))
		}
	}
}

// isUniqueViolation reports whether the error is a Postgres unique violation (23505)
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// CSRFSkipper exempts Bearer-token API routes from CSRF checks. Tokens in the
// Authorization header are not auto-attached by browsers, so the cookie-based
// CSRF protection only applies to the remaining form-style routes.
func CSRFSkipper(c echo.Context) bool {
	path := c.Request().URL.Path
	if strings.HasPrefix(path, "/api") || strings.HasPrefix(path, "/auth") {
		return true
	}
	if path == "/health" || path == "/metrics" {
		return true
	}
	return false
}
