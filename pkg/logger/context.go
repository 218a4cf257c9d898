package logger

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-ID"

// FromContext retrieves the request-scoped logger from echo.Context.
// Falls back to the global logger tagged with whatever request ID is available.
func FromContext(c echo.Context) *zap.Logger {
	if ctxLogger, ok := c.Get("logger").(*zap.Logger); ok {
		return ctxLogger
	}

	requestID, ok := c.Get(requestIDHeader).(string)
	if !ok || requestID == "" {
		requestID = c.Request().Header.Get(requestIDHeader)
	}
	if requestID == "" {
		requestID = "unknown"
	}

	return GetLogger().With(zap.String("request_id", requestID))
}
