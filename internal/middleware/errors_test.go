package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type errorBody struct {
	Error struct {
		Status  int    `json:"status"`
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func renderError(t *testing.T, err error) (int, errorBody) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/users/9", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	ErrorHandler()(err, c)

	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestErrorHandlerHTTPException(t *testing.T) {
	code, body := renderError(t, echo.NewHTTPError(http.StatusNotFound, "no such route"))

	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, http.StatusNotFound, body.Error.Status)
	assert.Equal(t, ErrTypeHTTP, body.Error.Type)
	assert.Equal(t, "no such route", body.Error.Message)
}

func TestErrorHandlerRecordNotFound(t *testing.T) {
	code, body := renderError(t, gorm.ErrRecordNotFound)

	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, ErrTypeDatabase, body.Error.Type)
	assert.Equal(t, "record not found", body.Error.Message)
}

func TestErrorHandlerDuplicateKey(t *testing.T) {
	code, body := renderError(t, gorm.ErrDuplicatedKey)

	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, ErrTypeDatabase, body.Error.Type)
}

func TestErrorHandlerInternalError(t *testing.T) {
	code, body := renderError(t, errors.New("something unexpected"))

	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, ErrTypeInternal, body.Error.Type)
	assert.Equal(t, "internal server error", body.Error.Message,
		"internal error details must not leak to the client")
}

func TestErrorHandlerCommittedResponse(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, c.String(http.StatusOK, "already written"))
	ErrorHandler()(errors.New("late failure"), c)

	// The handler must not clobber a committed response
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "already written", rec.Body.String())
}

func TestCSRFSkipper(t *testing.T) {
	e := echo.New()
	skip := map[string]bool{
		"/api/users":               true,
		"/api/profile":             true,
		"/auth/login":              true,
		"/auth/invitations/accept": true,
		"/health":                  true,
		"/metrics":                 true,
		"/admin/console":           false,
		"/":                        false,
	}

	for path, expected := range skip {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		c := e.NewContext(req, httptest.NewRecorder())
		assert.Equal(t, expected, CSRFSkipper(c), "path %s", path)
	}
}
