package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admin-service/internal/model"
)

func newRoleTestContext(t *testing.T, role interface{}) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if role != nil {
		c.Set(ContextUserRole, role)
	}
	return c, rec
}

func okHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

func TestRequireRoleAllowsListedRole(t *testing.T) {
	c, rec := newRoleTestContext(t, model.RoleAdmin)

	err := RequireRole(model.RoleAdmin)(okHandler)(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRoleDeniesUnlistedRole(t *testing.T) {
	c, rec := newRoleTestContext(t, model.RoleAnalyst)

	err := RequireRole(model.RoleAdmin)(okHandler)(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "access denied")
}

func TestRequireRoleSuperAdminPassesEveryGate(t *testing.T) {
	c, rec := newRoleTestContext(t, model.RoleSuperAdmin)

	err := RequireRole(model.RoleViewer)(okHandler)(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRoleWithoutAuthContext(t *testing.T) {
	c, rec := newRoleTestContext(t, nil)

	err := RequireRole(model.RoleViewer)(okHandler)(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRoleRejectsNonRoleContextValue(t *testing.T) {
	// A raw string in the context must not satisfy the gate
	c, rec := newRoleTestContext(t, "admin")

	err := RequireRole(model.RoleAdmin)(okHandler)(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireMinRole(t *testing.T) {
	cases := []struct {
		role     model.Role
		min      model.Role
		expected int
	}{
		{model.RoleViewer, model.RoleViewer, http.StatusOK},
		{model.RoleAnalyst, model.RoleViewer, http.StatusOK},
		{model.RoleViewer, model.RoleAnalyst, http.StatusForbidden},
		{model.RoleAdmin, model.RoleAdmin, http.StatusOK},
		{model.RoleAnalyst, model.RoleAdmin, http.StatusForbidden},
		{model.RoleSuperAdmin, model.RoleAdmin, http.StatusOK},
	}

	for _, tc := range cases {
		c, rec := newRoleTestContext(t, tc.role)
		err := RequireMinRole(tc.min)(okHandler)(c)
		require.NoError(t, err)
		assert.Equal(t, tc.expected, rec.Code, "role %s against min %s", tc.role, tc.min)
	}
}
