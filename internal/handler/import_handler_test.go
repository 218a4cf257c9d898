package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admin-service/internal/model"
)

func TestParseUserRow(t *testing.T) {
	user, err := parseUserRow([]string{
		"jane@example.com", "Jane", "Doe", "analyst", "Data Science", "Berlin", "+49 30 1234567",
	})
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", user.Email)
	assert.Equal(t, "Jane", user.FirstName)
	assert.Equal(t, "Doe", user.LastName)
	assert.Equal(t, model.RoleAnalyst, user.Role)
	assert.Equal(t, "Data Science", user.Department)
	assert.Equal(t, "Berlin", user.Location)
	assert.Equal(t, "+49 30 1234567", user.Phone)
	assert.True(t, user.Active)
}

func TestParseUserRowDefaultsRole(t *testing.T) {
	user, err := parseUserRow([]string{"jane@example.com", "Jane", "Doe", "", "", "", ""})
	require.NoError(t, err)
	assert.Equal(t, model.RoleViewer, user.Role)
}

func TestParseUserRowTrimsWhitespace(t *testing.T) {
	user, err := parseUserRow([]string{" jane@example.com ", " Jane ", "Doe", "viewer", "", "", ""})
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", user.Email)
	assert.Equal(t, "Jane", user.FirstName)
}

func TestParseUserRowRejectsBadRows(t *testing.T) {
	cases := map[string][]string{
		"too few columns":  {"jane@example.com", "Jane"},
		"too many columns": {"jane@example.com", "Jane", "Doe", "viewer", "", "", "", "extra"},
		"missing email":    {"", "Jane", "Doe", "viewer", "", "", ""},
		"bad email":        {"not-an-email", "Jane", "Doe", "viewer", "", "", ""},
		"unknown role":     {"jane@example.com", "Jane", "Doe", "owner", "", "", ""},
	}

	for name, record := range cases {
		_, err := parseUserRow(record)
		assert.Error(t, err, name)
	}
}

func TestIsImportHeader(t *testing.T) {
	assert.True(t, isImportHeader([]string{"email", "first_name", "last_name", "role", "department", "location", "phone"}))
	assert.True(t, isImportHeader([]string{"Email", "First Name"}))
	assert.False(t, isImportHeader([]string{"jane@example.com", "Jane", "Doe", "viewer", "", "", ""}))
	assert.False(t, isImportHeader(nil))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "acme-corp", slugify("Acme Corp"))
	assert.Equal(t, "acme-corp", slugify("  Acme   Corp  "))
	assert.Equal(t, "acme", slugify("ACME"))
}
