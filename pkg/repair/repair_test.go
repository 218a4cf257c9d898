package repair

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Every patch must be safe to re-run against an already-repaired database
func TestPatchesAreIdempotent(t *testing.T) {
	for _, p := range Patches() {
		assert.Contains(t, p.DDL, "IF NOT EXISTS", "patch %s must be idempotent", p.Name)
	}
}

func TestPatchNamesAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, p := range Patches() {
		assert.False(t, seen[p.Name], "duplicate patch name %s", p.Name)
		seen[p.Name] = true
	}
}

func TestPatchesTargetDeclaredTables(t *testing.T) {
	for _, p := range Patches() {
		assert.NotEmpty(t, p.Table, "patch %s must declare its target table", p.Name)
		assert.Contains(t, p.DDL, p.Table, "patch %s DDL must touch its declared table", p.Name)
		if p.Column != "" && strings.HasPrefix(p.DDL, "ALTER TABLE") {
			assert.Contains(t, p.DDL, p.Column, "patch %s DDL must add its declared column", p.Name)
		}
	}
}

// Ad-hoc DDL must never drop or truncate anything
func TestPatchesAreAdditiveOnly(t *testing.T) {
	for _, p := range Patches() {
		upper := strings.ToUpper(p.DDL)
		assert.NotContains(t, upper, "DROP", "patch %s", p.Name)
		assert.NotContains(t, upper, "TRUNCATE", "patch %s", p.Name)
		assert.NotContains(t, upper, "DELETE", "patch %s", p.Name)
	}
}
