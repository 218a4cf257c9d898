// Package repair contains the emergency schema-drift patches applied to
// production databases when the deployed schema diverged from what the
// service's models assume. Patches are raw DDL over pgx, not the ORM, and
// every statement is idempotent so a repair can be re-run safely.
package repair

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Patch is a single idempotent DDL statement fixing one known drift
type Patch struct {
	Name        string
	Description string
	Table       string
	Column      string // empty for table-level patches
	DDL         string
}

// Patches is the registry of known schema drift, in apply order
func Patches() []Patch {
	return []Patch{
		{
			Name:        "users-auth0-sub",
			Description: "users.auth0_sub dropped by an out-of-band migration",
			Table:       "users",
			Column:      "auth0_sub",
			DDL:         `ALTER TABLE users ADD COLUMN IF NOT EXISTS auth0_sub varchar(100)`,
		},
		{
			Name:        "users-auth0-sub-unique",
			Description: "unique index on users.auth0_sub",
			Table:       "users",
			Column:      "auth0_sub",
			DDL:         `CREATE UNIQUE INDEX IF NOT EXISTS idx_users_auth0_sub ON users (auth0_sub)`,
		},
		{
			Name:        "users-department",
			Description: "users.department missing on environments migrated before the field existed",
			Table:       "users",
			Column:      "department",
			DDL:         `ALTER TABLE users ADD COLUMN IF NOT EXISTS department varchar(100)`,
		},
		{
			Name:        "users-location",
			Description: "users.location missing on environments migrated before the field existed",
			Table:       "users",
			Column:      "location",
			DDL:         `ALTER TABLE users ADD COLUMN IF NOT EXISTS location varchar(100)`,
		},
		{
			Name:        "users-phone",
			Description: "users.phone missing on environments migrated before the field existed",
			Table:       "users",
			Column:      "phone",
			DDL:         `ALTER TABLE users ADD COLUMN IF NOT EXISTS phone varchar(50)`,
		},
		{
			Name:        "users-last-login",
			Description: "users.last_login_at missing after partial rollout",
			Table:       "users",
			Column:      "last_login_at",
			DDL:         `ALTER TABLE users ADD COLUMN IF NOT EXISTS last_login_at timestamptz`,
		},
		{
			Name:        "invitations-expires-at",
			Description: "user_invitations.expires_at missing, invitations never expire without it",
			Table:       "user_invitations",
			Column:      "expires_at",
			DDL:         `ALTER TABLE user_invitations ADD COLUMN IF NOT EXISTS expires_at timestamptz`,
		},
		{
			Name:        "import-errors-table",
			Description: "import_errors table never created on environments that skipped the import rollout",
			Table:       "import_errors",
			DDL: `CREATE TABLE IF NOT EXISTS import_errors (
	id bigserial PRIMARY KEY,
	batch_id bigint NOT NULL,
	row_number bigint,
	raw_line text,
	message text,
	created_at timestamptz
)`,
		},
		{
			Name:        "feature-flags-rollout-note",
			Description: "feature_flags.rollout_note missing",
			Table:       "feature_flags",
			Column:      "rollout_note",
			DDL:         `ALTER TABLE feature_flags ADD COLUMN IF NOT EXISTS rollout_note text`,
		},
	}
}

// Conn is the subset of pgx.Conn the repairer needs
type Conn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Finding is the drift status of one patch target
type Finding struct {
	Patch   Patch
	Missing bool
}

// TableExists checks information_schema for the given table
func TableExists(ctx context.Context, conn Conn, table string) (bool, error) {
	var exists bool
	err := conn.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_schema = 'public' AND table_name = $1)`,
		table,
	).Scan(&exists)
	return exists, err
}

// ColumnExists checks information_schema for the given column
func ColumnExists(ctx context.Context, conn Conn, table, column string) (bool, error) {
	var exists bool
	err := conn.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM information_schema.columns WHERE table_schema = 'public' AND table_name = $1 AND column_name = $2)`,
		table, column,
	).Scan(&exists)
	return exists, err
}

// Inspect reports which known drift targets are missing from the database
func Inspect(ctx context.Context, conn Conn) ([]Finding, error) {
	findings := make([]Finding, 0, len(Patches()))
	for _, p := range Patches() {
		var present bool
		var err error
		if p.Column == "" {
			present, err = TableExists(ctx, conn, p.Table)
		} else {
			// A missing table implies the column is missing too
			present, err = TableExists(ctx, conn, p.Table)
			if err == nil && present {
				present, err = ColumnExists(ctx, conn, p.Table, p.Column)
			}
		}
		if err != nil {
			return nil, fmt.Errorf("inspecting %s: %w", p.Name, err)
		}
		findings = append(findings, Finding{Patch: p, Missing: !present})
	}
	return findings, nil
}

// Apply runs every patch whose target is missing and returns the applied patches
func Apply(ctx context.Context, conn Conn) ([]Patch, error) {
	findings, err := Inspect(ctx, conn)
	if err != nil {
		return nil, err
	}

	var applied []Patch
	for _, f := range findings {
		if !f.Missing {
			continue
		}
		if _, err := conn.Exec(ctx, f.Patch.DDL); err != nil {
			return applied, fmt.Errorf("applying %s: %w", f.Patch.Name, err)
		}
		applied = append(applied, f.Patch)
	}
	return applied, nil
}
