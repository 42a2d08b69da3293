// internal/common/database/migrations.go
package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strings"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var identifierPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]{0,62}$`)

// Migrate applies every embedded migration in filename order. Migrations are
// written to be idempotent, so this runs on every start. "{{audit_table}}"
// is replaced with auditTable.
func Migrate(ctx context.Context, db *sql.DB, auditTable string) error {
	if !identifierPattern.MatchString(auditTable) {
		return fmt.Errorf("invalid audit table name %q", auditTable)
	}

	names, err := fs.Glob(migrationsFS, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(names)

	for _, name := range names {
		body, err := migrationsFS.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		stmt := strings.ReplaceAll(string(body), "{{audit_table}}", auditTable)
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
	}
	return nil
}
