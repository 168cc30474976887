package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Constraint names referenced by the adapters when mapping unique violations.
const (
	AccountsEmailUniqueConstraint = "accounts_email_unique"
	AccountsPrimaryKeyConstraint  = "accounts_pkey"
	RidesOneActivePerPassenger    = "rides_one_active_per_passenger"
	RidesPrimaryKeyConstraint     = "rides_pkey"
)

// Migrate applies the embedded schema files in lexical order inside one transaction.
// Every statement is written to be re-runnable.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	names, err := fs.Glob(migrationFS, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(names)

	return pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		// Serialize concurrent migrators (e.g. several replicas starting together).
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(727274)`); err != nil {
			return fmt.Errorf("acquire migration lock: %w", err)
		}
		for _, name := range names {
			sql, err := migrationFS.ReadFile(name)
			if err != nil {
				return fmt.Errorf("read %s: %w", name, err)
			}
			if _, err := tx.Exec(ctx, string(sql)); err != nil {
				return fmt.Errorf("apply %s: %w", name, err)
			}
		}
		return nil
	})
}
