package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lib/pq"
)

// MigrateOptions controls the behavior of the Migrate function.
type MigrateOptions struct {
	Reset  bool // if true, drop the table before recreating it
	DryRun bool // if true, only log what would change
}

// Migrate creates the shopping list table and its ordering index.
// All operations run inside a single transaction.
func Migrate(db *sql.DB, opts MigrateOptions) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin migration transaction: %w", err)
	}
	defer tx.Rollback()

	if opts.Reset {
		if err := dropTable(tx, opts.DryRun); err != nil {
			return err
		}
	}

	if err := createTable(tx, opts); err != nil {
		return fmt.Errorf("table %q: %w", TableName, err)
	}

	if opts.DryRun {
		return tx.Rollback()
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration transaction: %w", err)
	}
	return nil
}

func dropTable(tx *sql.Tx, dryRun bool) error {
	if dryRun {
		slog.Info("[dry-run] would drop table", slog.String("table", TableName))
		return nil
	}
	if _, err := tx.Exec(fmt.Sprintf(`DROP TABLE IF EXISTS %q`, TableName)); err != nil {
		return fmt.Errorf("dropping table %q: %w", TableName, err)
	}
	return nil
}

func createTable(tx *sql.Tx, opts MigrateOptions) error {
	dryRun := opts.DryRun
	var exists bool
	err := tx.QueryRow(
		`SELECT EXISTS(SELECT 1 FROM pg_tables WHERE schemaname = current_schema() AND tablename = $1)`,
		TableName,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("checking table: %w", err)
	}
	// A dry-run reset only logged the drop, so report as if it happened.
	if opts.Reset && dryRun {
		exists = false
	}
	if exists && !dryRun {
		slog.Info("table already exists", slog.String("table", TableName))
	}

	if dryRun {
		if !exists {
			slog.Info("[dry-run] would create table", slog.String("table", TableName))
		}
		return nil
	}

	stmt := fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %q (
			name TEXT NOT NULL,
			amount INTEGER NOT NULL CHECK (amount > 0),
			position BIGSERIAL NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (name)
		)`,
		TableName,
	)
	if _, err := tx.Exec(stmt); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	idx := fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS %q ON %q (position)`, "idx_"+TableName+"_position", TableName)
	if _, err := tx.Exec(idx); err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	return nil
}

func isUndefinedTableError(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "42P01"
}

func isOutOfRangeError(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "22003"
}
