package migration

import (
	"context"

	"fairdraw/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.1.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order. Every step is
// idempotent, so Run is safe on an existing schema.
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	for _, step := range r.Steps() {
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			return errors.Wrapf(err, "failed to %s", step.Name)
		}
	}
	return nil
}

// Step is one named DDL statement
type Step struct {
	Name string
	SQL  string
}

// Steps returns the migration steps in execution order
func (r *MigrationRunner) Steps() []Step {
	return []Step{
		{Name: "create draw_batches table", SQL: createDrawBatchesTable},
		{Name: "add draw_batches columns", SQL: addDrawBatchesColumns},
		{Name: "create draw_lines table", SQL: createDrawLinesTable},
		{Name: "create indexes", SQL: createIndexes},
	}
}

// range_limit is NUMERIC because ranges up to 2^64-1 do not fit BIGINT
const createDrawBatchesTable = `
	CREATE TABLE IF NOT EXISTS draw_batches (
		id UUID PRIMARY KEY,
		range_limit NUMERIC(20,0) NOT NULL,
		columns BIGINT NOT NULL CHECK (columns > 0),
		line_count BIGINT NOT NULL DEFAULT 0,
		hash_name VARCHAR(32) NOT NULL,
		policy VARCHAR(32) NOT NULL,
		fingerprint VARCHAR(64) NOT NULL DEFAULT '',
		metadata JSONB,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)
`

const addDrawBatchesColumns = `
	DO $$
	BEGIN
		-- finished_at is set by FinishBatch; unfinished batches keep NULL
		IF NOT EXISTS (
			SELECT 1 FROM information_schema.columns
			WHERE table_name = 'draw_batches' AND column_name = 'finished_at'
		) THEN
			ALTER TABLE draw_batches ADD COLUMN finished_at TIMESTAMP WITH TIME ZONE;
		END IF;
	END $$;
`

const createDrawLinesTable = `
	CREATE TABLE IF NOT EXISTS draw_lines (
		batch_id UUID NOT NULL REFERENCES draw_batches(id) ON DELETE CASCADE,
		line_no BIGINT NOT NULL,
		session_id UUID NOT NULL,
		seed CHAR(64) NOT NULL,
		draw_values JSONB NOT NULL,
		PRIMARY KEY (batch_id, line_no)
	)
`

const createIndexes = `
	CREATE INDEX IF NOT EXISTS idx_draw_batches_created_at ON draw_batches(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_draw_lines_session_id ON draw_lines(session_id);
`
