package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"

	"fairdraw/domain/core"
	"fairdraw/internal/errors"
	"fairdraw/models"
	"fairdraw/ports"

	"github.com/jmoiron/sqlx"
)

// DrawLogRepositoryImpl implements DrawLogRepository for PostgreSQL
type DrawLogRepositoryImpl struct {
	db *sqlx.DB
}

// NewDrawLogRepository creates a new PostgreSQL draw log repository
func NewDrawLogRepository(db *sqlx.DB) ports.DrawLogRepository {
	return &DrawLogRepositoryImpl{db: db}
}

// CreateBatch inserts the batch header. Line count and fingerprint are
// filled in by FinishBatch.
func (r *DrawLogRepositoryImpl) CreateBatch(ctx context.Context, batch *models.DrawBatch) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO draw_batches (id, range_limit, columns, line_count, hash_name, policy, fingerprint, metadata, created_at)
		VALUES (:id, :range_limit, :columns, :line_count, :hash_name, :policy, :fingerprint, :metadata, :created_at)
	`, batch)
	if err != nil {
		return errors.DatabaseError("failed to create draw batch", err)
	}
	return nil
}

// AppendLines inserts all lines in one transaction
func (r *DrawLogRepositoryImpl) AppendLines(ctx context.Context, lines []models.DrawLine) error {
	if len(lines) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.DatabaseError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareNamedContext(ctx, `
		INSERT INTO draw_lines (batch_id, line_no, session_id, seed, draw_values)
		VALUES (:batch_id, :line_no, :session_id, :seed, :draw_values)
	`)
	if err != nil {
		return errors.DatabaseError("failed to prepare line insert", err)
	}
	defer stmt.Close()

	for _, line := range lines {
		if _, err := stmt.ExecContext(ctx, line); err != nil {
			return errors.DatabaseError(fmt.Sprintf("failed to insert line %d", line.LineNo), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.DatabaseError("failed to commit lines", err)
	}
	return nil
}

// FinishBatch stores the final line count and fingerprint
func (r *DrawLogRepositoryImpl) FinishBatch(ctx context.Context, batchID core.BatchID, lineCount int64, fingerprint core.BatchFingerprint) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE draw_batches
		SET line_count = $2, fingerprint = $3, finished_at = NOW()
		WHERE id = $1
	`, batchID.String(), lineCount, fingerprint.String())
	if err != nil {
		return errors.DatabaseError("failed to finish draw batch", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.NewBatchNotFoundError(batchID.String())
	}
	return nil
}

// GetBatch retrieves a batch header by ID
func (r *DrawLogRepositoryImpl) GetBatch(ctx context.Context, batchID core.BatchID) (*models.DrawBatch, error) {
	var batch models.DrawBatch
	err := r.db.GetContext(ctx, &batch, `
		SELECT id, range_limit, columns, line_count, hash_name, policy, fingerprint, metadata, created_at
		FROM draw_batches
		WHERE id = $1
	`, batchID.String())
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, core.NewBatchNotFoundError(batchID.String())
	}
	if err != nil {
		return nil, errors.DatabaseError("failed to get draw batch", err)
	}
	return &batch, nil
}

// StreamLines reads lines in line order without loading the batch into memory
func (r *DrawLogRepositoryImpl) StreamLines(ctx context.Context, batchID core.BatchID, fn func(models.DrawLine) error) error {
	rows, err := r.db.QueryxContext(ctx, `
		SELECT batch_id, line_no, session_id, seed, draw_values
		FROM draw_lines
		WHERE batch_id = $1
		ORDER BY line_no
	`, batchID.String())
	if err != nil {
		return errors.DatabaseError("failed to query draw lines", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line models.DrawLine
		if err := rows.StructScan(&line); err != nil {
			return errors.DatabaseError("failed to scan draw line", err)
		}
		if err := fn(line); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return errors.DatabaseError("failed to read draw lines", err)
	}
	return nil
}

// ListBatches returns the most recent batches, newest first
func (r *DrawLogRepositoryImpl) ListBatches(ctx context.Context, limit int) ([]*models.DrawBatch, error) {
	if limit <= 0 {
		limit = 20
	}
	var batches []*models.DrawBatch
	err := r.db.SelectContext(ctx, &batches, `
		SELECT id, range_limit, columns, line_count, hash_name, policy, fingerprint, metadata, created_at
		FROM draw_batches
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, errors.DatabaseError("failed to list draw batches", err)
	}
	return batches, nil
}
