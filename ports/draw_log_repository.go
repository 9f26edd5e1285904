package ports

import (
	"context"

	"fairdraw/domain/core"
	"fairdraw/models"
)

// DrawLogRepository records batches of produced draws for offline validation
type DrawLogRepository interface {
	// CreateBatch stores a new batch header before any line is appended
	CreateBatch(ctx context.Context, batch *models.DrawBatch) error

	// AppendLines stores lines of an open batch atomically
	AppendLines(ctx context.Context, lines []models.DrawLine) error

	// FinishBatch records the final line count and content fingerprint
	FinishBatch(ctx context.Context, batchID core.BatchID, lineCount int64, fingerprint core.BatchFingerprint) error

	// GetBatch retrieves a batch header by ID
	GetBatch(ctx context.Context, batchID core.BatchID) (*models.DrawBatch, error)

	// StreamLines calls fn for every line of the batch in line order
	StreamLines(ctx context.Context, batchID core.BatchID, fn func(models.DrawLine) error) error

	// ListBatches returns the most recent batches, newest first
	ListBatches(ctx context.Context, limit int) ([]*models.DrawBatch, error)
}
