package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"fairdraw/domain/core"
	"fairdraw/internal/migration"
	"fairdraw/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestDB connects to TEST_DATABASE_URL and skips when it is not set
func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := sqlx.Connect("postgres", url)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, migration.NewRunner().Run(context.Background(), db))
	return db
}

func TestDrawLogRoundTrip(t *testing.T) {
	db := openTestDB(t)
	repo := NewDrawLogRepository(db)
	ctx := context.Background()

	id := core.NewBatchID()
	batch := &models.DrawBatch{
		ID:        id.String(),
		Range:     "18446744073709551615",
		Columns:   2,
		Hash:      "sha256",
		Policy:    "rejection",
		Metadata:  models.JSONBMap{"iterations": 2},
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.CreateBatch(ctx, batch))

	seed := core.Seed{1, 2, 3}
	lines := []models.DrawLine{
		{BatchID: id.String(), LineNo: 1, SessionID: core.NewSessionID().String(), Seed: seed.String(), Values: models.Uint64List{1<<64 - 2, 7}},
		{BatchID: id.String(), LineNo: 0, SessionID: core.NewSessionID().String(), Seed: seed.String(), Values: models.Uint64List{3, 4}},
	}
	require.NoError(t, repo.AppendLines(ctx, lines))

	fp := core.ComputeBatchFingerprint([][]uint64{{3, 4}, {1<<64 - 2, 7}})
	require.NoError(t, repo.FinishBatch(ctx, id, 2, fp))

	got, err := repo.GetBatch(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.LineCount)
	assert.Equal(t, fp.String(), got.Fingerprint)
	assert.Equal(t, batch.Range, got.Range)

	var streamed []models.Uint64List
	require.NoError(t, repo.StreamLines(ctx, id, func(line models.DrawLine) error {
		streamed = append(streamed, line.Values)
		return nil
	}))
	assert.Equal(t, []models.Uint64List{{3, 4}, {1<<64 - 2, 7}}, streamed)

	recent, err := repo.ListBatches(ctx, 5)
	require.NoError(t, err)
	assert.NotEmpty(t, recent)
}

func TestGetBatchNotFound(t *testing.T) {
	db := openTestDB(t)
	repo := NewDrawLogRepository(db)

	_, err := repo.GetBatch(context.Background(), core.NewBatchID())
	assert.ErrorIs(t, err, core.ErrBatchNotFound)
}
