package app

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"time"

	"fairdraw/adapters/prng"
	"fairdraw/domain/core"
	"fairdraw/domain/draw"
	"fairdraw/internal"
	"fairdraw/models"
	"fairdraw/ports"

	"golang.org/x/sync/errgroup"
)

// defaultChunkSize bounds how many lines are held in memory between flushes
const defaultChunkSize = 1000

// BatchRequest describes one tester run: Iterations fresh sessions, each
// drawing Columns values in [0, Range).
type BatchRequest struct {
	Range      uint64
	Columns    uint32
	Iterations int
}

// Validate checks the request before any seed is consumed
func (r BatchRequest) Validate() error {
	if err := (draw.Request{Range: r.Range, Count: r.Columns}).Validate(); err != nil {
		return err
	}
	if r.Iterations < 1 {
		return fmt.Errorf("%w: iterations must be at least 1, got %d", core.ErrInvalidCount, r.Iterations)
	}
	return nil
}

// BatchLine is the outcome of one session of a batch
type BatchLine struct {
	Index     int
	SessionID core.SessionID
	Seed      core.Seed
	Values    []uint64
}

// BatchSummary reports a finished batch
type BatchSummary struct {
	BatchID     core.BatchID
	Lines       int
	Fingerprint core.BatchFingerprint
	Elapsed     time.Duration
}

// BatchService runs many independent sessions, the way the offline tester
// feeds the distribution validator
type BatchService struct {
	draws     *DrawService
	seeds     ports.SeedSource
	drawLog   ports.DrawLogRepository
	workers   int
	chunkSize int
	logger    *internal.Logger
}

// NewBatchService creates a batch service. drawLog may be nil to skip recording.
func NewBatchService(draws *DrawService, seeds ports.SeedSource, drawLog ports.DrawLogRepository, workers int, logger *internal.Logger) *BatchService {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &BatchService{
		draws:     draws,
		seeds:     seeds,
		drawLog:   drawLog,
		workers:   workers,
		chunkSize: defaultChunkSize,
		logger:    logger,
	}
}

// Run executes the batch and calls emit once per line, in line order.
// Sessions of a chunk run concurrently, each on its own stream; seeds are
// taken from the seed source in line order so derived sources replay exactly.
func (b *BatchService) Run(ctx context.Context, req BatchRequest, emit func(BatchLine) error) (*BatchSummary, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	summary := &BatchSummary{BatchID: core.NewBatchID()}
	hasher := core.NewBatchHasher()

	if b.drawLog != nil {
		batch := &models.DrawBatch{
			ID:      summary.BatchID.String(),
			Range:   strconv.FormatUint(req.Range, 10),
			Columns: int64(req.Columns),
			Hash:    b.draws.ExpanderName(),
			Policy:  string(b.draws.Policy()),
			Metadata: models.JSONBMap{
				"iterations": req.Iterations,
				"workers":    b.workers,
			},
			CreatedAt: start,
		}
		if err := b.drawLog.CreateBatch(ctx, batch); err != nil {
			return nil, fmt.Errorf("create batch: %w", err)
		}
	}

	cfg := draw.Config{Range: req.Range, Positions: req.Columns}
	for offset := 0; offset < req.Iterations; offset += b.chunkSize {
		lines, err := b.runChunk(ctx, cfg, offset, min(b.chunkSize, req.Iterations-offset))
		if err != nil {
			return nil, err
		}

		for _, line := range lines {
			hasher.Add(line.Values)
			if err := emit(line); err != nil {
				return nil, err
			}
		}

		if b.drawLog != nil {
			if err := b.drawLog.AppendLines(ctx, toDrawLines(summary.BatchID, lines)); err != nil {
				return nil, fmt.Errorf("append lines %d-%d: %w", offset, offset+len(lines)-1, err)
			}
		}
		summary.Lines += len(lines)
		b.logger.Debug("batch %s: %d/%d lines", summary.BatchID, summary.Lines, req.Iterations)
	}

	summary.Fingerprint = hasher.Sum()
	summary.Elapsed = time.Since(start)

	if b.drawLog != nil {
		if err := b.drawLog.FinishBatch(ctx, summary.BatchID, int64(summary.Lines), summary.Fingerprint); err != nil {
			return nil, fmt.Errorf("finish batch: %w", err)
		}
	}

	b.logger.Info("batch %s finished: %d lines in %s", summary.BatchID, summary.Lines, summary.Elapsed)
	return summary, nil
}

func (b *BatchService) runChunk(ctx context.Context, cfg draw.Config, offset, n int) ([]BatchLine, error) {
	lines := make([]BatchLine, n)
	for i := range lines {
		seed, err := b.seeds.NextSeed(ctx)
		if err != nil {
			return nil, fmt.Errorf("seed for line %d: %w", offset+i, err)
		}
		lines[i] = BatchLine{Index: offset + i, Seed: seed}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i := range lines {
		i := i // per-iteration copy; go.mod targets Go 1.21 loop semantics
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			session, err := b.draws.OpenSession(lines[i].Seed, cfg)
			if err != nil {
				return fmt.Errorf("line %d: %w", lines[i].Index, err)
			}
			result, err := session.DrawConfigured()
			if err != nil {
				return fmt.Errorf("line %d: %w", lines[i].Index, err)
			}
			lines[i].SessionID = session.ID()
			lines[i].Values = result.Values
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return lines, nil
}

func toDrawLines(batchID core.BatchID, lines []BatchLine) []models.DrawLine {
	out := make([]models.DrawLine, len(lines))
	for i, line := range lines {
		out[i] = models.DrawLine{
			BatchID:   batchID.String(),
			LineNo:    int64(line.Index),
			SessionID: line.SessionID.String(),
			Seed:      line.Seed.String(),
			Values:    models.Uint64List(line.Values),
		}
	}
	return out
}

// Export streams the values of a recorded batch in line order and checks the
// stored fingerprint once every line has been read.
func (b *BatchService) Export(ctx context.Context, batchID core.BatchID, emit func([]uint64) error) (*models.DrawBatch, error) {
	if b.drawLog == nil {
		return nil, fmt.Errorf("export %s: draw log is not configured", batchID)
	}
	batch, err := b.drawLog.GetBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}

	hasher := core.NewBatchHasher()
	err = b.drawLog.StreamLines(ctx, batchID, func(line models.DrawLine) error {
		hasher.Add(line.Values)
		return emit(line.Values)
	})
	if err != nil {
		return nil, err
	}

	if got := hasher.Sum(); string(got) != batch.Fingerprint {
		return batch, fmt.Errorf("%w: batch %s recorded %s, exported %s", core.ErrHashMismatch, batchID, batch.Fingerprint, got)
	}
	return batch, nil
}

// Verify replays every line of a recorded batch from its seed with the hash
// and policy the batch was produced with. It returns the number of verified
// lines, or core.ErrReplayMismatch naming the first line that differs.
func (b *BatchService) Verify(ctx context.Context, batchID core.BatchID) (int, error) {
	if b.drawLog == nil {
		return 0, fmt.Errorf("verify %s: draw log is not configured", batchID)
	}
	batch, err := b.drawLog.GetBatch(ctx, batchID)
	if err != nil {
		return 0, err
	}

	replay, cfg, err := replayServiceFor(batch, b.logger)
	if err != nil {
		return 0, err
	}

	verified := 0
	err = b.drawLog.StreamLines(ctx, batchID, func(line models.DrawLine) error {
		seed, err := core.ParseSeed(line.Seed)
		if err != nil {
			return fmt.Errorf("line %d: %w", line.LineNo, err)
		}
		session, err := replay.OpenSession(seed, cfg)
		if err != nil {
			return fmt.Errorf("line %d: %w", line.LineNo, err)
		}
		result, err := session.DrawConfigured()
		if err != nil {
			return fmt.Errorf("line %d: %w", line.LineNo, err)
		}
		if !slices.Equal(result.Values, []uint64(line.Values)) {
			return fmt.Errorf("%w: line %d", core.ErrReplayMismatch, line.LineNo)
		}
		verified++
		return nil
	})
	return verified, err
}

func replayServiceFor(batch *models.DrawBatch, logger *internal.Logger) (*DrawService, draw.Config, error) {
	hash, err := prng.ParseHashName(batch.Hash)
	if err != nil {
		return nil, draw.Config{}, err
	}
	expander, err := prng.NewExpander(hash)
	if err != nil {
		return nil, draw.Config{}, err
	}
	policy, err := prng.ParsePolicy(batch.Policy)
	if err != nil {
		return nil, draw.Config{}, err
	}
	rng, err := strconv.ParseUint(batch.Range, 10, 64)
	if err != nil {
		return nil, draw.Config{}, fmt.Errorf("batch %s range %q: %w", batch.ID, batch.Range, err)
	}
	cfg := draw.Config{Range: rng, Positions: uint32(batch.Columns)}
	return NewDrawService(expander, policy, logger), cfg, nil
}

// Recent lists the latest recorded batches
func (b *BatchService) Recent(ctx context.Context, limit int) ([]*models.DrawBatch, error) {
	if b.drawLog == nil {
		return nil, fmt.Errorf("list batches: draw log is not configured")
	}
	return b.drawLog.ListBatches(ctx, limit)
}
