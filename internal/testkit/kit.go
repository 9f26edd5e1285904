package testkit

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"fairdraw/domain/core"
	"fairdraw/internal/validator"
	"fairdraw/models"
	"fairdraw/ports"
)

// ScriptedExpander replays fixed words regardless of seed, wrapping around
// at the end of the script.
type ScriptedExpander struct {
	Words []uint64
}

func (e ScriptedExpander) Expand(seed core.Seed, counter uint64) uint64 {
	return e.Words[counter%uint64(len(e.Words))]
}

func (e ScriptedExpander) Name() string { return "scripted" }

var _ ports.Expander = ScriptedExpander{}

// FixedSeedSource hands out a fixed list of seeds, then fails with
// core.ErrSeedExhausted.
type FixedSeedSource struct {
	mu    sync.Mutex
	seeds []core.Seed
	next  int
}

func NewFixedSeedSource(seeds ...core.Seed) *FixedSeedSource {
	return &FixedSeedSource{seeds: seeds}
}

func (s *FixedSeedSource) NextSeed(ctx context.Context) (core.Seed, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.next >= len(s.seeds) {
		return core.Seed{}, fmt.Errorf("%w: %d seeds used", core.ErrSeedExhausted, s.next)
	}
	seed := s.seeds[s.next]
	s.next++
	return seed, nil
}

// Used returns how many seeds were handed out.
func (s *FixedSeedSource) Used() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}

var _ ports.SeedSource = (*FixedSeedSource)(nil)

// InMemoryDrawLog is a DrawLogRepository kept in process memory
type InMemoryDrawLog struct {
	mu      sync.RWMutex
	batches map[string]*models.DrawBatch
	lines   map[string][]models.DrawLine
}

func NewInMemoryDrawLog() *InMemoryDrawLog {
	return &InMemoryDrawLog{
		batches: make(map[string]*models.DrawBatch),
		lines:   make(map[string][]models.DrawLine),
	}
}

var _ ports.DrawLogRepository = (*InMemoryDrawLog)(nil)

func (s *InMemoryDrawLog) CreateBatch(ctx context.Context, batch *models.DrawBatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.batches[batch.ID]; ok {
		return fmt.Errorf("batch %s already exists", batch.ID)
	}
	copied := *batch
	s.batches[batch.ID] = &copied
	return nil
}

func (s *InMemoryDrawLog) AppendLines(ctx context.Context, lines []models.DrawLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, line := range lines {
		if _, ok := s.batches[line.BatchID]; !ok {
			return core.NewBatchNotFoundError(line.BatchID)
		}
	}
	for _, line := range lines {
		line.Values = slices.Clone(line.Values)
		s.lines[line.BatchID] = append(s.lines[line.BatchID], line)
	}
	return nil
}

func (s *InMemoryDrawLog) FinishBatch(ctx context.Context, batchID core.BatchID, lineCount int64, fingerprint core.BatchFingerprint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	batch, ok := s.batches[batchID.String()]
	if !ok {
		return core.NewBatchNotFoundError(batchID.String())
	}
	batch.LineCount = lineCount
	batch.Fingerprint = fingerprint.String()
	return nil
}

func (s *InMemoryDrawLog) GetBatch(ctx context.Context, batchID core.BatchID) (*models.DrawBatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	batch, ok := s.batches[batchID.String()]
	if !ok {
		return nil, core.NewBatchNotFoundError(batchID.String())
	}
	copied := *batch
	return &copied, nil
}

func (s *InMemoryDrawLog) StreamLines(ctx context.Context, batchID core.BatchID, fn func(models.DrawLine) error) error {
	s.mu.RLock()
	lines := slices.Clone(s.lines[batchID.String()])
	s.mu.RUnlock()

	sort.Slice(lines, func(i, j int) bool { return lines[i].LineNo < lines[j].LineNo })
	for _, line := range lines {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(line); err != nil {
			return err
		}
	}
	return nil
}

func (s *InMemoryDrawLog) ListBatches(ctx context.Context, limit int) ([]*models.DrawBatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.DrawBatch, 0, len(s.batches))
	for _, batch := range s.batches {
		copied := *batch
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// TamperLine overwrites the values of a stored line
func (s *InMemoryDrawLog) TamperLine(batchID core.BatchID, lineNo int64, values []uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := s.lines[batchID.String()]
	for i := range lines {
		if lines[i].LineNo == lineNo {
			lines[i].Values = slices.Clone(values)
			return true
		}
	}
	return false
}

// DrawFunc produces the values of one session from its seed
type DrawFunc func(seed core.Seed) ([]uint64, error)

// Sample opens n sessions with seeds from seeds and feeds every value they
// draw into v. It is the in-process equivalent of piping a tester batch
// into the validator.
func Sample(ctx context.Context, seeds ports.SeedSource, n int, draw DrawFunc, v *validator.Validator) error {
	for i := 0; i < n; i++ {
		seed, err := seeds.NextSeed(ctx)
		if err != nil {
			return fmt.Errorf("seed %d: %w", i, err)
		}
		values, err := draw(seed)
		if err != nil {
			return fmt.Errorf("session %d: %w", i, err)
		}
		for _, value := range values {
			v.Observe(value)
		}
	}
	return nil
}
