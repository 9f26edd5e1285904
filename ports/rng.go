package ports

import (
	"context"

	"fairdraw/domain/core"
)

// Expander turns a seed and a counter into one uniformly distributed 64-bit word.
// Implementations must be pure: the same inputs always give the same output.
type Expander interface {
	// Expand derives the raw word for position counter of the seed's sequence
	Expand(seed core.Seed, counter uint64) uint64

	// Name identifies the underlying hash for logs and draw records
	Name() string
}

// WordSource produces raw 64-bit words one at a time.
type WordSource interface {
	Next() uint64
}

// SeedSource supplies one fresh seed per session
type SeedSource interface {
	// NextSeed returns a seed that has not been handed out before
	NextSeed(ctx context.Context) (core.Seed, error)
}
