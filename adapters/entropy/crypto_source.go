// Package entropy provides session seed sources.
//
// Production seeds come from the external commit-reveal exchange; the sources
// here feed the batch tester and local tooling.
package entropy

import (
	"context"
	crand "crypto/rand"
	"fmt"
	"io"

	"fairdraw/domain/core"
)

// CryptoSource reads seeds from crypto/rand.
type CryptoSource struct {
	reader io.Reader
}

// NewCryptoSource returns a seed source backed by crypto/rand.
func NewCryptoSource() *CryptoSource {
	return &CryptoSource{reader: crand.Reader}
}

// NextSeed reads a fresh seed, retrying on the astronomically unlikely
// degenerate outcome.
func (s *CryptoSource) NextSeed(ctx context.Context) (core.Seed, error) {
	for {
		if err := ctx.Err(); err != nil {
			return core.Seed{}, err
		}
		var seed core.Seed
		if _, err := io.ReadFull(s.reader, seed[:]); err != nil {
			return core.Seed{}, fmt.Errorf("read random seed: %w", err)
		}
		if !seed.IsDegenerate() {
			return seed, nil
		}
	}
}
