package core

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// SeedSize is the length in bytes of a session seed.
const SeedSize = 32

// Seed is the high-entropy value from which every draw of a session is derived.
// It is handed over already agreed and verified; it is never mutated.
type Seed [SeedSize]byte

// NewSeed copies b into a Seed. b must be exactly SeedSize bytes long.
func NewSeed(b []byte) (Seed, error) {
	var s Seed
	if len(b) != SeedSize {
		return s, fmt.Errorf("%w: %d bytes, want %d", ErrSeedLength, len(b), SeedSize)
	}
	copy(s[:], b)
	return s, nil
}

// ParseSeed decodes a hex encoded seed.
func ParseSeed(text string) (Seed, error) {
	b, err := hex.DecodeString(strings.TrimSpace(text))
	if err != nil {
		return Seed{}, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	return NewSeed(b)
}

// String returns the hex encoding of the seed.
func (s Seed) String() string {
	return hex.EncodeToString(s[:])
}

// Bytes returns a copy of the seed bytes.
func (s Seed) Bytes() []byte {
	b := make([]byte, SeedSize)
	copy(b, s[:])
	return b
}

// IsDegenerate reports whether every byte of the seed holds the same value.
// The all-zero and all-0xff sentinels are both degenerate.
func (s Seed) IsDegenerate() bool {
	for _, b := range s[1:] {
		if b != s[0] {
			return false
		}
	}
	return true
}

// Validate returns ErrEmptySeed for degenerate seeds.
func (s Seed) Validate() error {
	if s.IsDegenerate() {
		return ErrEmptySeed
	}
	return nil
}
