// Package prng derives bounded pseudo-random integers from a session seed.
//
// A raw word is the first eight bytes, read little endian, of
// H(seed || counter), where counter is the little-endian position of the word
// in the sequence and H is a cryptographic hash. Knowing earlier words does not
// help predict later ones without the seed, and changing any input bit changes
// about half of the output bits.
package prng

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"strings"

	"fairdraw/domain/core"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// HashName selects the hash behind an expander.
type HashName string

const (
	HashSHA256  HashName = "sha256"
	HashSHA3    HashName = "sha3-256"
	HashBLAKE2b HashName = "blake2b-256"
)

// HashNames lists the supported hashes, default first.
var HashNames = []HashName{HashSHA256, HashSHA3, HashBLAKE2b}

// ParseHashName accepts the canonical names plus the short aliases "sha3" and "blake2b".
func ParseHashName(s string) (HashName, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sha256", "sha-256":
		return HashSHA256, nil
	case "sha3", "sha3-256":
		return HashSHA3, nil
	case "blake2b", "blake2b-256":
		return HashBLAKE2b, nil
	default:
		return "", fmt.Errorf("unknown hash %q", s)
	}
}

// HashExpander implements ports.Expander on top of a 256-bit hash.
type HashExpander struct {
	name HashName
	sum  func([]byte) [32]byte
}

// NewExpander returns the expander for the named hash.
func NewExpander(name HashName) (*HashExpander, error) {
	e := &HashExpander{name: name}
	switch name {
	case HashSHA256:
		e.sum = sha256.Sum256
	case HashSHA3:
		e.sum = sha3.Sum256
	case HashBLAKE2b:
		e.sum = blake2b.Sum256
	default:
		return nil, fmt.Errorf("unknown hash %q", name)
	}
	return e, nil
}

// DefaultExpander returns the SHA-256 expander.
func DefaultExpander() *HashExpander {
	return &HashExpander{name: HashSHA256, sum: sha256.Sum256}
}

// Expand returns the raw word at position counter of the seed's sequence.
func (e *HashExpander) Expand(seed core.Seed, counter uint64) uint64 {
	var buf [core.SeedSize + 8]byte
	copy(buf[:core.SeedSize], seed[:])
	binary.LittleEndian.PutUint64(buf[core.SeedSize:], counter)
	sum := e.sum(buf[:])
	return binary.LittleEndian.Uint64(sum[:8])
}

// Name returns the hash name.
func (e *HashExpander) Name() string {
	return string(e.name)
}
