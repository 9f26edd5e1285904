package prng

import (
	"fmt"
	"strings"

	"fairdraw/domain/core"
	"fairdraw/ports"
)

// Policy selects how raw words are mapped into [0, range).
type Policy string

const (
	// PolicyRejection discards raw words below 2^64 mod range and draws again.
	// The accepted span is an exact multiple of range, so every result is
	// equally likely. Extra words are needed with probability (2^64 mod range)/2^64.
	PolicyRejection Policy = "rejection"

	// PolicyModulo reduces every raw word with a plain remainder. The lowest
	// 2^64 mod range results are slightly more likely than the rest, a bias of
	// order range/2^64. Kept for compatibility with sequences produced by
	// earlier deployments.
	PolicyModulo Policy = "modulo"
)

// DefaultPolicy is used when no policy is configured.
const DefaultPolicy = PolicyRejection

// ParsePolicy maps a configuration value to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return DefaultPolicy, nil
	case PolicyRejection:
		return PolicyRejection, nil
	case PolicyModulo:
		return PolicyModulo, nil
	default:
		return "", fmt.Errorf("unknown reduction policy %q", s)
	}
}

// Reduce maps raw into [0, rng) with a remainder.
func Reduce(raw, rng uint64) (uint64, error) {
	if rng == 0 {
		return 0, core.NewInvalidRangeError(rng)
	}
	return raw % rng, nil
}

// RejectionThreshold returns 2^64 mod rng, the size of the partial bucket.
// Raw words below it are rejected by PolicyRejection. rng must be non-zero.
func RejectionThreshold(rng uint64) uint64 {
	return -rng % rng
}

// Bounded draws one value in [0, rng) from src under policy. With rng == 0
// it fails before reading from src.
func Bounded(src ports.WordSource, rng uint64, policy Policy) (uint64, error) {
	if rng == 0 {
		return 0, core.NewInvalidRangeError(rng)
	}
	switch policy {
	case PolicyModulo:
		return src.Next() % rng, nil
	case PolicyRejection:
		threshold := RejectionThreshold(rng)
		for {
			raw := src.Next()
			if raw >= threshold {
				return raw % rng, nil
			}
		}
	default:
		return 0, fmt.Errorf("unknown reduction policy %q", policy)
	}
}
