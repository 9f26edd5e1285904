package prng

import (
	"math/bits"
	"math/rand"
	"testing"

	"fairdraw/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSeed(fill byte) core.Seed {
	var s core.Seed
	for i := range s {
		s[i] = fill + byte(i)
	}
	return s
}

func TestExpandIsDeterministic(t *testing.T) {
	for _, name := range HashNames {
		t.Run(string(name), func(t *testing.T) {
			e, err := NewExpander(name)
			require.NoError(t, err)

			seed := testSeed(7)
			for counter := uint64(0); counter < 100; counter++ {
				assert.Equal(t, e.Expand(seed, counter), e.Expand(seed, counter))
			}
		})
	}
}

func TestExpandDependsOnHash(t *testing.T) {
	seed := testSeed(1)
	seen := make(map[uint64]HashName)
	for _, name := range HashNames {
		e, err := NewExpander(name)
		require.NoError(t, err)
		v := e.Expand(seed, 0)
		if prev, ok := seen[v]; ok {
			t.Fatalf("%s and %s produced the same word %d", prev, name, v)
		}
		seen[v] = name
	}
}

func TestExpandCountersDiffer(t *testing.T) {
	e := DefaultExpander()
	seed := testSeed(3)

	seen := make(map[uint64]uint64, 10000)
	for counter := uint64(0); counter < 10000; counter++ {
		v := e.Expand(seed, counter)
		if prev, ok := seen[v]; ok {
			t.Fatalf("counters %d and %d collide on %d", prev, counter, v)
		}
		seen[v] = counter
	}
}

// TestExpandAvalanche flips one random seed bit per trial and expects about
// half of the 64 output bits to change on average.
func TestExpandAvalanche(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	const trials = 2000

	for _, name := range HashNames {
		t.Run(string(name), func(t *testing.T) {
			e, err := NewExpander(name)
			require.NoError(t, err)

			total := 0
			for i := 0; i < trials; i++ {
				var seed core.Seed
				rng.Read(seed[:])
				counter := rng.Uint64()

				flipped := seed
				bit := rng.Intn(core.SeedSize * 8)
				flipped[bit/8] ^= 1 << (bit % 8)

				total += bits.OnesCount64(e.Expand(seed, counter) ^ e.Expand(flipped, counter))
			}

			mean := float64(total) / trials
			assert.InDelta(t, 32.0, mean, 1.0, "mean flipped bits")
		})
	}
}

func TestCounterAvalanche(t *testing.T) {
	e := DefaultExpander()
	seed := testSeed(9)

	total := 0
	const trials = 2000
	for c := uint64(0); c < trials; c++ {
		total += bits.OnesCount64(e.Expand(seed, c) ^ e.Expand(seed, c+1))
	}
	assert.InDelta(t, 32.0, float64(total)/trials, 1.0)
}

func TestParseHashName(t *testing.T) {
	tests := map[string]HashName{
		"":             HashSHA256,
		"SHA256":       HashSHA256,
		"sha3":         HashSHA3,
		"sha3-256":     HashSHA3,
		"blake2b":      HashBLAKE2b,
		" blake2b-256": HashBLAKE2b,
	}
	for in, want := range tests {
		got, err := ParseHashName(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseHashName("md5")
	assert.Error(t, err)

	_, err = NewExpander("md5")
	assert.Error(t, err)
}
