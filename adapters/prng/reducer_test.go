package prng

import (
	"math"
	"testing"

	"fairdraw/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedSource replays fixed words and counts how many were read.
type scriptedSource struct {
	words []uint64
	reads int
}

func (s *scriptedSource) Next() uint64 {
	v := s.words[s.reads%len(s.words)]
	s.reads++
	return v
}

func TestReduceStaysInRange(t *testing.T) {
	raws := []uint64{0, 1, 2, 99, 100, 101, math.MaxUint64 - 1, math.MaxUint64, 1 << 63}
	ranges := []uint64{1, 2, 3, 10, 100, 1000, 1<<32 + 7, 1 << 63, math.MaxUint64}

	for _, rng := range ranges {
		for _, raw := range raws {
			v, err := Reduce(raw, rng)
			require.NoError(t, err)
			assert.Less(t, v, rng, "Reduce(%d, %d)", raw, rng)
		}
	}
}

func TestReduceZeroRange(t *testing.T) {
	_, err := Reduce(12345, 0)
	assert.ErrorIs(t, err, core.ErrInvalidRange)
}

func TestBoundedZeroRangeReadsNothing(t *testing.T) {
	for _, policy := range []Policy{PolicyModulo, PolicyRejection} {
		src := &scriptedSource{words: []uint64{1}}
		_, err := Bounded(src, 0, policy)
		assert.ErrorIs(t, err, core.ErrInvalidRange)
		assert.Zero(t, src.reads, string(policy))
	}
}

func TestRejectionThreshold(t *testing.T) {
	assert.Equal(t, uint64(0), RejectionThreshold(1))
	assert.Equal(t, uint64(0), RejectionThreshold(1<<32))
	assert.Equal(t, uint64(6), RejectionThreshold(10)) // 2^64 = 18446744073709551616
	assert.Equal(t, uint64(1<<62), RejectionThreshold(3<<62))
	assert.Equal(t, uint64(1), RejectionThreshold(math.MaxUint64))
}

func TestBoundedRejectionSkipsPartialBucket(t *testing.T) {
	rng := uint64(3 << 62)
	src := &scriptedSource{words: []uint64{5, 1<<62 - 1, 1<<62 + 9}}

	v, err := Bounded(src, rng, PolicyRejection)
	require.NoError(t, err)
	assert.Equal(t, uint64(1<<62+9), v)
	assert.Equal(t, 3, src.reads)

	src = &scriptedSource{words: []uint64{5}}
	v, err = Bounded(src, rng, PolicyModulo)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), v)
	assert.Equal(t, 1, src.reads)
}

// TestModuloBiasIsRemovedByRejection uses range 3*2^62, where 2^64 mod range
// equals 2^62. Under plain modulo, results below 2^62 have two preimages and
// show up half of the time instead of a third.
func TestModuloBiasIsRemovedByRejection(t *testing.T) {
	const draws = 20000
	rng := uint64(3 << 62)

	lowFraction := func(policy Policy) float64 {
		s, err := NewStream(testSeed(21), nil)
		require.NoError(t, err)
		low := 0
		for i := 0; i < draws; i++ {
			v, err := Bounded(s, rng, policy)
			require.NoError(t, err)
			require.Less(t, v, rng)
			if v < 1<<62 {
				low++
			}
		}
		return float64(low) / draws
	}

	assert.InDelta(t, 0.5, lowFraction(PolicyModulo), 0.02)
	assert.InDelta(t, 1.0/3.0, lowFraction(PolicyRejection), 0.02)
}

func TestBoundedSmallRangeConsumesOneWord(t *testing.T) {
	s, err := NewStream(testSeed(8), nil)
	require.NoError(t, err)

	replay, err := NewStream(testSeed(8), nil)
	require.NoError(t, err)

	for i := 0; i < 1000; i++ {
		v, err := Bounded(s, 100, PolicyRejection)
		require.NoError(t, err)
		assert.Equal(t, replay.Next()%100, v)
	}
	assert.Equal(t, uint64(1000), s.Counter())
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyRejection, p)

	p, err = ParsePolicy(" Modulo ")
	require.NoError(t, err)
	assert.Equal(t, PolicyModulo, p)

	_, err = ParsePolicy("lemire")
	assert.Error(t, err)

	_, err = Bounded(&scriptedSource{words: []uint64{1}}, 10, Policy("lemire"))
	assert.Error(t, err)
}
