package core

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedIsDegenerate(t *testing.T) {
	var zero Seed
	assert.True(t, zero.IsDegenerate())
	assert.ErrorIs(t, zero.Validate(), ErrEmptySeed)

	var ones Seed
	for i := range ones {
		ones[i] = 0xff
	}
	assert.True(t, ones.IsDegenerate())

	var s Seed
	s[SeedSize-1] = 1
	assert.False(t, s.IsDegenerate())
	assert.NoError(t, s.Validate())
}

func TestNewSeedLength(t *testing.T) {
	_, err := NewSeed(make([]byte, 31))
	assert.True(t, errors.Is(err, ErrEmptySeed))

	b := bytes.Repeat([]byte{0xab, 0xcd}, SeedSize/2)
	s, err := NewSeed(b)
	require.NoError(t, err)
	assert.Equal(t, b, s.Bytes())
}

func TestParseSeedRoundTrip(t *testing.T) {
	var s Seed
	for i := range s {
		s[i] = byte(i)
	}
	parsed, err := ParseSeed(s.String())
	require.NoError(t, err)
	assert.Equal(t, s, parsed)

	_, err = ParseSeed("zz")
	assert.ErrorIs(t, err, ErrMalformedInput)
}

func TestComputeBatchFingerprintLineBoundaries(t *testing.T) {
	a := ComputeBatchFingerprint([][]uint64{{1, 2}, {3}})
	b := ComputeBatchFingerprint([][]uint64{{1}, {2, 3}})
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, ComputeBatchFingerprint([][]uint64{{1, 2}, {3}}))
}
