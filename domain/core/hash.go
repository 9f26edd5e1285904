package core

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// BatchFingerprint identifies the exact content of a recorded batch.
type BatchFingerprint Hash

func (h BatchFingerprint) String() string { return Hash(h).String() }

// BatchHasher accumulates a BatchFingerprint line by line. Line boundaries are
// part of the hash, so [[1 2] [3]] and [[1] [2 3]] differ.
type BatchHasher struct {
	h   hash.Hash
	buf [8]byte
}

// NewBatchHasher returns an empty hasher.
func NewBatchHasher() *BatchHasher {
	return &BatchHasher{h: sha256.New()}
}

// Add appends one draw line.
func (b *BatchHasher) Add(line []uint64) {
	binary.LittleEndian.PutUint64(b.buf[:], uint64(len(line)))
	b.h.Write(b.buf[:])
	for _, v := range line {
		binary.LittleEndian.PutUint64(b.buf[:], v)
		b.h.Write(b.buf[:])
	}
}

// Sum returns the fingerprint of the lines added so far.
func (b *BatchHasher) Sum() BatchFingerprint {
	return BatchFingerprint(hex.EncodeToString(b.h.Sum(nil)))
}

// ComputeBatchFingerprint hashes the draw lines of a batch in order.
func ComputeBatchFingerprint(lines [][]uint64) BatchFingerprint {
	b := NewBatchHasher()
	for _, line := range lines {
		b.Add(line)
	}
	return b.Sum()
}
