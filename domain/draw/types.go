// Package draw describes what a game session may ask of its number stream.
package draw

import (
	"fmt"

	"fairdraw/domain/core"
)

// Request asks for Count independent values, each uniform over [0, Range).
type Request struct {
	Range uint64 `json:"range"`
	Count uint32 `json:"count"`
}

// Validate checks the request invariants without touching any stream.
func (r Request) Validate() error {
	if r.Range == 0 {
		return core.NewInvalidRangeError(r.Range)
	}
	if r.Count == 0 {
		return core.ErrInvalidCount
	}
	return nil
}

// Result holds drawn values in the order they were produced.
type Result struct {
	Values []uint64 `json:"values"`
}

// Config is the per-session draw configuration. It is carried by value in the
// session that owns it and is never shared between sessions.
type Config struct {
	Range     uint64 `json:"range"`
	Positions uint32 `json:"positions"`
}

// Request converts the configuration into a draw request.
func (c Config) Request() Request {
	return Request{Range: c.Range, Count: c.Positions}
}

// ShapeKind tags the variants of Shape.
type ShapeKind string

const (
	// ShapeLine is a line of Count values in [0, Range).
	ShapeLine ShapeKind = "line"
	// ShapeDice is Count rolls of a die numbered 1..Sides.
	ShapeDice ShapeKind = "dice"
	// ShapeDeck is a permutation of 0..Size-1.
	ShapeDeck ShapeKind = "deck"
)

// Shape is a tagged variant over the request shapes different game types need.
// Only the fields relevant to Kind are read.
type Shape struct {
	Kind  ShapeKind `json:"kind"`
	Range uint64    `json:"range,omitempty"`
	Sides uint64    `json:"sides,omitempty"`
	Count uint32    `json:"count,omitempty"`
	Size  uint32    `json:"size,omitempty"`
}

// Line returns a line shape.
func Line(rng uint64, count uint32) Shape {
	return Shape{Kind: ShapeLine, Range: rng, Count: count}
}

// Dice returns a dice shape.
func Dice(sides uint64, count uint32) Shape {
	return Shape{Kind: ShapeDice, Sides: sides, Count: count}
}

// Deck returns a deck shuffle shape.
func Deck(size uint32) Shape {
	return Shape{Kind: ShapeDeck, Size: size}
}

// Validate checks the shape before any entropy is consumed.
func (s Shape) Validate() error {
	switch s.Kind {
	case ShapeLine:
		return Request{Range: s.Range, Count: s.Count}.Validate()
	case ShapeDice:
		return Request{Range: s.Sides, Count: s.Count}.Validate()
	case ShapeDeck:
		if s.Size == 0 {
			return core.ErrInvalidCount
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", core.ErrInvalidShape, s.Kind)
	}
}
