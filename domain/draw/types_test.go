package draw

import (
	"testing"

	"fairdraw/domain/core"

	"github.com/stretchr/testify/assert"
)

func TestRequestValidate(t *testing.T) {
	assert.NoError(t, Request{Range: 1, Count: 1}.Validate())
	assert.ErrorIs(t, Request{Range: 0, Count: 1}.Validate(), core.ErrInvalidRange)
	assert.ErrorIs(t, Request{Range: 10, Count: 0}.Validate(), core.ErrInvalidCount)
	// range is checked first
	assert.ErrorIs(t, Request{}.Validate(), core.ErrInvalidRange)
}

func TestShapeValidate(t *testing.T) {
	tests := []struct {
		name  string
		shape Shape
		want  error
	}{
		{"line", Line(100, 3), nil},
		{"line zero range", Line(0, 3), core.ErrInvalidRange},
		{"dice", Dice(6, 2), nil},
		{"dice zero sides", Dice(0, 2), core.ErrInvalidRange},
		{"dice zero count", Dice(6, 0), core.ErrInvalidCount},
		{"deck", Deck(52), nil},
		{"deck empty", Deck(0), core.ErrInvalidCount},
		{"unknown", Shape{Kind: "roulette"}, core.ErrInvalidShape},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.shape.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestConfigRequest(t *testing.T) {
	cfg := Config{Range: 37, Positions: 5}
	assert.Equal(t, Request{Range: 37, Count: 5}, cfg.Request())
}
