package lod

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectLevel(t *testing.T) {
	levels := []Level{{Distance: 0}, {Distance: 20}, {Distance: 50}}

	tests := []struct {
		name       string
		distance   float32
		current    int
		hysteresis float32
		want       int
	}{
		{"first pass near", 5, -1, 5, 0},
		{"first pass far ignores hysteresis", 21, -1, 5, 1},
		{"deepest reached", 80, -1, 0, 2},
		// With no level shown a threshold counts as reached; once a level is
		// shown the distance must pass the boundary by more than hysteresis.
		{"first pass exact threshold", 20, -1, 0, 1},
		{"exact threshold holds", 20, 0, 0, 0},
		{"just past threshold", 20.5, 0, 0, 1},
		{"inside band going out", 24, 0, 5, 0},
		{"past band going out", 26, 0, 5, 1},
		{"skips two levels", 60, 0, 5, 2},
		{"jump limited by far band", 52, 0, 5, 1},
		{"inside band coming back", 16, 1, 5, 1},
		{"past band coming back", 14, 1, 5, 0},
		{"far to near", 1, 2, 5, 0},
		{"stale current", 30, 7, 5, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, selectLevel(levels, tt.distance, tt.current, tt.hysteresis))
		})
	}
}

func TestDistanceScale(t *testing.T) {
	assert.Equal(t, float32(1), distanceScale("high"))
	assert.Equal(t, float32(1.5), distanceScale("medium"))
	assert.Equal(t, float32(2), distanceScale("low"))
}

func TestDecimationRatio(t *testing.T) {
	assert.Equal(t, float32(1), decimationRatio(0))
	assert.Equal(t, float32(0.5), decimationRatio(1))
	assert.Equal(t, float32(0.125), decimationRatio(3))
}
