package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortCorners(t *testing.T) {
	want := [4]Point{{0, 0}, {10, 0}, {10, 8}, {0, 8}}

	tests := map[string][4]Point{
		"already sorted":  {{0, 0}, {10, 0}, {10, 8}, {0, 8}},
		"reversed":        {{0, 8}, {10, 8}, {10, 0}, {0, 0}},
		"shuffled":        {{10, 8}, {0, 0}, {0, 8}, {10, 0}},
		"bottom-up pairs": {{0, 8}, {0, 0}, {10, 8}, {10, 0}},
	}
	for name, corners := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, want, SortCorners(corners))
		})
	}
}

func TestSortCornersDoesNotMutateInput(t *testing.T) {
	corners := [4]Point{{10, 8}, {0, 0}, {0, 8}, {10, 0}}
	original := corners
	SortCorners(corners)
	assert.Equal(t, original, corners)
}

func TestDistance(t *testing.T) {
	d := Distance(Point{0, 0}, Point{3, 4})
	assert.InDelta(t, 5, d.Euclidean, 1e-12)
	assert.InDelta(t, 7, d.CityBlock, 1e-12)
	assert.InDelta(t, 4, d.Chessboard, 1e-12)

	zero := Distance(Point{2, 2}, Point{2, 2})
	assert.Zero(t, zero.Euclidean)
	assert.Zero(t, zero.CityBlock)
	assert.Zero(t, zero.Chessboard)
}
