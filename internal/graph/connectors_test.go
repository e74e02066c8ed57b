package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoute(t *testing.T) {
	tests := []struct {
		name                                  string
		fromRow, fromLane, via, toRow, toLane int
		want                                  []anchor
	}{
		{"adjacent rows", 0, 0, 0, 1, 0, []anchor{{0, 0}, {0, 1}}},
		{"adjacent rows across lanes", 0, 1, 2, 1, 0, []anchor{{1, 0}, {0, 1}}},
		{"long straight run", 0, 2, 2, 9, 2, []anchor{{2, 0}, {2, 9}}},
		{"merge onto a new lane", 0, 0, 1, 5, 1, []anchor{{0, 0}, {1, 1}, {1, 5}}},
		{"branch off the parent lane", 1, 1, 1, 4, 0, []anchor{{1, 1}, {1, 3}, {0, 4}}},
		{"bend on both ends", 0, 0, 2, 6, 1, []anchor{{0, 0}, {2, 1}, {2, 5}, {1, 6}}},
		{"two row span bends once each", 0, 0, 2, 2, 1, []anchor{{0, 0}, {2, 1}, {1, 2}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, route(tt.fromRow, tt.fromLane, tt.via, tt.toRow, tt.toLane))
		})
	}
}

func TestGeometryPath_CurveControls(t *testing.T) {
	g := DefaultGeometry
	segments := g.path([]anchor{{0, 0}, {1, 1}})

	require.Len(t, segments, 1)
	s := segments[0]
	assert.Equal(t, SegmentCurve, s.Kind)
	assert.Equal(t, Point{X: 8, Y: 14}, s.From)
	assert.Equal(t, Point{X: 24, Y: 42}, s.To)
	require.NotNil(t, s.C1)
	require.NotNil(t, s.C2)
	assert.InDelta(t, 14+28*0.8, s.C1.Y, 1e-9)
	assert.Equal(t, 8.0, s.C1.X)
	assert.InDelta(t, 42-28*0.8, s.C2.Y, 1e-9)
	assert.Equal(t, 24.0, s.C2.X)
}

func TestGeometry_Normalized(t *testing.T) {
	assert.Equal(t, DefaultGeometry, Geometry{}.normalized())
	assert.Equal(t, Geometry{LaneWidth: 4, RowHeight: 28, CurveFraction: 0.8},
		Geometry{LaneWidth: 4, CurveFraction: 3}.normalized())
}
