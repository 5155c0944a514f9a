package transform

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Distances holds the three pixel-distance metrics between two points.
type Distances struct {
	Euclidean  float64 // straight-line (L2) distance
	CityBlock  float64 // 4-connected (L1) distance
	Chessboard float64 // 8-connected (L-infinity) distance
}

// Distance computes the Euclidean, city-block and chessboard distances
// between p and q.
func Distance(p, q Point) Distances {
	s := []float64{p.X, p.Y}
	t := []float64{q.X, q.Y}
	return Distances{
		Euclidean:  floats.Distance(s, t, 2),
		CityBlock:  floats.Distance(s, t, 1),
		Chessboard: floats.Distance(s, t, math.Inf(1)),
	}
}

// SortCorners orders the four corners of a quadrilateral clockwise as
// top-left, top-right, bottom-right, bottom-left.
func SortCorners(corners [4]Point) [4]Point {
	pts := corners[:]
	sort.Slice(pts, func(i, j int) bool { return pts[i].X < pts[j].X })

	left := [2]Point{pts[0], pts[1]}
	right := [2]Point{pts[2], pts[3]}
	if left[0].Y > left[1].Y {
		left[0], left[1] = left[1], left[0]
	}
	if right[0].Y > right[1].Y {
		right[0], right[1] = right[1], right[0]
	}

	return [4]Point{left[0], right[0], right[1], left[1]}
}
