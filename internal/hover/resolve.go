// Package hover turns pointer offsets over the elevation chart into
// waypoint indices and keeps high frequency pointer streams from
// flooding the selection state.
package hover

import (
	"math"

	"backend-trailview/internal/scale"
)

// Resolve maps a pixel offset from the chart's left edge to a 0-based
// waypoint index of a track with n waypoints. Offsets between two samples
// resolve to the later one. ok is false when there is nothing to resolve.
func Resolve(x, chartWidth float64, n int) (index int, ok bool) {
	if n < 1 || math.IsNaN(x) {
		return 0, false
	}
	s := scale.NewLinear([2]float64{1, float64(n)}, [2]float64{0, chartWidth})
	v := math.Ceil(s.Invert(x))
	v = math.Max(1, math.Min(float64(n), v))
	return int(v) - 1, true
}

// Offset is the inverse of Resolve: the pixel offset of index on the chart.
func Offset(index int, chartWidth float64, n int) float64 {
	s := scale.NewLinear([2]float64{1, float64(n)}, [2]float64{0, chartWidth})
	return s.Map(float64(index + 1))
}
