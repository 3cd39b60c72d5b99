// Package geometry provides the numeric primitives used by the exercise
// detectors: distances, angles, baseline ratios and confidence smoothing.
// All functions are pure and operate on 2D image-plane coordinates.
package geometry

import "math"

// Point represents a 2D point in image-plane coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns the component-wise sum of p and q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Scale returns p with both components multiplied by f.
func (p Point) Scale(f float64) Point {
	return Point{X: p.X * f, Y: p.Y * f}
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b Point) Point {
	return a.Add(b).Scale(0.5)
}

// Distance calculates the Euclidean distance between two points.
func Distance(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Angle calculates the angle in degrees formed at vertex b by the
// segments b-a and b-c. Returns 0 when either segment has zero length.
func Angle(a, b, c Point) float64 {
	v1x, v1y := a.X-b.X, a.Y-b.Y
	v2x, v2y := c.X-b.X, c.Y-b.Y

	n1 := math.Sqrt(v1x*v1x + v1y*v1y)
	n2 := math.Sqrt(v2x*v2x + v2y*v2y)
	if n1 == 0 || n2 == 0 {
		return 0
	}

	cos := (v1x*v2x + v1y*v2y) / (n1 * n2)
	cos = Clamp(cos, -1, 1)
	return math.Acos(cos) * 180 / math.Pi
}

// Ratio divides value by baseline. A zero baseline is degenerate and
// yields a neutral ratio of 1.0, meaning "no deviation from baseline".
func Ratio(value, baseline float64) float64 {
	if baseline == 0 {
		return 1.0
	}
	return value / baseline
}

// Smooth applies exponential smoothing: factor*current + (1-factor)*previous.
// Callers with no prior value should pass current through unchanged instead.
func Smooth(current, previous, factor float64) float64 {
	return factor*current + (1-factor)*previous
}

// Clamp limits value to the range [lo, hi].
func Clamp(value, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, value))
}
