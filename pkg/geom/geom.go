// Package geom holds the small value types shared by the protocol, the
// resource registry, and application callbacks.
package geom

import "math"

// Point is an integer canvas coordinate.
type Point struct {
	X int
	Y int
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y int) Point {
	return Point{X: x, Y: y}
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// DoublePoint is a real-valued coordinate, used for scale, shear and
// translation factors.
type DoublePoint struct {
	X float64
	Y float64
}

// Size is an integer width and height.
type Size struct {
	Width  int
	Height int
}

// Rect is an axis-aligned rectangle anchored at its top-left corner.
type Rect struct {
	TopLeft Point
	Size    Size
}

// NewRect builds a Rect from its top-left corner and dimensions.
func NewRect(x, y, width, height int) Rect {
	return Rect{TopLeft: Point{X: x, Y: y}, Size: Size{Width: width, Height: height}}
}

// Contains reports whether p lies inside r. The right and bottom edges are
// exclusive.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.TopLeft.X && p.X < r.TopLeft.X+r.Size.Width &&
		p.Y >= r.TopLeft.Y && p.Y < r.TopLeft.Y+r.Size.Height
}

// Matrix is a 2-D affine transform in canvas order: a, b, c, d, e, f.
type Matrix [6]float64

// Identity returns the identity transform.
func Identity() Matrix {
	return Matrix{1, 0, 0, 1, 0, 0}
}

// Scale returns a scaling transform.
func Scale(factor DoublePoint) Matrix {
	return Matrix{factor.X, 0, 0, factor.Y, 0, 0}
}

// Rotate returns a rotation by the given angle in radians.
func Rotate(radians float64) Matrix {
	c, s := math.Cos(radians), math.Sin(radians)
	return Matrix{c, s, -s, c, 0, 0}
}

// Translate returns a translation transform.
func Translate(offset DoublePoint) Matrix {
	return Matrix{1, 0, 0, 1, offset.X, offset.Y}
}

// Shear returns a shear transform.
func Shear(factor DoublePoint) Matrix {
	return Matrix{1, factor.Y, factor.X, 1, 0, 0}
}
