// Package geo provides the 2D point, affine matrix and color types used by AFP animations.
package geo

import (
	"fmt"
	"image"
)

// Point is a 2D point or offset in pixels.
type Point struct {
	X, Y float64
}

// Origin returns the zero point.
func Origin() Point {
	return Point{}
}

// Add returns p + other.
func (p Point) Add(other Point) Point {
	return Point{p.X + other.X, p.Y + other.Y}
}

// Subtract returns p - other.
func (p Point) Subtract(other Point) Point {
	return Point{p.X - other.X, p.Y - other.Y}
}

// Scale returns p * s.
func (p Point) Scale(s float64) Point {
	return Point{p.X * s, p.Y * s}
}

// Image converts to integer pixel coordinates, truncating toward zero.
func (p Point) Image() image.Point {
	return image.Point{X: int(p.X), Y: int(p.Y)}
}

// String returns the point as "(x, y)".
func (p Point) String() string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}
