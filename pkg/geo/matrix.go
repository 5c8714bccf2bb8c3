package geo

import "fmt"

// Matrix is a 2D affine transform in the layout used by AFP placements:
//
//	x' = A*x + C*y + TX
//	y' = B*x + D*y + TY
type Matrix struct {
	A, B, C, D float64
	TX, TY     float64
}

// Identity returns the identity transform.
func Identity() Matrix {
	return Matrix{A: 1, D: 1}
}

// Translate returns a pure translation.
func Translate(x, y float64) Matrix {
	return Matrix{A: 1, D: 1, TX: x, TY: y}
}

// Multiply returns the transform that applies other first, then m.
func (m Matrix) Multiply(other Matrix) Matrix {
	return Matrix{
		A:  m.A*other.A + m.C*other.B,
		B:  m.B*other.A + m.D*other.B,
		C:  m.A*other.C + m.C*other.D,
		D:  m.B*other.C + m.D*other.D,
		TX: m.A*other.TX + m.C*other.TY + m.TX,
		TY: m.B*other.TX + m.D*other.TY + m.TY,
	}
}

// MultiplyPoint applies the transform to p.
func (m Matrix) MultiplyPoint(p Point) Point {
	return Point{
		X: m.A*p.X + m.C*p.Y + m.TX,
		Y: m.B*p.X + m.D*p.Y + m.TY,
	}
}

// IsIdentity reports whether m is exactly the identity transform.
func (m Matrix) IsIdentity() bool {
	return m.IsTranslation() && m.TX == 0 && m.TY == 0
}

// IsTranslation reports whether m has no scale, rotation or skew component.
func (m Matrix) IsTranslation() bool {
	return m.A == 1 && m.B == 0 && m.C == 0 && m.D == 1
}

// String returns the matrix components for logging.
func (m Matrix) String() string {
	return fmt.Sprintf("[a=%g b=%g c=%g d=%g tx=%g ty=%g]", m.A, m.B, m.C, m.D, m.TX, m.TY)
}
