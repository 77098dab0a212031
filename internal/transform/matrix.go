/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

// Package transform holds the affine matrix arithmetic used to track the
// CTM, text matrix and text line matrix while a content stream is
// interpreted.
package transform

import (
	"fmt"
	"math"

	"github.com/bbqsrc/pdf-strings/internal/common"
)

// Matrix is a 3x2 affine transform stored in homogeneous coordinates:
//
//	a  b  0
//	c  d  0
//	tx ty 1
type Matrix [9]float64

// IdentityMatrix returns the identity transform.
func IdentityMatrix() Matrix {
	return NewMatrix(1, 0, 0, 1, 0, 0)
}

// TranslationMatrix returns a matrix that translates by tx, ty.
func TranslationMatrix(tx, ty float64) Matrix {
	return NewMatrix(1, 0, 0, 1, tx, ty)
}

// NewMatrix builds the affine transform a,b,c,d,tx,ty.
func NewMatrix(a, b, c, d, tx, ty float64) Matrix {
	m := Matrix{
		a, b, 0,
		c, d, 0,
		tx, ty, 1,
	}
	m.clampRange()
	return m
}

// Point is a 2D point or vector in whatever space its Matrix left it.
type Point struct {
	X, Y float64
}

// String describes m as a,b,c,d:tx,ty.
func (m Matrix) String() string {
	a, b, c, d, tx, ty := m[0], m[1], m[3], m[4], m[6], m[7]
	return fmt.Sprintf("[%7.4f,%7.4f,%7.4f,%7.4f:%7.4f,%7.4f]", a, b, c, d, tx, ty)
}

// Concat sets m to b x m, the PDF convention for composing a new operator's
// matrix with the matrix already in effect.
func (m *Matrix) Concat(b Matrix) {
	*m = Matrix{
		b[0]*m[0] + b[1]*m[3], b[0]*m[1] + b[1]*m[4], 0,
		b[3]*m[0] + b[4]*m[3], b[3]*m[1] + b[4]*m[4], 0,
		b[6]*m[0] + b[7]*m[3] + m[6], b[6]*m[1] + b[7]*m[4] + m[7], 1,
	}
	m.clampRange()
}

// Mult returns b x m without mutating m.
func (m Matrix) Mult(b Matrix) Matrix {
	m.Concat(b)
	return m
}

// Translation returns the translation part of m.
func (m Matrix) Translation() (float64, float64) {
	return m[6], m[7]
}

// Transform maps the point (x,y) through m.
func (m Matrix) Transform(x, y float64) (float64, float64) {
	xp := x*m[0] + y*m[3] + m[6]
	yp := x*m[1] + y*m[4] + m[7]
	return xp, yp
}

// TransformVector maps the vector (x,y) through the linear part of m only
// (no translation) — used for advance vectors.
func (m Matrix) TransformVector(x, y float64) (float64, float64) {
	xp := x*m[0] + y*m[3]
	yp := x*m[1] + y*m[4]
	return xp, yp
}

// ScalingFactorX returns the X scaling of the linear part of m.
func (m Matrix) ScalingFactorX() float64 {
	return math.Hypot(m[0], m[1])
}

// ScalingFactorY returns the Y scaling of the linear part of m.
func (m Matrix) ScalingFactorY() float64 {
	return math.Hypot(m[3], m[4])
}

// Norm returns the operator norm of the linear part of m: the scale factor
// applied to the longer of the two basis vectors. Used to compute device
// space font size.
func (m Matrix) Norm() float64 {
	sx, sy := m.ScalingFactorX(), m.ScalingFactorY()
	if sx > sy {
		return sx
	}
	return sy
}

// Angle returns the rotation of m's linear part in degrees, in [0, 360).
func (m Matrix) Angle() float64 {
	theta := math.Atan2(m[1], m[0])
	if theta < 0 {
		theta += 2 * math.Pi
	}
	return theta / math.Pi * 180.0
}

// Determinant returns the determinant of the linear part of m.
func (m Matrix) Determinant() float64 {
	return m[0]*m[4] - m[1]*m[3]
}

// Inverse returns the inverse of m, or ok=false if m is singular.
func (m Matrix) Inverse() (Matrix, bool) {
	a, b := m[0], m[1]
	c, d := m[3], m[4]
	tx, ty := m[6], m[7]
	det := a*d - b*c
	if math.Abs(det) < minDeterminant {
		return Matrix{}, false
	}
	aI, bI := d/det, -b/det
	cI, dI := -c/det, a/det
	txI := -(aI*tx + cI*ty)
	tyI := -(bI*tx + dI*ty)
	return NewMatrix(aI, bI, cI, dI, txI, tyI), true
}

// clampRange guards against runaway values from corrupt content streams.
func (m *Matrix) clampRange() {
	for i, x := range m {
		if x > maxAbsNumber {
			common.Log.Debug("CLAMP: %g -> %g", x, maxAbsNumber)
			m[i] = maxAbsNumber
		} else if x < -maxAbsNumber {
			common.Log.Debug("CLAMP: %g -> %g", x, -maxAbsNumber)
			m[i] = -maxAbsNumber
		}
	}
}

const (
	maxAbsNumber   = 1e9
	minDeterminant = 1.0e-6
)

// SanitizeFloat clamps NaN/Inf to 0's "non-finite numbers
// sanitised at operator boundaries" requirement.
func SanitizeFloat(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return x
}
