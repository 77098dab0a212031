/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package transform

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityTransform(t *testing.T) {
	m := IdentityMatrix()
	x, y := m.Transform(3, 4)
	assert.Equal(t, 3.0, x)
	assert.Equal(t, 4.0, y)
}

func TestTranslationMatrix(t *testing.T) {
	m := TranslationMatrix(10, -5)
	x, y := m.Transform(0, 0)
	assert.Equal(t, 10.0, x)
	assert.Equal(t, -5.0, y)
}

func TestConcatOrder(t *testing.T) {
	// text-rendering matrix = text-matrix . CTM (left multiplication, PDF convention)
	tm := TranslationMatrix(5, 0)
	ctm := NewMatrix(2, 0, 0, 2, 100, 100)
	trm := ctm.Mult(tm)
	x, y := trm.Transform(0, 0)
	assert.Equal(t, 110.0, x)
	assert.Equal(t, 100.0, y)
}

func TestInverseRoundTrip(t *testing.T) {
	m := NewMatrix(2, 0.5, -0.3, 1.5, 12, -7)
	inv, ok := m.Inverse()
	require.True(t, ok)
	x, y := m.Transform(3, 4)
	xp, yp := inv.Transform(x, y)
	assert.InDelta(t, 3.0, xp, 1e-9)
	assert.InDelta(t, 4.0, yp, 1e-9)
}

func TestSingularMatrixHasNoInverse(t *testing.T) {
	m := NewMatrix(0, 0, 0, 0, 0, 0)
	_, ok := m.Inverse()
	assert.False(t, ok)
}

func TestAngle(t *testing.T) {
	m := NewMatrix(0, 1, -1, 0, 0, 0) // 90 degree rotation
	assert.InDelta(t, 90.0, m.Angle(), 1e-6)
}

func TestTransformMatchesConcatConvention(t *testing.T) {
	// A 90-degree rotation's x-axis basis vector (1,0) must land where cm's
	// own composition (verified by TestConcatOrder) would place it: at the
	// matrix's (a,b) row, not (a,c) — this is what rotated.pdf-style text
	// placement depends on.
	rot := NewMatrix(0, 1, -1, 0, 0, 0)
	x, y := rot.Transform(1, 0)
	assert.InDelta(t, 0.0, x, 1e-9)
	assert.InDelta(t, 1.0, y, 1e-9)

	vx, vy := rot.TransformVector(1, 0)
	assert.InDelta(t, 0.0, vx, 1e-9)
	assert.InDelta(t, 1.0, vy, 1e-9)
}

func TestClampRangeOnOverflow(t *testing.T) {
	m := NewMatrix(1e20, 0, 0, 1, 0, 0)
	assert.Equal(t, maxAbsNumber, m[0])
}

func TestSanitizeFloat(t *testing.T) {
	assert.Equal(t, 0.0, SanitizeFloat(math.NaN()))
	assert.Equal(t, 0.0, SanitizeFloat(math.Inf(1)))
	assert.Equal(t, 0.0, SanitizeFloat(math.Inf(-1)))
	assert.Equal(t, 5.5, SanitizeFloat(5.5))
}
