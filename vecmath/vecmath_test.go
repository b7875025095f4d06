package vecmath_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fib-lab/urbansim-core/vecmath"
)

func TestAddSubScale(t *testing.T) {
	a := vecmath.Vec2{X: 1, Y: 2}
	b := vecmath.Vec2{X: 3, Y: 4}
	assert.Equal(t, vecmath.Vec2{X: 4, Y: 6}, vecmath.Add(a, b))
	assert.Equal(t, vecmath.Vec2{X: -2, Y: -2}, vecmath.Sub(a, b))
	assert.Equal(t, vecmath.Vec2{X: 2, Y: 4}, vecmath.Scale(a, 2))
}

func TestNormalizedUnitLength(t *testing.T) {
	v := vecmath.Normalized(vecmath.Vec2{X: 3, Y: 4})
	assert.InDelta(t, 1.0, vecmath.Norm(v), 1e-9)
}

func TestNormalizedDegenerate(t *testing.T) {
	v := vecmath.Normalized(vecmath.Vec2{})
	assert.Equal(t, vecmath.Vec2{}, v)
}

func TestPerpLeftIsOrthogonal(t *testing.T) {
	v := vecmath.Vec2{X: 1, Y: 0}
	p := vecmath.PerpLeft(v)
	assert.InDelta(t, 0.0, vecmath.Dot(v, p), 1e-9)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 5.0, vecmath.Clamp(10, 0, 5))
	assert.Equal(t, 0.0, vecmath.Clamp(-10, 0, 5))
	assert.Equal(t, 3.0, vecmath.Clamp(3, 0, 5))
}

func TestAngleDiffWraps(t *testing.T) {
	d := vecmath.AngleDiff(math.Pi-0.1, -math.Pi+0.1)
	assert.InDelta(t, -0.2, d, 1e-9)
}

func TestNormalizeAngleRange(t *testing.T) {
	n := vecmath.NormalizeAngle(3 * math.Pi)
	assert.True(t, n >= -math.Pi && n <= math.Pi)
}
