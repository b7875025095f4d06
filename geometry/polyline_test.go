package geometry_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fib-lab/urbansim-core/geometry"
	"github.com/fib-lab/urbansim-core/vecmath"
)

func straightLine() *geometry.Polyline {
	return geometry.NewPolyline([]vecmath.Vec2{{X: 0, Y: 0}, {X: 10, Y: 0}})
}

func TestLengthMatchesEuclideanSum(t *testing.T) {
	p := straightLine()
	assert.InDelta(t, 10.0, p.Length(), 1e-9)
}

func TestSampleAtMidpoint(t *testing.T) {
	p := straightLine()
	pos, tangent := p.Sample(5)
	assert.InDelta(t, 5.0, pos.X, 1e-9)
	assert.InDelta(t, 0.0, pos.Y, 1e-9)
	assert.InDelta(t, 1.0, tangent.X, 1e-9)
}

func TestSampleClampsOutOfRange(t *testing.T) {
	p := straightLine()
	pos, _ := p.Sample(-5)
	assert.InDelta(t, 0.0, pos.X, 1e-9)
	pos, _ = p.Sample(100)
	assert.InDelta(t, 10.0, pos.X, 1e-9)
}

func TestProjectSClosestPoint(t *testing.T) {
	p := straightLine()
	s := p.ProjectS(vecmath.Vec2{X: 3, Y: 5})
	assert.InDelta(t, 3.0, s, 1e-9)
}

func TestPoseAtLateralOffset(t *testing.T) {
	p := straightLine()
	pose := p.PoseAt(5, 1, 0)
	// Left of a +X-heading tangent is +Y.
	assert.InDelta(t, 1.0, pose.Y, 1e-9)
	assert.InDelta(t, 0.0, pose.Theta, 1e-9)
}

func TestOffsetPolylinePreservesLengthOnStraightSegment(t *testing.T) {
	pts := []vecmath.Vec2{{X: 0, Y: 0}, {X: 10, Y: 0}}
	offset := geometry.OffsetPolyline(pts, 2)
	p := geometry.NewPolyline(offset)
	assert.InDelta(t, 10.0, p.Length(), 1e-9)
	assert.InDelta(t, 2.0, offset[0].Y, 1e-9)
}

func TestBezierConnectorEndpoints(t *testing.T) {
	p0 := vecmath.Vec2{X: 0, Y: 0}
	p3 := vecmath.Vec2{X: 10, Y: 10}
	pts := geometry.BezierConnector(p0, vecmath.Vec2{X: 1, Y: 0}, p3, vecmath.Vec2{X: 0, Y: 1}, 3, 3, 10)
	assert.InDelta(t, p0.X, pts[0].X, 1e-9)
	assert.InDelta(t, p0.Y, pts[0].Y, 1e-9)
	last := pts[len(pts)-1]
	assert.InDelta(t, p3.X, last.X, 1e-9)
	assert.InDelta(t, p3.Y, last.Y, 1e-9)
}

func TestEmptyPolyline(t *testing.T) {
	p := geometry.NewPolyline(nil)
	assert.True(t, p.Empty())
	assert.Equal(t, 0.0, p.Length())
}

func TestNormalAtIsUnitLength(t *testing.T) {
	p := straightLine()
	n := p.NormalAt(5)
	assert.InDelta(t, 1.0, math.Hypot(n.X, n.Y), 1e-9)
}
