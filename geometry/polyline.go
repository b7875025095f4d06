// Package geometry implements arc-length polyline sampling/projection,
// left-normal offsetting, and Bézier intersection connectors.
package geometry

import (
	"math"

	"github.com/fib-lab/urbansim-core/vecmath"
)

// Polyline is an ordered sequence of points with a parallel prefix-length
// table. A polyline with fewer than 2 points is degenerate (length 0).
type Polyline struct {
	points []vecmath.Vec2
	accLen []float64
	length float64
}

// NewPolyline builds a Polyline from points, computing the prefix-length
// table once.
func NewPolyline(points []vecmath.Vec2) *Polyline {
	p := &Polyline{}
	p.SetPoints(points)
	return p
}

func (p *Polyline) SetPoints(points []vecmath.Vec2) {
	p.points = points
	p.recomputeLengths()
}

func (p *Polyline) recomputeLengths() {
	p.accLen = p.accLen[:0]
	p.length = 0
	if len(p.points) < 2 {
		p.accLen = append(p.accLen, 0)
		return
	}
	p.accLen = append(p.accLen, 0)
	for i := 1; i < len(p.points); i++ {
		p.length += vecmath.Norm(vecmath.Sub(p.points[i], p.points[i-1]))
		p.accLen = append(p.accLen, p.length)
	}
}

func (p *Polyline) Points() []vecmath.Vec2 { return p.points }
func (p *Polyline) Length() float64        { return p.length }
func (p *Polyline) Empty() bool            { return len(p.points) < 2 }

// Sample returns the position and unit tangent at arc length s, clamped
// to [0, length]. Ties at segment joins resolve to the lower-index
// segment (binary search finds the rightmost accLen < s).
func (p *Polyline) Sample(s float64) (pos, tangent vecmath.Vec2) {
	if len(p.points) < 2 {
		if len(p.points) == 1 {
			return p.points[0], vecmath.Vec2{X: 1}
		}
		return vecmath.Vec2{}, vecmath.Vec2{X: 1}
	}
	s = vecmath.Clamp(s, 0, p.length)

	lo, hi := 0, len(p.accLen)-1
	for lo+1 < hi {
		mid := (lo + hi) / 2
		if p.accLen[mid] < s {
			lo = mid
		} else {
			hi = mid
		}
	}
	segStart := p.accLen[lo]
	segLen := math.Max(1e-9, p.accLen[lo+1]-segStart)
	t := (s - segStart) / segLen
	p0, p1 := p.points[lo], p.points[lo+1]
	pos = vecmath.Add(vecmath.Scale(p0, 1-t), vecmath.Scale(p1, t))
	tangent = vecmath.Normalized(vecmath.Sub(p1, p0))
	return pos, tangent
}

// NormalAt returns the unit left-perpendicular of the tangent at s.
func (p *Polyline) NormalAt(s float64) vecmath.Vec2 {
	_, t := p.Sample(s)
	n := vecmath.PerpLeft(t)
	nl := vecmath.Norm(n)
	if nl > 1e-9 {
		return vecmath.Scale(n, 1/nl)
	}
	return vecmath.Vec2{Y: 1}
}

// PoseAt returns the pose at arc length s with lateral offset d (positive
// left of the centerline) and an additional heading offset.
func (p *Polyline) PoseAt(s, d, headingOffset float64) vecmath.Pose {
	pos, t := p.Sample(s)
	n := vecmath.PerpLeft(t)
	if nl := vecmath.Norm(n); nl > 1e-9 {
		n = vecmath.Scale(n, 1/nl)
	}
	pos = vecmath.Add(pos, vecmath.Scale(n, d))
	theta := math.Atan2(t.Y, t.X) + headingOffset
	return vecmath.Pose{X: pos.X, Y: pos.Y, Theta: theta}
}

// ProjectS returns the arc-length parameter of the point on the polyline
// closest to p, exact per segment, minimum over segments, ties resolved
// to the lowest segment index.
func (p *Polyline) ProjectS(pt vecmath.Vec2) float64 {
	if len(p.points) < 2 {
		return 0
	}
	bestS, bestD2 := 0.0, math.MaxFloat64
	for i := 0; i+1 < len(p.points); i++ {
		a, b := p.points[i], p.points[i+1]
		ab := vecmath.Sub(b, a)
		l2 := vecmath.Dot(ab, ab)
		if l2 < 1e-12 {
			continue
		}
		t := vecmath.Clamp(vecmath.Dot(vecmath.Sub(pt, a), ab)/l2, 0, 1)
		proj := vecmath.Add(a, vecmath.Scale(ab, t))
		d := vecmath.Sub(pt, proj)
		d2 := vecmath.Dot(d, d)
		if d2 < bestD2 {
			bestD2 = d2
			bestS = p.accLen[i] + math.Sqrt(l2)*t
		}
	}
	return bestS
}

// OffsetPolyline returns a parallel polyline shifted by offset along the
// left normal. A positive offset shifts left, negative shifts right.
// Degenerate inputs (fewer than 2 points) are returned unchanged.
func OffsetPolyline(pts []vecmath.Vec2, offset float64) []vecmath.Vec2 {
	if len(pts) < 2 {
		out := make([]vecmath.Vec2, len(pts))
		copy(out, pts)
		return out
	}
	out := make([]vecmath.Vec2, len(pts))
	for i := range pts {
		var t0, t1 vecmath.Vec2
		if i > 0 {
			t0 = vecmath.Normalized(vecmath.Sub(pts[i], pts[i-1]))
		}
		if i+1 < len(pts) {
			t1 = vecmath.Normalized(vecmath.Sub(pts[i+1], pts[i]))
		}
		var t vecmath.Vec2
		switch {
		case i == 0:
			t = t1
		case i+1 == len(pts):
			t = t0
		default:
			t = vecmath.Normalized(vecmath.Add(t0, t1))
		}
		n := vecmath.Normalized(vecmath.PerpLeft(t))
		out[i] = vecmath.Add(pts[i], vecmath.Scale(n, offset))
	}
	return out
}

// CubicBezier evaluates the cubic Bézier curve defined by p0..p3 at t.
func CubicBezier(p0, p1, p2, p3 vecmath.Vec2, t float64) vecmath.Vec2 {
	u := 1 - t
	a := vecmath.Scale(p0, u*u*u)
	b := vecmath.Scale(p1, 3*u*u*t)
	c := vecmath.Scale(p2, 3*u*t*t)
	d := vecmath.Scale(p3, t*t*t)
	return vecmath.Add(vecmath.Add(a, b), vecmath.Add(c, d))
}

// BezierConnector returns steps+1 points of a cubic Bézier from p0 to p3,
// with handle points built from dir0/dir1 and handle lengths h0/h1.
func BezierConnector(p0, dir0, p3, dir1 vecmath.Vec2, h0, h1 float64, steps int) []vecmath.Vec2 {
	n0 := vecmath.Normalized(dir0)
	n1 := vecmath.Normalized(dir1)
	p1 := vecmath.Add(p0, vecmath.Scale(n0, h0))
	p2 := vecmath.Sub(p3, vecmath.Scale(n1, h1))
	pts := make([]vecmath.Vec2, 0, steps+1)
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		pts = append(pts, CubicBezier(p0, p1, p2, p3, t))
	}
	return pts
}
