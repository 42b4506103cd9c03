package mural

// Bezier handle lengths in world units. The horizontal handle grows with the
// endpoint separation but stays within these bounds so curves never collapse
// flat or balloon across the canvas.
const (
	bezierHandleScale = 0.45
	bezierHandleMin   = 60.0
	bezierHandleMax   = 320.0
)

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// PortPosition returns the world-space point where an edge attaches to a
// node. Ports are vertically centered on the node's left or right edge.
func PortPosition(n *GraphNode, side Side, size Size) Vec2 {
	if side == SideRight {
		return Vec2{X: n.X + size.W, Y: n.Y + size.H/2}
	}
	return Vec2{X: n.X, Y: n.Y + size.H/2}
}

// sideDir returns the outward horizontal direction for a port side:
// -1 for left, +1 for right.
func sideDir(side Side) float64 {
	if side == SideRight {
		return 1
	}
	return -1
}

// BezierControlPoints computes the two inner control points of the cubic
// bezier connecting two ports. Each control point offsets outward from its
// endpoint in the direction implied by the port side, so the curve departs
// and arrives roughly perpendicular to the node edge and never loops
// backward when the target sits left of the source.
func BezierControlPoints(from, to Vec2, fromSide, toSide Side) (c1, c2 Vec2) {
	handle := clamp(abs(to.X-from.X)*bezierHandleScale, bezierHandleMin, bezierHandleMax)
	c1 = Vec2{X: from.X + sideDir(fromSide)*handle, Y: from.Y}
	c2 = Vec2{X: to.X + sideDir(toSide)*handle, Y: to.Y}
	return c1, c2
}

// CubicBezierPoint evaluates the cubic bezier defined by p0..p3 at t.
// Used both for rendering and for curve-proximity hit-testing.
func CubicBezierPoint(p0, p1, p2, p3 Vec2, t float64) Vec2 {
	u := 1 - t
	uu := u * u
	tt := t * t
	a := uu * u
	b := 3 * uu * t
	c := 3 * u * tt
	d := tt * t
	return Vec2{
		X: a*p0.X + b*p1.X + c*p2.X + d*p3.X,
		Y: a*p0.Y + b*p1.Y + c*p2.Y + d*p3.Y,
	}
}

// distSqToSegment returns the squared distance from p to the segment a-b,
// projecting p onto the segment with the projection parameter clamped to
// [0, 1]. Squared distance avoids a square root per comparison.
func distSqToSegment(p, a, b Vec2) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	lenSq := dx*dx + dy*dy
	t := 0.0
	if lenSq > 0 {
		t = clamp(((p.X-a.X)*dx+(p.Y-a.Y)*dy)/lenSq, 0, 1)
	}
	cx := a.X + t*dx
	cy := a.Y + t*dy
	ex := p.X - cx
	ey := p.Y - cy
	return ex*ex + ey*ey
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
