package mural

// HitConfig tunes the zoom-dependent hit-testing strategy. The defaults are
// a regression contract: they match the visual legibility constants the
// renderer assumes, so change them together with the renderer.
type HitConfig struct {
	// FarViewZoom is the zoom level below which nodes are hit-tested as
	// circles instead of exact rectangles.
	FarViewZoom float64
	// FarViewRadius is the pick radius for far-view circles, in screen
	// pixels; it is divided by the current zoom to get a world radius.
	FarViewRadius float64
	// CurveSegments is how many line segments an edge's bezier curve is
	// sampled into for proximity testing. Coarse on purpose: enough for
	// pointer precision, not for curve analytics.
	CurveSegments int
}

// DefaultHitConfig returns the standard strategy constants.
func DefaultHitConfig() HitConfig {
	return HitConfig{
		FarViewZoom:   0.55,
		FarViewRadius: 8,
		CurveSegments: 14,
	}
}

// EndpointHit describes the edge endpoint nearest to a query point.
type EndpointHit struct {
	Edge   *GraphEdge
	End    EdgeEnd
	Side   Side
	Pos    Vec2
	DistSq float64
}

// HitTestNode returns the topmost node containing the world-space point, or
// nil. Nodes are expected in back-to-front order: later entries win the
// tie-break when several overlap the point.
//
// Below cfg.FarViewZoom, nodes are treated as circles of FarViewRadius
// screen pixels (converted to world units) centered at their origin, keeping
// tiny far-zoom nodes clickable without pixel-perfect aim.
func HitTestNode(cfg HitConfig, p Vec2, nodes []*GraphNode, sizeFn SizeFunc, zoom float64) *GraphNode {
	var hit *GraphNode
	if zoom < cfg.FarViewZoom {
		r := cfg.FarViewRadius / zoom
		rSq := r * r
		for _, n := range nodes {
			dx := p.X - n.X
			dy := p.Y - n.Y
			if dx*dx+dy*dy <= rSq {
				hit = n
			}
		}
		return hit
	}
	for _, n := range nodes {
		s := NodeSize(n, sizeFn)
		if (Rect{X: n.X, Y: n.Y, Width: s.W, Height: s.H}).Contains(p.X, p.Y) {
			hit = n
		}
	}
	return hit
}

// edgeGeometry resolves an edge's port positions and bezier control points.
// ok is false when either endpoint is missing from nodesByID; such dangling
// edges are skipped, not errors.
func edgeGeometry(e *GraphEdge, nodesByID map[string]*GraphNode, sizeFn SizeFunc) (p0, p1, p2, p3 Vec2, ok bool) {
	src := nodesByID[e.Source]
	dst := nodesByID[e.Target]
	if src == nil || dst == nil {
		return p0, p1, p2, p3, false
	}
	p0 = PortPosition(src, e.sourceSide(), NodeSize(src, sizeFn))
	p3 = PortPosition(dst, e.targetSide(), NodeSize(dst, sizeFn))
	p1, p2 = BezierControlPoints(p0, p3, e.sourceSide(), e.targetSide())
	return p0, p1, p2, p3, true
}

// HitTestEdge returns the edge whose curve passes closest to the point,
// provided that distance is within threshold (same coordinate space as the
// point; divide a screen-pixel threshold by zoom before calling). Each
// curve is sampled into cfg.CurveSegments segments and the point is
// projected onto every segment, so the distance is to the piecewise-linear
// approximation, not the exact curve.
func HitTestEdge(cfg HitConfig, p Vec2, edges []*GraphEdge, nodesByID map[string]*GraphNode, sizeFn SizeFunc, threshold float64) *GraphEdge {
	segments := cfg.CurveSegments
	if segments < 1 {
		segments = 1
	}
	limitSq := threshold * threshold
	bestSq := limitSq
	var best *GraphEdge
	for _, e := range edges {
		p0, p1, p2, p3, ok := edgeGeometry(e, nodesByID, sizeFn)
		if !ok {
			continue
		}
		prev := p0
		for i := 1; i <= segments; i++ {
			t := float64(i) / float64(segments)
			cur := CubicBezierPoint(p0, p1, p2, p3, t)
			if d := distSqToSegment(p, prev, cur); d <= bestSq {
				bestSq = d
				best = e
			}
			prev = cur
		}
	}
	return best
}

// HitTestEdgeEndpoint returns the resolved edge endpoint (source or target
// port) nearest to the point and within threshold, or nil.
func HitTestEdgeEndpoint(p Vec2, edges []*GraphEdge, nodesByID map[string]*GraphNode, sizeFn SizeFunc, threshold float64) *EndpointHit {
	limitSq := threshold * threshold
	var best *EndpointHit
	for _, e := range edges {
		src := nodesByID[e.Source]
		dst := nodesByID[e.Target]
		if src == nil || dst == nil {
			continue
		}
		srcPos := PortPosition(src, e.sourceSide(), NodeSize(src, sizeFn))
		dstPos := PortPosition(dst, e.targetSide(), NodeSize(dst, sizeFn))

		for _, cand := range []EndpointHit{
			{Edge: e, End: EndSource, Side: e.sourceSide(), Pos: srcPos},
			{Edge: e, End: EndTarget, Side: e.targetSide(), Pos: dstPos},
		} {
			dx := p.X - cand.Pos.X
			dy := p.Y - cand.Pos.Y
			dSq := dx*dx + dy*dy
			if dSq > limitSq {
				continue
			}
			if best == nil || dSq < best.DistSq {
				c := cand
				c.DistSq = dSq
				best = &c
			}
		}
	}
	return best
}

// HitTestPort checks the node's two fixed port locations against a circular
// radius. ok is false when neither port contains the point.
func HitTestPort(p Vec2, n *GraphNode, size Size, portRadius float64) (side Side, ok bool) {
	rSq := portRadius * portRadius
	for _, s := range [2]Side{SideLeft, SideRight} {
		port := PortPosition(n, s, size)
		dx := p.X - port.X
		dy := p.Y - port.Y
		if dx*dx+dy*dy <= rSq {
			return s, true
		}
	}
	return "", false
}

// InferPortSide picks a port side when no exact port hit occurred: left when
// the point sits left of the node's horizontal midpoint, else right. Lets a
// user click near a node edge and still start a connection.
func InferPortSide(p Vec2, n *GraphNode, size Size) Side {
	if p.X < n.X+size.W/2 {
		return SideLeft
	}
	return SideRight
}
