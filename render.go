package mural

import (
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Immediate-layer constants. The grid spacing is in world units; everything
// else is screen pixels.
const (
	gridSpacing      = 100.0
	gridMajorEvery   = 5
	gridMinVisiblePx = 12.0

	edgeRenderSegments = 24
	edgeWidth          = 2.0
	edgeSelectedWidth  = 3.5
	portDrawRadius     = 4.0
	farViewDrawRadius  = 5.0
)

var (
	colorBackground   = color.RGBA{R: 0x16, G: 0x18, B: 0x1d, A: 0xff}
	colorGridMinor    = color.RGBA{R: 0x22, G: 0x25, B: 0x2c, A: 0xff}
	colorGridMajor    = color.RGBA{R: 0x2c, G: 0x30, B: 0x39, A: 0xff}
	colorEdge         = color.RGBA{R: 0x5a, G: 0x63, B: 0x74, A: 0xff}
	colorEdgeSelected = color.RGBA{R: 0x7a, G: 0xa2, B: 0xf7, A: 0xff}
	colorEdgePreview  = color.RGBA{R: 0x7a, G: 0xa2, B: 0xf7, A: 0xaa}
	colorNodeFill     = color.RGBA{R: 0x1f, G: 0x23, B: 0x2b, A: 0xff}
	colorNodeBorder   = color.RGBA{R: 0x3a, G: 0x40, B: 0x4d, A: 0xff}
	colorNodeSelected = color.RGBA{R: 0x7a, G: 0xa2, B: 0xf7, A: 0xff}
	colorPort         = color.RGBA{R: 0x9a, G: 0xa4, B: 0xb8, A: 0xff}
	colorMinimapBg    = color.RGBA{R: 0x0e, G: 0x10, B: 0x14, A: 0xdd}
	colorMinimapNode  = color.RGBA{R: 0x6a, G: 0x74, B: 0x88, A: 0xff}
	colorMinimapView  = color.RGBA{R: 0x7a, G: 0xa2, B: 0xf7, A: 0xff}
)

// Draw renders one frame: the immediate layer (grid, every resolvable edge,
// node chrome, selection, minimap) plus the retained widget layer for the
// visible node set. Reads current viewport and graph state; never mutates
// either.
func (c *Canvas) Draw(screen *ebiten.Image) {
	var t0 time.Time
	if c.debug {
		t0 = time.Now()
	}

	screen.Fill(colorBackground)
	c.drawGrid(screen)
	c.drawEdges(screen)

	visible := c.Visible()
	c.drawNodes(screen, visible)

	c.widgets.sync(c.graph, visible)
	c.widgets.draw(screen, c.graph, c.sizeFn, c.viewport)

	if c.minimap != nil {
		c.drawMinimap(screen)
	}

	if c.debug {
		c.stats.visibleNodes = len(visible)
		c.stats.edges = len(c.graph.Edges())
		c.stats.mountedWidgets = len(c.widgets.mounted)
		c.stats.drawTime = time.Since(t0)
		c.logStats()
		c.drawStatsOverlay(screen)
	}
}

// drawGrid strokes vertical and horizontal grid lines over the visible
// world rect. Minor lines fade out once their screen spacing drops below
// legibility; major lines (every 5th) persist further out.
func (c *Canvas) drawGrid(screen *ebiten.Image) {
	v := c.viewport
	world := v.VisibleWorldRect(c.screen)

	minorPx := gridSpacing * v.Zoom
	drawMinor := minorPx >= gridMinVisiblePx
	if !drawMinor && minorPx*gridMajorEvery < gridMinVisiblePx {
		return
	}

	startX := int(floorDiv(world.X, gridSpacing))
	endX := int(floorDiv(world.X+world.Width, gridSpacing)) + 1
	for i := startX; i <= endX; i++ {
		major := i%gridMajorEvery == 0
		if !drawMinor && !major {
			continue
		}
		clr := colorGridMinor
		if major {
			clr = colorGridMajor
		}
		sx := float32(v.WorldToScreen(Vec2{X: float64(i) * gridSpacing}).X)
		vector.StrokeLine(screen, sx, 0, sx, float32(c.screen.H), 1, clr, false)
	}

	startY := int(floorDiv(world.Y, gridSpacing))
	endY := int(floorDiv(world.Y+world.Height, gridSpacing)) + 1
	for i := startY; i <= endY; i++ {
		major := i%gridMajorEvery == 0
		if !drawMinor && !major {
			continue
		}
		clr := colorGridMinor
		if major {
			clr = colorGridMajor
		}
		sy := float32(v.WorldToScreen(Vec2{Y: float64(i) * gridSpacing}).Y)
		vector.StrokeLine(screen, 0, sy, float32(c.screen.W), sy, 1, clr, false)
	}
}

func floorDiv(a, b float64) float64 {
	q := a / b
	f := float64(int(q))
	if q < 0 && q != f {
		f--
	}
	return f
}

// drawEdges strokes the full edge set every frame. Edges are cheap enough
// here to skip spatial indexing; only nodes are indexed.
func (c *Canvas) drawEdges(screen *ebiten.Image) {
	byID := c.graph.NodesByID()
	for _, e := range c.graph.Edges() {
		p0, p1, p2, p3, ok := edgeGeometry(e, byID, c.sizeFn)
		if !ok {
			continue
		}
		width := float32(edgeWidth)
		clr := colorEdge
		if e.ID == c.selectedEdge {
			width = float32(edgeSelectedWidth)
			clr = colorEdgeSelected
		}
		c.strokeBezier(screen, p0, p1, p2, p3, width, clr, e.Kind == EdgeReference)
	}

	if c.gesture.kind == gestureDrawEdge {
		c.drawEdgePreview(screen)
	}
}

// strokeBezier flattens the curve into edgeRenderSegments screen-space line
// segments. dashed skips alternate segments for reference edges.
func (c *Canvas) strokeBezier(screen *ebiten.Image, p0, p1, p2, p3 Vec2, width float32, clr color.Color, dashed bool) {
	prev := c.viewport.WorldToScreen(p0)
	for i := 1; i <= edgeRenderSegments; i++ {
		t := float64(i) / edgeRenderSegments
		cur := c.viewport.WorldToScreen(CubicBezierPoint(p0, p1, p2, p3, t))
		if !dashed || i%2 == 1 {
			vector.StrokeLine(screen,
				float32(prev.X), float32(prev.Y),
				float32(cur.X), float32(cur.Y),
				width, clr, true)
		}
		prev = cur
	}
}

// drawEdgePreview strokes the in-flight edge from the grabbed port to the
// pointer while an edge-draw gesture is active.
func (c *Canvas) drawEdgePreview(screen *ebiten.Image) {
	from := c.graph.Node(c.gesture.fromNode)
	if from == nil {
		return
	}
	p0 := PortPosition(from, c.gesture.fromSide, NodeSize(from, c.sizeFn))
	p3 := c.gesture.preview
	toSide := SideLeft
	if p3.X < p0.X {
		toSide = SideRight
	}
	p1, p2 := BezierControlPoints(p0, p3, c.gesture.fromSide, toSide)
	c.strokeBezier(screen, p0, p1, p2, p3, edgeWidth, colorEdgePreview, false)
}

// drawNodes renders placeholder chrome for every visible node: a rect with
// border and ports in the near view, a dot in the far view. Hosts with a
// widget factory draw rich content on top via the retained layer.
func (c *Canvas) drawNodes(screen *ebiten.Image, visible []string) {
	v := c.viewport
	farView := v.Zoom < c.hit.FarViewZoom

	for _, id := range visible {
		n := c.graph.Node(id)
		if n == nil {
			continue
		}
		if farView {
			p := v.WorldToScreen(Vec2{X: n.X, Y: n.Y})
			clr := colorNodeBorder
			if n.ID == c.selectedNode {
				clr = colorNodeSelected
			}
			vector.DrawFilledCircle(screen, float32(p.X), float32(p.Y), farViewDrawRadius, clr, true)
			continue
		}

		s := NodeSize(n, c.sizeFn)
		tl := v.WorldToScreen(Vec2{X: n.X, Y: n.Y})
		w := float32(s.W * v.Zoom)
		h := float32(s.H * v.Zoom)
		vector.DrawFilledRect(screen, float32(tl.X), float32(tl.Y), w, h, colorNodeFill, false)
		border := colorNodeBorder
		bw := float32(1)
		if n.ID == c.selectedNode {
			border = colorNodeSelected
			bw = 2
		}
		vector.StrokeRect(screen, float32(tl.X), float32(tl.Y), w, h, bw, border, false)

		for _, side := range [2]Side{SideLeft, SideRight} {
			port := v.WorldToScreen(PortPosition(n, side, s))
			vector.DrawFilledCircle(screen, float32(port.X), float32(port.Y), portDrawRadius, colorPort, true)
		}
	}
}

// drawMinimap paints the minimap surface: content dots plus the main
// viewport indicator.
func (c *Canvas) drawMinimap(screen *ebiten.Image) {
	bounds, ok := c.graph.Bounds()
	if !ok {
		return
	}
	m := c.minimap
	vector.DrawFilledRect(screen,
		float32(m.Bounds.X), float32(m.Bounds.Y),
		float32(m.Bounds.Width), float32(m.Bounds.Height),
		colorMinimapBg, false)

	for _, n := range c.graph.Nodes() {
		p := m.WorldToMini(Vec2{X: n.X, Y: n.Y}, bounds)
		vector.DrawFilledRect(screen, float32(p.X)-1, float32(p.Y)-1, 3, 3, colorMinimapNode, false)
	}

	view := m.ViewportRect(c.viewport, c.screen, bounds)
	vector.StrokeRect(screen,
		float32(view.X), float32(view.Y),
		float32(view.Width), float32(view.Height),
		1, colorMinimapView, false)
}
