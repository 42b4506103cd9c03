package mural

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tanema/gween/ease"
)

// Interaction thresholds in screen pixels. Fixed regardless of zoom; the
// engine converts them to world units at the point of use.
const (
	defaultPortRadius    = 10.0
	defaultEdgeThreshold = 6.0
	defaultVisibleMargin = 200.0
	defaultDragDeadZone  = 4.0

	// wheelZoomBase is the per-wheel-notch zoom factor.
	wheelZoomBase = 1.1
)

type gestureKind uint8

const (
	gestureNone gestureKind = iota
	gesturePan
	gestureDragNode
	gestureDrawEdge
	gestureMinimap
)

// gestureState tracks one in-flight pointer gesture. A gesture can be
// aborted by releasing outside a valid target; nothing here is async.
type gestureState struct {
	kind        gestureKind
	startScreen Vec2
	lastScreen  Vec2
	dragging    bool // movement exceeded the dead zone

	// gestureDragNode
	nodeID     string
	grabOffset Vec2 // world offset from pointer to node origin

	// gestureDrawEdge
	fromNode  string
	fromSide  Side
	reconnect string // edge id being rewired, empty for a fresh connection
	freeEnd   EdgeEnd
	preview   Vec2 // world position of the loose end
}

// syntheticPointerEvent is a single injected pointer event in screen
// coordinates, converted to world space exactly like real mouse input.
type syntheticPointerEvent struct {
	screenX, screenY float64
	pressed          bool
}

// Canvas is the interactive graph canvas engine: one viewport, one spatial
// index, and the pointer/wheel handling that turns device input into
// higher-level intents. Single-threaded and cooperative; everything runs on
// the game loop via Update and Draw.
//
// The node/edge collection stays owned by the Graph. The canvas reads it as
// input each frame and mutates it only through the store's API.
type Canvas struct {
	graph  *Graph
	sizeFn SizeFunc

	viewport Viewport
	index    *SpatialIndex
	hit      HitConfig
	screen   Size

	// PortRadius, EdgeThreshold, and VisibleMargin are screen-pixel
	// constants; see the package constants for defaults.
	PortRadius    float64
	EdgeThreshold float64
	VisibleMargin float64

	minimap *Minimap
	widgets widgetLayer
	anim    *viewAnim

	selectedNode string
	selectedEdge string

	gesture       gestureState
	prevMouseDown bool
	injectQueue   []syntheticPointerEvent
	injectDown    bool

	// Intent callbacks. All optional; fired synchronously from Update.
	OnSelectNode     func(n *GraphNode)
	OnSelectEdge     func(e *GraphEdge)
	OnClearSelection func()
	OnNodeMoved      func(n *GraphNode)
	OnConnect        func(e *GraphEdge)
	OnBeginPortDrag  func(nodeID string, side Side)

	debug bool
	stats frameStats
}

// NewCanvas creates a canvas over the given graph sized to a screen of
// screenW x screenH pixels. The index is built immediately from the graph's
// current contents.
func NewCanvas(graph *Graph, screenW, screenH int) *Canvas {
	c := &Canvas{
		graph:         graph,
		sizeFn:        DefaultSize,
		viewport:      NewViewport(),
		index:         NewSpatialIndex(),
		hit:           DefaultHitConfig(),
		screen:        Size{W: float64(screenW), H: float64(screenH)},
		PortRadius:    defaultPortRadius,
		EdgeThreshold: defaultEdgeThreshold,
		VisibleMargin: defaultVisibleMargin,
	}
	c.widgets.mounted = make(map[string]Widget)
	c.index.Rebuild(graph.Nodes(), c.sizeFn)
	return c
}

// SetSizeFn replaces the node sizing lookup and rebuilds the index, since
// every indexed bounding box depends on it.
func (c *Canvas) SetSizeFn(fn SizeFunc) {
	c.sizeFn = fn
	c.index.Rebuild(c.graph.Nodes(), fn)
}

// SetScreenSize informs the canvas of the host window size.
func (c *Canvas) SetScreenSize(w, h int) {
	c.screen = Size{W: float64(w), H: float64(h)}
}

// SetMinimap attaches (or with nil detaches) a minimap surface. Pointer
// events inside its bounds recenter the main viewport instead of hitting
// the graph.
func (c *Canvas) SetMinimap(m *Minimap) {
	c.minimap = m
}

// SetWidgetFactory installs the retained-layer factory. Each node in the
// margin-expanded visible set gets one persistent widget; nodes leaving the
// set have their widgets disposed.
func (c *Canvas) SetWidgetFactory(f WidgetFactory) {
	c.widgets.factory = f
}

// SetDebug toggles per-frame stats logging and the on-screen overlay.
func (c *Canvas) SetDebug(enabled bool) {
	c.debug = enabled
}

// Viewport returns the current pan/zoom state.
func (c *Canvas) Viewport() Viewport {
	return c.viewport
}

// SetViewport replaces the pan/zoom state, clamping zoom.
func (c *Canvas) SetViewport(v Viewport) {
	c.viewport = v.Clamped()
}

// HitConfig returns the hit-testing strategy constants.
func (c *Canvas) HitConfig() HitConfig {
	return c.hit
}

// SetHitConfig replaces the hit-testing strategy constants.
func (c *Canvas) SetHitConfig(cfg HitConfig) {
	c.hit = cfg
}

// Index exposes the spatial index for hosts that run their own queries.
func (c *Canvas) Index() *SpatialIndex {
	return c.index
}

// SelectedNode returns the selected node id, or "".
func (c *Canvas) SelectedNode() string {
	return c.selectedNode
}

// SelectedEdge returns the selected edge id, or "".
func (c *Canvas) SelectedEdge() string {
	return c.selectedEdge
}

// Visible returns the ids of nodes inside the margin-expanded visible
// region, straight from the spatial index.
func (c *Canvas) Visible() []string {
	return c.index.QueryViewport(c.viewport, c.screen, c.VisibleMargin)
}

// ReindexNode refreshes one node's index entry after an external move or
// resize.
func (c *Canvas) ReindexNode(id string) {
	n := c.graph.Node(id)
	if n == nil {
		c.index.Remove(id)
		return
	}
	c.index.Insert(n, NodeSize(n, c.sizeFn))
}

// Rebuild re-indexes the whole graph. Call after bulk mutation: paste, undo
// jump, project load.
func (c *Canvas) Rebuild() {
	c.index.Rebuild(c.graph.Nodes(), c.sizeFn)
}

// ZoomAt applies a cursor-anchored zoom step at the given screen point.
func (c *Canvas) ZoomAt(factor float64, screenPoint Vec2) {
	c.viewport = c.viewport.ZoomAtScreenPoint(factor, screenPoint)
}

// ScrollTo animates the viewport so the given world point ends centered,
// over duration seconds. Any pointer gesture cancels the animation.
func (c *Canvas) ScrollTo(worldX, worldY float64, duration float32, easeFn ease.TweenFunc) {
	target := Viewport{
		X:    c.screen.W/2 - worldX*c.viewport.Zoom,
		Y:    c.screen.H/2 - worldY*c.viewport.Zoom,
		Zoom: c.viewport.Zoom,
	}
	c.anim = newViewAnim(c.viewport, target, duration, easeFn)
}

// FitToContent snaps the viewport to fit all nodes with the default margin.
// No-op on an empty graph.
func (c *Canvas) FitToContent() {
	bounds, ok := c.graph.Bounds()
	if !ok {
		return
	}
	c.viewport = FitToContent(bounds, c.screen, DefaultFitMargin)
}

// FitToContentAnimated tweens the viewport to the fit-to-content framing.
func (c *Canvas) FitToContentAnimated(duration float32, easeFn ease.TweenFunc) {
	bounds, ok := c.graph.Bounds()
	if !ok {
		return
	}
	c.anim = newViewAnim(c.viewport, FitToContent(bounds, c.screen, DefaultFitMargin), duration, easeFn)
}

// Update advances viewport animations and processes one frame of pointer
// and wheel input. Injected events take precedence over hardware input.
func (c *Canvas) Update() {
	tps := ebiten.TPS()
	if tps <= 0 {
		tps = ebiten.DefaultTPS
	}
	dt := float32(1.0 / float64(tps))

	if c.anim != nil && c.gesture.kind == gestureNone {
		next, finished := c.anim.update(c.viewport, dt)
		c.viewport = next
		if finished {
			c.anim = nil
		}
	}

	if c.processInjectedInput() {
		return
	}
	c.pollMouse()
}

// --- Synthetic input (one event consumed per frame) ---

// InjectPress queues a pointer press at the given screen coordinates.
func (c *Canvas) InjectPress(x, y float64) {
	c.injectQueue = append(c.injectQueue, syntheticPointerEvent{screenX: x, screenY: y, pressed: true})
}

// InjectMove queues a pointer move with the button held down. Use between
// InjectPress and InjectRelease to simulate a drag.
func (c *Canvas) InjectMove(x, y float64) {
	c.injectQueue = append(c.injectQueue, syntheticPointerEvent{screenX: x, screenY: y, pressed: true})
}

// InjectRelease queues a pointer release at the given screen coordinates.
func (c *Canvas) InjectRelease(x, y float64) {
	c.injectQueue = append(c.injectQueue, syntheticPointerEvent{screenX: x, screenY: y, pressed: false})
}

// InjectClick queues a press followed by a release at the same screen
// coordinates. Consumes two frames.
func (c *Canvas) InjectClick(x, y float64) {
	c.InjectPress(x, y)
	c.InjectRelease(x, y)
}

// InjectDrag queues a full drag sequence: press at (fromX, fromY), linearly
// interpolated moves, release at (toX, toY). Consumes frames frames
// (minimum 2: press + release).
func (c *Canvas) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	c.InjectPress(fromX, fromY)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		c.InjectMove(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
	c.InjectRelease(toX, toY)
}

func (c *Canvas) processInjectedInput() bool {
	if len(c.injectQueue) == 0 {
		return false
	}
	evt := c.injectQueue[0]
	copy(c.injectQueue, c.injectQueue[1:])
	c.injectQueue = c.injectQueue[:len(c.injectQueue)-1]

	p := Vec2{X: evt.screenX, Y: evt.screenY}
	switch {
	case evt.pressed && !c.injectDown:
		c.pointerDown(p)
	case evt.pressed && c.injectDown:
		c.pointerMove(p)
	case !evt.pressed && c.injectDown:
		c.pointerUp(p)
	}
	c.injectDown = evt.pressed
	return true
}

func (c *Canvas) pollMouse() {
	x, y := ebiten.CursorPosition()
	p := Vec2{X: float64(x), Y: float64(y)}

	if _, wy := ebiten.Wheel(); wy != 0 {
		c.ZoomAt(math.Pow(wheelZoomBase, wy), p)
	}

	down := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	switch {
	case down && !c.prevMouseDown:
		c.pointerDown(p)
	case down && c.prevMouseDown:
		c.pointerMove(p)
	case !down && c.prevMouseDown:
		c.pointerUp(p)
	}
	c.prevMouseDown = down
}

// --- Gesture handling ---

// candidateNodes returns the nodes near a world point in back-to-front
// order, pre-filtered through the spatial index so hit-test cost tracks
// local density, not graph size. reach is in world units.
func (c *Canvas) candidateNodes(world Vec2, reach float64) []*GraphNode {
	ids := c.index.QueryRect(Rect{
		X:      world.X - reach,
		Y:      world.Y - reach,
		Width:  2 * reach,
		Height: 2 * reach,
	})
	if len(ids) == 0 {
		return nil
	}
	member := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		member[id] = struct{}{}
	}
	// graph.Nodes() is already sorted back-to-front.
	out := make([]*GraphNode, 0, len(ids))
	for _, n := range c.graph.Nodes() {
		if _, ok := member[n.ID]; ok {
			out = append(out, n)
		}
	}
	return out
}

func (c *Canvas) pointerDown(p Vec2) {
	c.anim = nil
	c.gesture = gestureState{startScreen: p, lastScreen: p}

	if c.minimap != nil && c.minimap.Bounds.Contains(p.X, p.Y) {
		c.gesture.kind = gestureMinimap
		c.recenterFromMinimap(p)
		return
	}

	zoom := c.viewport.Zoom
	world := c.viewport.ScreenToWorld(p)
	portReach := c.PortRadius / zoom
	// Far view picks by circle radius, which can exceed the port reach.
	candidates := c.candidateNodes(world, max(portReach, c.hit.FarViewRadius/zoom))

	if zoom >= c.hit.FarViewZoom {
		// An endpoint of the selected edge wins over the port underneath
		// it: dragging it rewires the edge. Endpoints of unselected edges
		// sit on the same ports, so without this ordering they could never
		// be grabbed.
		if sel := c.graph.Edge(c.selectedEdge); sel != nil {
			one := []*GraphEdge{sel}
			if hit := HitTestEdgeEndpoint(world, one, c.graph.NodesByID(), c.sizeFn, portReach); hit != nil {
				if hit.End == EndTarget {
					c.beginEdgeDraw(sel.Source, sel.sourceSide(), sel.ID, EndTarget, world)
				} else {
					c.beginEdgeDraw(sel.Target, sel.targetSide(), sel.ID, EndSource, world)
				}
				return
			}
		}

		// Ports beat node bodies; check topmost nodes first.
		for i := len(candidates) - 1; i >= 0; i-- {
			n := candidates[i]
			side, ok := HitTestPort(world, n, NodeSize(n, c.sizeFn), portReach)
			if !ok {
				continue
			}
			c.beginEdgeDraw(n.ID, side, "", 0, world)
			return
		}
	}

	if n := HitTestNode(c.hit, world, candidates, c.sizeFn, zoom); n != nil {
		c.gesture.kind = gestureDragNode
		c.gesture.nodeID = n.ID
		c.gesture.grabOffset = Vec2{X: world.X - n.X, Y: world.Y - n.Y}
		c.selectNode(n)
		return
	}

	threshold := c.EdgeThreshold / zoom
	if e := HitTestEdge(c.hit, world, c.graph.Edges(), c.graph.NodesByID(), c.sizeFn, threshold); e != nil {
		c.gesture.kind = gestureNone
		c.selectEdge(e)
		return
	}

	c.clearSelection()
	c.gesture.kind = gesturePan
}

func (c *Canvas) beginEdgeDraw(fromNode string, fromSide Side, reconnect string, freeEnd EdgeEnd, world Vec2) {
	c.gesture.kind = gestureDrawEdge
	c.gesture.fromNode = fromNode
	c.gesture.fromSide = fromSide
	c.gesture.reconnect = reconnect
	c.gesture.freeEnd = freeEnd
	c.gesture.preview = world
	if c.OnBeginPortDrag != nil {
		c.OnBeginPortDrag(fromNode, fromSide)
	}
}

func (c *Canvas) pointerMove(p Vec2) {
	dx := p.X - c.gesture.lastScreen.X
	dy := p.Y - c.gesture.lastScreen.Y

	switch c.gesture.kind {
	case gesturePan:
		c.viewport.X += dx
		c.viewport.Y += dy

	case gestureMinimap:
		c.recenterFromMinimap(p)

	case gestureDragNode:
		if !c.gesture.dragging {
			sx := p.X - c.gesture.startScreen.X
			sy := p.Y - c.gesture.startScreen.Y
			if sx*sx+sy*sy < defaultDragDeadZone*defaultDragDeadZone {
				break
			}
			c.gesture.dragging = true
		}
		world := c.viewport.ScreenToWorld(p)
		n := c.graph.Node(c.gesture.nodeID)
		if n == nil {
			// Node removed out from under the gesture; abandon it.
			c.gesture.kind = gestureNone
			break
		}
		c.graph.MoveNode(n.ID, world.X-c.gesture.grabOffset.X, world.Y-c.gesture.grabOffset.Y)
		// Index maintenance is synchronous: the next hit-test or
		// visibility query must already see the new cells.
		c.index.Insert(n, NodeSize(n, c.sizeFn))
		if c.OnNodeMoved != nil {
			c.OnNodeMoved(n)
		}

	case gestureDrawEdge:
		c.gesture.preview = c.viewport.ScreenToWorld(p)
	}

	c.gesture.lastScreen = p
}

func (c *Canvas) pointerUp(p Vec2) {
	if c.gesture.kind == gestureDrawEdge {
		c.finishEdgeDraw(p)
	}
	c.gesture = gestureState{}
}

// finishEdgeDraw completes or cancels an edge-draw gesture. Releasing over a
// valid node connects (or rewires); releasing anywhere else cancels, which
// for a rewire deletes the grabbed edge.
func (c *Canvas) finishEdgeDraw(p Vec2) {
	world := c.viewport.ScreenToWorld(p)
	zoom := c.viewport.Zoom
	candidates := c.candidateNodes(world, max(c.PortRadius, c.hit.FarViewRadius)/zoom)
	target := HitTestNode(c.hit, world, candidates, c.sizeFn, zoom)

	if target == nil || target.ID == c.gesture.fromNode {
		if c.gesture.reconnect != "" {
			c.graph.RemoveEdge(c.gesture.reconnect)
		}
		return
	}

	size := NodeSize(target, c.sizeFn)
	side, ok := HitTestPort(world, target, size, c.PortRadius/zoom)
	if !ok {
		side = InferPortSide(world, target, size)
	}

	var e *GraphEdge
	if c.gesture.reconnect != "" {
		e = c.graph.Edge(c.gesture.reconnect)
		if e == nil {
			return
		}
		if c.gesture.freeEnd == EndTarget {
			e.Target = target.ID
			e.TargetSide = side
		} else {
			e.Source = target.ID
			e.SourceSide = side
		}
	} else if c.gesture.fromSide == SideRight {
		// Dragging out of a right port creates an outgoing edge.
		e = c.graph.AddEdge(c.gesture.fromNode, target.ID)
		e.SourceSide = SideRight
		e.TargetSide = side
	} else {
		// Dragging out of a left port wires an incoming edge.
		e = c.graph.AddEdge(target.ID, c.gesture.fromNode)
		e.SourceSide = side
		e.TargetSide = SideLeft
	}
	if c.OnConnect != nil {
		c.OnConnect(e)
	}
}

func (c *Canvas) recenterFromMinimap(p Vec2) {
	bounds, ok := c.graph.Bounds()
	if !ok {
		return
	}
	c.viewport = c.minimap.Recenter(c.viewport, c.screen, bounds, p)
}

// --- Selection ---

func (c *Canvas) selectNode(n *GraphNode) {
	c.selectedNode = n.ID
	c.selectedEdge = ""
	if c.OnSelectNode != nil {
		c.OnSelectNode(n)
	}
}

func (c *Canvas) selectEdge(e *GraphEdge) {
	c.selectedEdge = e.ID
	c.selectedNode = ""
	if c.OnSelectEdge != nil {
		c.OnSelectEdge(e)
	}
}

func (c *Canvas) clearSelection() {
	had := c.selectedNode != "" || c.selectedEdge != ""
	c.selectedNode = ""
	c.selectedEdge = ""
	if had && c.OnClearSelection != nil {
		c.OnClearSelection()
	}
}
