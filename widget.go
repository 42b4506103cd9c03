package mural

import "github.com/hajimehoshi/ebiten/v2"

// Widget is one retained interactive element for a node: created when the
// node enters the margin-expanded visible set, repositioned every frame via
// the shared viewport math, and disposed when the node leaves the set or is
// removed. Hosts put their forms, media players, and buttons here so the
// content survives across frames instead of being rebuilt.
type Widget interface {
	// Refresh is called once per frame with the node's current state
	// before Draw.
	Refresh(n *GraphNode)
	// Draw renders the widget into frame, the node's current screen-space
	// rectangle.
	Draw(dst *ebiten.Image, frame Rect, zoom float64)
	// Dispose releases the widget's resources when it is unmounted.
	Dispose()
}

// WidgetFactory creates the widget for a node entering the visible set.
// Returning nil leaves the node with placeholder chrome only.
type WidgetFactory func(n *GraphNode) Widget

// widgetLayer owns the mounted widget set and keeps it matched to the
// visible node ids each frame.
type widgetLayer struct {
	factory WidgetFactory
	mounted map[string]Widget
}

// sync mounts widgets for newly visible nodes and disposes widgets whose
// nodes left the visible set or the graph.
func (l *widgetLayer) sync(graph *Graph, visible []string) {
	if l.factory == nil {
		if len(l.mounted) > 0 {
			for id, w := range l.mounted {
				w.Dispose()
				delete(l.mounted, id)
			}
		}
		return
	}

	keep := make(map[string]struct{}, len(visible))
	for _, id := range visible {
		n := graph.Node(id)
		if n == nil {
			continue
		}
		keep[id] = struct{}{}
		if _, ok := l.mounted[id]; ok {
			continue
		}
		if w := l.factory(n); w != nil {
			l.mounted[id] = w
		}
	}

	for id, w := range l.mounted {
		if _, ok := keep[id]; !ok {
			w.Dispose()
			delete(l.mounted, id)
		}
	}
}

// draw repositions and renders every mounted widget using the same
// world-to-screen math as the immediate layer.
func (l *widgetLayer) draw(dst *ebiten.Image, graph *Graph, sizeFn SizeFunc, v Viewport) {
	for id, w := range l.mounted {
		n := graph.Node(id)
		if n == nil {
			continue
		}
		s := NodeSize(n, sizeFn)
		tl := v.WorldToScreen(Vec2{X: n.X, Y: n.Y})
		frame := Rect{X: tl.X, Y: tl.Y, Width: s.W * v.Zoom, Height: s.H * v.Zoom}
		w.Refresh(n)
		w.Draw(dst, frame, v.Zoom)
	}
}
