package mural

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

type recordingWidget struct {
	nodeID   string
	disposed bool
}

func (w *recordingWidget) Refresh(*GraphNode)                {}
func (w *recordingWidget) Draw(*ebiten.Image, Rect, float64) {}
func (w *recordingWidget) Dispose()                          { w.disposed = true }

func TestWidgetLayer_MountAndDispose(t *testing.T) {
	g := NewGraph()
	a := g.AddNode(NodeText, 0, 0)
	b := g.AddNode(NodeImage, 500, 0)

	created := make(map[string]*recordingWidget)
	layer := widgetLayer{
		factory: func(n *GraphNode) Widget {
			w := &recordingWidget{nodeID: n.ID}
			created[n.ID] = w
			return w
		},
		mounted: make(map[string]Widget),
	}

	layer.sync(g, []string{a.ID, b.ID})
	if len(layer.mounted) != 2 {
		t.Fatalf("%d widgets mounted, want 2", len(layer.mounted))
	}

	// b leaves the visible set; its widget is disposed, a's survives.
	layer.sync(g, []string{a.ID})
	if len(layer.mounted) != 1 {
		t.Fatalf("%d widgets mounted after shrink, want 1", len(layer.mounted))
	}
	if !created[b.ID].disposed {
		t.Error("departed node's widget not disposed")
	}
	if created[a.ID].disposed {
		t.Error("still-visible node's widget was disposed")
	}

	// Re-entering mounts a fresh widget, not the disposed one.
	first := created[b.ID]
	layer.sync(g, []string{a.ID, b.ID})
	if layer.mounted[b.ID] == Widget(first) {
		t.Error("disposed widget was remounted instead of recreated")
	}
}

func TestWidgetLayer_StableAcrossFrames(t *testing.T) {
	g := NewGraph()
	a := g.AddNode(NodeText, 0, 0)

	creates := 0
	layer := widgetLayer{
		factory: func(n *GraphNode) Widget {
			creates++
			return &recordingWidget{nodeID: n.ID}
		},
		mounted: make(map[string]Widget),
	}

	for i := 0; i < 10; i++ {
		layer.sync(g, []string{a.ID})
	}
	if creates != 1 {
		t.Errorf("widget created %d times over 10 frames, want 1", creates)
	}
}

func TestWidgetLayer_RemovedNodeDisposed(t *testing.T) {
	g := NewGraph()
	a := g.AddNode(NodeText, 0, 0)

	var w *recordingWidget
	layer := widgetLayer{
		factory: func(n *GraphNode) Widget {
			w = &recordingWidget{nodeID: n.ID}
			return w
		},
		mounted: make(map[string]Widget),
	}
	layer.sync(g, []string{a.ID})

	// The node is gone from the graph but its id still comes back from a
	// stale visibility query.
	g.RemoveNode(a.ID)
	layer.sync(g, []string{a.ID})

	if len(layer.mounted) != 0 {
		t.Errorf("%d widgets mounted for removed node", len(layer.mounted))
	}
	if !w.disposed {
		t.Error("removed node's widget not disposed")
	}
}

func TestWidgetLayer_NilFactoryDisposesAll(t *testing.T) {
	g := NewGraph()
	a := g.AddNode(NodeText, 0, 0)

	var w *recordingWidget
	layer := widgetLayer{
		factory: func(n *GraphNode) Widget {
			w = &recordingWidget{nodeID: n.ID}
			return w
		},
		mounted: make(map[string]Widget),
	}
	layer.sync(g, []string{a.ID})

	layer.factory = nil
	layer.sync(g, []string{a.ID})

	if len(layer.mounted) != 0 {
		t.Error("widgets survived factory removal")
	}
	if !w.disposed {
		t.Error("widget not disposed when factory removed")
	}
}

func TestWidgetLayer_NilWidgetSkipped(t *testing.T) {
	g := NewGraph()
	a := g.AddNode(NodeText, 0, 0)

	layer := widgetLayer{
		factory: func(*GraphNode) Widget { return nil },
		mounted: make(map[string]Widget),
	}
	layer.sync(g, []string{a.ID})

	if len(layer.mounted) != 0 {
		t.Errorf("nil factory result was mounted: %v", layer.mounted)
	}
}
