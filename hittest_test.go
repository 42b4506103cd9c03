package mural

import (
	"fmt"
	"testing"
)

// square100 keeps port math simple: left port (x, y+50), right port (x+100, y+50).
var square100 = fixedSize(100, 100)

func nodesByID(nodes []*GraphNode) map[string]*GraphNode {
	m := make(map[string]*GraphNode, len(nodes))
	for _, n := range nodes {
		m[n.ID] = n
	}
	return m
}

func TestHitTestNode_Rect(t *testing.T) {
	cfg := DefaultHitConfig()
	nodes := []*GraphNode{{ID: "a", X: 0, Y: 0}}

	if hit := HitTestNode(cfg, Vec2{X: 50, Y: 50}, nodes, square100, 1.0); hit == nil || hit.ID != "a" {
		t.Errorf("inside rect: hit = %v, want a", hit)
	}
	if hit := HitTestNode(cfg, Vec2{X: 150, Y: 50}, nodes, square100, 1.0); hit != nil {
		t.Errorf("outside rect: hit = %v, want nil", hit)
	}
}

func TestHitTestNode_DefaultSizing(t *testing.T) {
	cfg := DefaultHitConfig()
	n1 := &GraphNode{ID: "n1", Type: NodeText, X: 100, Y: 100} // 280x160
	nodes := []*GraphNode{n1}

	if hit := HitTestNode(cfg, Vec2{X: 150, Y: 150}, nodes, DefaultSize, 1.0); hit != n1 {
		t.Errorf("hit = %v, want n1", hit)
	}
	if hit := HitTestNode(cfg, Vec2{X: 50, Y: 50}, nodes, DefaultSize, 1.0); hit != nil {
		t.Errorf("hit = %v, want nil", hit)
	}
}

func TestHitTestNode_TopmostWins(t *testing.T) {
	cfg := DefaultHitConfig()
	// Back-to-front order; both contain (50,50).
	nodes := []*GraphNode{
		{ID: "below", X: 0, Y: 0},
		{ID: "above", X: 25, Y: 25},
	}
	hit := HitTestNode(cfg, Vec2{X: 50, Y: 50}, nodes, square100, 1.0)
	if hit == nil || hit.ID != "above" {
		t.Errorf("hit = %v, want above (later in draw order)", hit)
	}
}

func TestHitTestNode_FarView(t *testing.T) {
	cfg := DefaultHitConfig()
	nodes := []*GraphNode{{ID: "a", X: 1000, Y: 1000}}
	zoom := 0.25 // below the far-view cutoff; pick radius is 8/0.25 = 32 world units

	if hit := HitTestNode(cfg, Vec2{X: 1030, Y: 1000}, nodes, square100, zoom); hit == nil {
		t.Error("point within far-view radius missed")
	}
	if hit := HitTestNode(cfg, Vec2{X: 1040, Y: 1000}, nodes, square100, zoom); hit != nil {
		t.Error("point outside far-view radius hit")
	}
	// The circle sits at the node origin, not its center: a point deep in
	// the rect but far from the origin misses in far view.
	if hit := HitTestNode(cfg, Vec2{X: 1080, Y: 1080}, nodes, square100, zoom); hit != nil {
		t.Error("rect-interior point hit in far view")
	}
}

func TestHitTestNode_FarViewCutoff(t *testing.T) {
	cfg := DefaultHitConfig()
	nodes := []*GraphNode{{ID: "a", X: 0, Y: 0}}
	p := Vec2{X: 80, Y: 80} // inside the rect, 113 world units from origin

	// At the cutoff zoom exactly, rect testing applies.
	if hit := HitTestNode(cfg, p, nodes, square100, cfg.FarViewZoom); hit == nil {
		t.Error("cutoff zoom should use rect containment")
	}
	if hit := HitTestNode(cfg, p, nodes, square100, cfg.FarViewZoom-0.01); hit != nil {
		t.Error("below cutoff should use the origin circle")
	}
}

// straightEdgeFixture builds two 100x100 nodes joined right-to-left so the
// bezier collapses onto the horizontal line y=50 between x=100 and x=300.
func straightEdgeFixture() ([]*GraphNode, []*GraphEdge) {
	nodes := []*GraphNode{
		{ID: "a", X: 0, Y: 0},
		{ID: "b", X: 300, Y: 0},
	}
	edges := []*GraphEdge{
		{ID: "e1", Source: "a", Target: "b", SourceSide: SideRight, TargetSide: SideLeft},
	}
	return nodes, edges
}

func TestHitTestEdge_WithinThreshold(t *testing.T) {
	cfg := DefaultHitConfig()
	nodes, edges := straightEdgeFixture()
	byID := nodesByID(nodes)

	if hit := HitTestEdge(cfg, Vec2{X: 200, Y: 53}, edges, byID, square100, 6); hit == nil {
		t.Error("point 3 units from the curve missed with threshold 6")
	}
	if hit := HitTestEdge(cfg, Vec2{X: 200, Y: 60}, edges, byID, square100, 6); hit != nil {
		t.Error("point 10 units from the curve hit with threshold 6")
	}
}

func TestHitTestEdge_MidpointThresholds(t *testing.T) {
	cfg := DefaultHitConfig()
	nodes, edges := straightEdgeFixture()
	byID := nodesByID(nodes)
	mid := Vec2{X: 200, Y: 50} // exactly on the line between the ports

	if hit := HitTestEdge(cfg, mid, edges, byID, square100, 5); hit == nil {
		t.Error("on-curve midpoint missed with threshold 5")
	}
	if hit := HitTestEdge(cfg, Vec2{X: 200, Y: 50.1}, edges, byID, square100, 0); hit != nil {
		t.Error("offset point hit with threshold 0")
	}
}

func TestHitTestEdge_ExactThresholdHits(t *testing.T) {
	cfg := DefaultHitConfig()
	nodes, edges := straightEdgeFixture()
	byID := nodesByID(nodes)

	if hit := HitTestEdge(cfg, Vec2{X: 200, Y: 56}, edges, byID, square100, 6); hit == nil {
		t.Error("distance exactly at the threshold should hit")
	}
}

func TestHitTestEdge_TieBreakLastWins(t *testing.T) {
	cfg := DefaultHitConfig()
	nodes, _ := straightEdgeFixture()
	byID := nodesByID(nodes)
	edges := []*GraphEdge{
		{ID: "first", Source: "a", Target: "b", SourceSide: SideRight, TargetSide: SideLeft},
		{ID: "second", Source: "a", Target: "b", SourceSide: SideRight, TargetSide: SideLeft},
	}

	hit := HitTestEdge(cfg, Vec2{X: 200, Y: 50}, edges, byID, square100, 6)
	if hit == nil || hit.ID != "second" {
		t.Errorf("hit = %v, want second (later in iteration order)", hit)
	}
}

func TestHitTestEdge_DanglingSkipped(t *testing.T) {
	cfg := DefaultHitConfig()
	nodes, _ := straightEdgeFixture()
	byID := nodesByID(nodes)
	edges := []*GraphEdge{
		{ID: "dangling", Source: "a", Target: "missing"},
	}
	if hit := HitTestEdge(cfg, Vec2{X: 200, Y: 50}, edges, byID, square100, 1000); hit != nil {
		t.Errorf("dangling edge produced a hit: %v", hit)
	}
}

func TestHitTestEdgeEndpoint(t *testing.T) {
	nodes, edges := straightEdgeFixture()
	byID := nodesByID(nodes)

	hit := HitTestEdgeEndpoint(Vec2{X: 302, Y: 52}, edges, byID, square100, 10)
	if hit == nil {
		t.Fatal("no endpoint hit near the target port")
	}
	if hit.End != EndTarget || hit.Side != SideLeft {
		t.Errorf("hit end=%v side=%v, want target/left", hit.End, hit.Side)
	}
	if !approxEqual(hit.Pos.X, 300, epsilon) || !approxEqual(hit.Pos.Y, 50, epsilon) {
		t.Errorf("hit pos = %v, want (300,50)", hit.Pos)
	}

	if hit := HitTestEdgeEndpoint(Vec2{X: 200, Y: 50}, edges, byID, square100, 10); hit != nil {
		t.Errorf("mid-curve point matched an endpoint: %+v", hit)
	}
}

func TestHitTestPort(t *testing.T) {
	n := &GraphNode{ID: "n", X: 0, Y: 0}
	size := Size{W: 100, H: 100}

	if side, ok := HitTestPort(Vec2{X: 3, Y: 52}, n, size, 10); !ok || side != SideLeft {
		t.Errorf("near left port: side=%v ok=%v", side, ok)
	}
	if side, ok := HitTestPort(Vec2{X: 98, Y: 47}, n, size, 10); !ok || side != SideRight {
		t.Errorf("near right port: side=%v ok=%v", side, ok)
	}
	if _, ok := HitTestPort(Vec2{X: 50, Y: 50}, n, size, 10); ok {
		t.Error("node center should not register as a port")
	}
}

func TestInferPortSide(t *testing.T) {
	n := &GraphNode{ID: "n", X: 100, Y: 0}
	size := Size{W: 100, H: 100}

	if side := InferPortSide(Vec2{X: 120, Y: 50}, n, size); side != SideLeft {
		t.Errorf("left half inferred %v", side)
	}
	if side := InferPortSide(Vec2{X: 180, Y: 50}, n, size); side != SideRight {
		t.Errorf("right half inferred %v", side)
	}
}

func BenchmarkHitTestEdge(b *testing.B) {
	cfg := DefaultHitConfig()
	var nodes []*GraphNode
	var edges []*GraphEdge
	for i := 0; i < 200; i++ {
		a := &GraphNode{ID: fmt.Sprintf("a%d", i), X: float64(i) * 50, Y: 0}
		c := &GraphNode{ID: fmt.Sprintf("b%d", i), X: float64(i)*50 + 400, Y: 300}
		nodes = append(nodes, a, c)
		edges = append(edges, &GraphEdge{
			ID:     fmt.Sprintf("e%d", i),
			Source: a.ID,
			Target: c.ID,
		})
	}
	byID := nodesByID(nodes)
	p := Vec2{X: 5000, Y: 150}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		HitTestEdge(cfg, p, edges, byID, square100, 6)
	}
}
