// Package mural is an infinite-canvas node-editor engine for [Ebitengine].
//
// Mural provides the viewport math, grid-bucket spatial index, zoom-aware
// hit-testing, and two-layer rendering that an interactive graph canvas
// needs: typed nodes placed in world space, connected by cubic bezier
// edges, panned and zoomed with sub-frame picking on graphs of thousands
// of nodes.
//
// # Quick start
//
// Build a [Graph], wrap it in a [Canvas], and drive the canvas from your
// [ebiten.Game]:
//
//	graph := mural.NewGraph()
//	a := graph.AddNode(mural.NodeText, 100, 100)
//	b := graph.AddNode(mural.NodeImageConfig, 520, 140)
//	graph.AddEdge(a.ID, b.ID)
//
//	canvas := mural.NewCanvas(graph, 1280, 720)
//
//	type Game struct{ canvas *mural.Canvas }
//
//	func (g *Game) Update() error          { g.canvas.Update(); return nil }
//	func (g *Game) Draw(s *ebiten.Image)   { g.canvas.Draw(s) }
//	func (g *Game) Layout(w, h int) (int, int) { return w, h }
//
// # Coordinate spaces
//
// World space is the canvas's logical plane; screen space is device pixels.
// The two are related by a single [Viewport] per canvas: pan offset plus a
// zoom factor clamped to [0.1, 2.0]. [Viewport.ScreenToWorld] and
// [Viewport.WorldToScreen] are exact inverses.
//
// # Picking and visibility
//
// Nodes are kept in a [SpatialIndex] (grid buckets, 400 world units per
// cell) so visibility queries and hit-test candidate sets cost what the
// local density costs, not what the whole graph costs. Hit-testing switches
// strategy with zoom: below the far-view threshold nodes are picked as
// fixed-radius circles so tiny far-zoom nodes stay clickable; above it
// exact rectangle containment is used. Edges are picked by sampling their
// bezier curve into segments and measuring true point-to-segment distance.
//
// # Rendering split
//
// The canvas redraws the grid, every resolvable edge, and selection chrome
// immediately each frame, and mounts one persistent [Widget] per node in
// the margin-expanded visible set (see [Canvas.SetWidgetFactory]), so rich
// node content survives across frames instead of being rebuilt.
//
// The [Graph] store, upstream-input collection, and snapshot persistence
// (debounced saves, lz4-compressed exports) round out the engine for
// editor hosts.
//
// [Ebitengine]: https://ebitengine.org
package mural
