package mural

import "math"

// DefaultCellSize is the grid cell edge length in world units. A tuning
// constant, not derived from data: node density in one region must never
// change the cost of querying an unrelated region.
const DefaultCellSize = 400.0

type cellKey struct {
	cx, cy int
}

// SpatialIndex maps node ids to the grid cells their bounding boxes overlap,
// answering "which nodes intersect this rectangle" in time bounded by the
// density of the queried region rather than total node count.
//
// The reverse map (id to occupied cells) is authoritative for removal: a
// node is never deleted from a forward cell without consulting its reverse
// entry, and never recorded in the reverse map without matching forward
// entries.
type SpatialIndex struct {
	cellSize  float64
	cells     map[cellKey]map[string]struct{}
	nodeCells map[string][]cellKey
}

// NewSpatialIndex creates an index with the default cell size.
func NewSpatialIndex() *SpatialIndex {
	return NewSpatialIndexWithCellSize(DefaultCellSize)
}

// NewSpatialIndexWithCellSize creates an index with a custom cell size.
// Sizes at or below zero fall back to the default.
func NewSpatialIndexWithCellSize(cellSize float64) *SpatialIndex {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	return &SpatialIndex{
		cellSize:  cellSize,
		cells:     make(map[cellKey]map[string]struct{}),
		nodeCells: make(map[string][]cellKey),
	}
}

// cellRange returns the inclusive cell coordinate range covered by a world
// rectangle. A zero-or-negative extent still covers the single cell
// containing the origin.
func (si *SpatialIndex) cellRange(x, y, w, h float64) (cx0, cy0, cx1, cy1 int) {
	x1 := x + max(w, 0)
	y1 := y + max(h, 0)
	cx0 = int(math.Floor(x / si.cellSize))
	cy0 = int(math.Floor(y / si.cellSize))
	cx1 = int(math.Floor(x1 / si.cellSize))
	cy1 = int(math.Floor(y1 / si.cellSize))
	return cx0, cy0, cx1, cy1
}

// Insert records the cells covered by the node's bounding box. Any prior
// indexing for the same id is removed first, so re-indexing after a move or
// resize is idempotent.
func (si *SpatialIndex) Insert(n *GraphNode, size Size) {
	si.Remove(n.ID)

	cx0, cy0, cx1, cy1 := si.cellRange(n.X, n.Y, size.W, size.H)
	keys := make([]cellKey, 0, (cx1-cx0+1)*(cy1-cy0+1))
	for cy := cy0; cy <= cy1; cy++ {
		for cx := cx0; cx <= cx1; cx++ {
			key := cellKey{cx: cx, cy: cy}
			cell := si.cells[key]
			if cell == nil {
				cell = make(map[string]struct{})
				si.cells[key] = cell
			}
			cell[n.ID] = struct{}{}
			keys = append(keys, key)
		}
	}
	si.nodeCells[n.ID] = keys
}

// Remove deletes the node from every cell recorded in its reverse entry.
// Cells left empty are dropped entirely so a sparse, long-lived canvas does
// not grow the forward map without bound.
func (si *SpatialIndex) Remove(id string) {
	keys, ok := si.nodeCells[id]
	if !ok {
		return
	}
	for _, key := range keys {
		cell := si.cells[key]
		if cell == nil {
			continue
		}
		delete(cell, id)
		if len(cell) == 0 {
			delete(si.cells, key)
		}
	}
	delete(si.nodeCells, id)
}

// QueryRect returns the de-duplicated ids of all nodes whose indexed cells
// overlap the world rectangle. Order is unspecified.
func (si *SpatialIndex) QueryRect(r Rect) []string {
	cx0, cy0, cx1, cy1 := si.cellRange(r.X, r.Y, r.Width, r.Height)
	seen := make(map[string]struct{})
	var out []string
	for cy := cy0; cy <= cy1; cy++ {
		for cx := cx0; cx <= cx1; cx++ {
			for id := range si.cells[cellKey{cx: cx, cy: cy}] {
				if _, dup := seen[id]; dup {
					continue
				}
				seen[id] = struct{}{}
				out = append(out, id)
			}
		}
	}
	return out
}

// QueryViewport returns the ids of nodes near the visible screen rectangle,
// expanded by margin screen pixels on every side so near-offscreen content
// can be pre-mounted. The margin is converted to world units through the
// viewport's zoom.
func (si *SpatialIndex) QueryViewport(v Viewport, screen Size, margin float64) []string {
	world := v.VisibleWorldRect(screen)
	m := margin / v.Zoom
	return si.QueryRect(Rect{
		X:      world.X - m,
		Y:      world.Y - m,
		Width:  world.Width + 2*m,
		Height: world.Height + 2*m,
	})
}

// Rebuild clears both maps and re-indexes every node. Used after bulk
// mutation (paste, undo jump, project load) where incremental maintenance
// would be slower or riskier than starting over.
func (si *SpatialIndex) Rebuild(nodes []*GraphNode, sizeFn SizeFunc) {
	si.cells = make(map[cellKey]map[string]struct{})
	si.nodeCells = make(map[string][]cellKey)
	for _, n := range nodes {
		si.Insert(n, NodeSize(n, sizeFn))
	}
}

// Len returns the number of indexed nodes.
func (si *SpatialIndex) Len() int {
	return len(si.nodeCells)
}
