package mural

import (
	"errors"
	"sort"

	"github.com/google/uuid"
)

// ErrDuplicateID is returned when a node or edge with an already-present id
// is inserted into a graph.
var ErrDuplicateID = errors.New("mural: duplicate id")

// GraphNode is a typed node on the canvas. X and Y anchor the node's
// top-left corner in world space. W and H override the type's default size
// when non-zero; the indexing and hit-testing layers never mutate them.
// Data is an opaque type-specific payload the engine does not inspect.
type GraphNode struct {
	ID   string         `json:"id"`
	Type NodeType       `json:"type"`
	X    float64        `json:"x"`
	Y    float64        `json:"y"`
	W    float64        `json:"w,omitempty"`
	H    float64        `json:"h,omitempty"`
	Z    int            `json:"z"`
	Data map[string]any `json:"data,omitempty"`
}

// GraphEdge connects two nodes. SourceSide and TargetSide may be empty, in
// which case the edge leaves the source's right port and enters the target's
// left port. An edge whose endpoints do not both resolve in the current node
// collection is skipped by hit-testing and rendering rather than treated as
// an error.
type GraphEdge struct {
	ID         string         `json:"id"`
	Source     string         `json:"source"`
	Target     string         `json:"target"`
	SourceSide Side           `json:"sourceSide,omitempty"`
	TargetSide Side           `json:"targetSide,omitempty"`
	Kind       EdgeKind       `json:"kind,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
}

// sourceSide returns the edge's source side, defaulting to right.
func (e *GraphEdge) sourceSide() Side {
	if e.SourceSide == SideLeft {
		return SideLeft
	}
	return SideRight
}

// targetSide returns the edge's target side, defaulting to left.
func (e *GraphEdge) targetSide() Side {
	if e.TargetSide == SideRight {
		return SideRight
	}
	return SideLeft
}

// SizeFunc resolves the rendered size for a node type. Pure; configured per
// host. A node's rendered size is a function of its type plus the optional
// per-node override, never of engine state.
type SizeFunc func(t NodeType) Size

// defaultSizes is the built-in sizing table.
var defaultSizes = map[NodeType]Size{
	NodeText:        {W: 280, H: 160},
	NodeImage:       {W: 280, H: 210},
	NodeVideo:       {W: 320, H: 240},
	NodeAudio:       {W: 280, H: 96},
	NodeImageConfig: {W: 260, H: 180},
	NodeVideoConfig: {W: 260, H: 200},
}

// DefaultSize returns the built-in size for a node type. Unknown types get
// the text node size.
func DefaultSize(t NodeType) Size {
	if s, ok := defaultSizes[t]; ok {
		return s
	}
	return defaultSizes[NodeText]
}

// NodeSize resolves a node's rendered size: the per-node override when set,
// otherwise the sizing table entry for its type.
func NodeSize(n *GraphNode, sizeFn SizeFunc) Size {
	if n.W > 0 && n.H > 0 {
		return Size{W: n.W, H: n.H}
	}
	return sizeFn(n.Type)
}

// Graph is a reference node/edge store. It owns the authoritative
// collections the canvas engine reads each frame; the engine never mutates
// them directly outside the store's API.
type Graph struct {
	nodes []*GraphNode
	edges []*GraphEdge
	byID  map[string]*GraphNode
	nextZ int
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{byID: make(map[string]*GraphNode)}
}

// AddNode creates a node of the given type at (x, y) with a fresh id and
// the next z-order slot, and returns it.
func (g *Graph) AddNode(t NodeType, x, y float64) *GraphNode {
	n := &GraphNode{
		ID:   uuid.NewString(),
		Type: t,
		X:    x,
		Y:    y,
		Z:    g.nextZ,
	}
	g.nextZ++
	g.nodes = append(g.nodes, n)
	g.byID[n.ID] = n
	return n
}

// InsertNode adds a node with an explicit id, as used when restoring a
// snapshot. Returns ErrDuplicateID if the id is already present.
func (g *Graph) InsertNode(n *GraphNode) error {
	if _, ok := g.byID[n.ID]; ok {
		return ErrDuplicateID
	}
	if n.Z >= g.nextZ {
		g.nextZ = n.Z + 1
	}
	g.nodes = append(g.nodes, n)
	g.byID[n.ID] = n
	g.sortNodes()
	return nil
}

// RemoveNode deletes a node and every edge touching it. Reports whether the
// node existed.
func (g *Graph) RemoveNode(id string) bool {
	if _, ok := g.byID[id]; !ok {
		return false
	}
	delete(g.byID, id)
	for i, n := range g.nodes {
		if n.ID == id {
			g.nodes = append(g.nodes[:i], g.nodes[i+1:]...)
			break
		}
	}
	kept := g.edges[:0]
	for _, e := range g.edges {
		if e.Source != id && e.Target != id {
			kept = append(kept, e)
		}
	}
	g.edges = kept
	return true
}

// Node returns the node with the given id, or nil.
func (g *Graph) Node(id string) *GraphNode {
	return g.byID[id]
}

// Nodes returns the node list in ascending z-order (back to front). The
// returned slice MUST NOT be mutated.
func (g *Graph) Nodes() []*GraphNode {
	return g.nodes
}

// NodesByID returns the id lookup map. The returned map MUST NOT be mutated.
func (g *Graph) NodesByID() map[string]*GraphNode {
	return g.byID
}

// Edges returns the edge list. The returned slice MUST NOT be mutated.
func (g *Graph) Edges() []*GraphEdge {
	return g.edges
}

// AddEdge connects source to target with a fresh id and default sides and
// returns the edge. Endpoints are not validated: a dangling edge is
// tolerated by the engine and becomes eligible once both ids resolve.
func (g *Graph) AddEdge(source, target string) *GraphEdge {
	e := &GraphEdge{
		ID:     uuid.NewString(),
		Source: source,
		Target: target,
		Kind:   EdgeFlow,
	}
	g.edges = append(g.edges, e)
	return e
}

// InsertEdge adds an edge with an explicit id. Returns ErrDuplicateID if the
// id is already present.
func (g *Graph) InsertEdge(e *GraphEdge) error {
	for _, existing := range g.edges {
		if existing.ID == e.ID {
			return ErrDuplicateID
		}
	}
	g.edges = append(g.edges, e)
	return nil
}

// RemoveEdge deletes the edge with the given id. Reports whether it existed.
func (g *Graph) RemoveEdge(id string) bool {
	for i, e := range g.edges {
		if e.ID == id {
			g.edges = append(g.edges[:i], g.edges[i+1:]...)
			return true
		}
	}
	return false
}

// Edge returns the edge with the given id, or nil.
func (g *Graph) Edge(id string) *GraphEdge {
	for _, e := range g.edges {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// MoveNode sets a node's world position. Reports whether the node existed.
func (g *Graph) MoveNode(id string, x, y float64) bool {
	n := g.byID[id]
	if n == nil {
		return false
	}
	n.X = x
	n.Y = y
	return true
}

// BringToFront gives a node the topmost z-order slot.
func (g *Graph) BringToFront(id string) {
	n := g.byID[id]
	if n == nil {
		return
	}
	n.Z = g.nextZ
	g.nextZ++
	g.sortNodes()
}

// SizeOf resolves a node's rendered size against the default sizing table.
func (g *Graph) SizeOf(n *GraphNode) Size {
	return NodeSize(n, DefaultSize)
}

// Bounds returns the union bounding box of all nodes (at their rendered
// sizes). ok is false for an empty graph.
func (g *Graph) Bounds() (bounds Rect, ok bool) {
	return NodeBounds(g.nodes, DefaultSize)
}

// NodeBounds computes the union bounding box of a node collection.
func NodeBounds(nodes []*GraphNode, sizeFn SizeFunc) (bounds Rect, ok bool) {
	if len(nodes) == 0 {
		return Rect{}, false
	}
	first := true
	var x0, y0, x1, y1 float64
	for _, n := range nodes {
		s := NodeSize(n, sizeFn)
		if first {
			x0, y0 = n.X, n.Y
			x1, y1 = n.X+s.W, n.Y+s.H
			first = false
			continue
		}
		x0 = min(x0, n.X)
		y0 = min(y0, n.Y)
		x1 = max(x1, n.X+s.W)
		y1 = max(y1, n.Y+s.H)
	}
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}, true
}

func (g *Graph) sortNodes() {
	sort.SliceStable(g.nodes, func(i, j int) bool {
		return g.nodes[i].Z < g.nodes[j].Z
	})
}
