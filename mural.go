package mural

// Vec2 is a 2D vector used for positions, offsets, sizes, and directions
// throughout the API.
type Vec2 struct {
	X, Y float64
}

// Size is a width/height pair in world units.
type Size struct {
	W, H float64
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Intersects reports whether r and other overlap.
// Adjacent rectangles (sharing only an edge) are considered intersecting.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width &&
		r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height &&
		r.Y+r.Height >= other.Y
}

// Side identifies which vertical edge of a node a port sits on. There are no
// top or bottom ports in this model.
type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// NodeType distinguishes the closed set of node kinds a graph may contain.
// The engine only ever reads a node's identity, type, position, and size;
// the type-specific payload stays opaque.
type NodeType string

const (
	NodeText        NodeType = "text"
	NodeImage       NodeType = "image"
	NodeVideo       NodeType = "video"
	NodeAudio       NodeType = "audio"
	NodeImageConfig NodeType = "imageConfig"
	NodeVideoConfig NodeType = "videoConfig"
)

// EdgeKind selects an edge's visual treatment only; it never affects
// hit-testing or traversal.
type EdgeKind string

const (
	EdgeFlow      EdgeKind = "flow"      // solid pipeline connection (default)
	EdgeReference EdgeKind = "reference" // dashed reference link
)

// EdgeEnd tags which end of an edge an endpoint hit refers to.
type EdgeEnd uint8

const (
	EndSource EdgeEnd = iota // the edge's source port
	EndTarget                // the edge's target port
)
