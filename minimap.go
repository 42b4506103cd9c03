package mural

// Minimap maps the node bounding box of the whole graph into a small
// screen-space rectangle, independent of the main viewport's zoom. Clicking
// or dragging on it recenters the main viewport without changing zoom.
type Minimap struct {
	// Bounds is the screen-space rectangle the minimap occupies.
	Bounds Rect
	// Padding is kept clear inside Bounds on every side.
	Padding float64
}

// NewMinimap creates a minimap over the given screen rectangle with a small
// default padding.
func NewMinimap(bounds Rect) *Minimap {
	return &Minimap{Bounds: bounds, Padding: 8}
}

// scale returns the world-to-minimap scale factor for the given content
// bounds: the smaller axis-fit ratio, so aspect is preserved.
func (m *Minimap) scale(world Rect) float64 {
	availW := m.Bounds.Width - 2*m.Padding
	availH := m.Bounds.Height - 2*m.Padding
	if world.Width <= 0 || world.Height <= 0 || availW <= 0 || availH <= 0 {
		return 1
	}
	return min(availW/world.Width, availH/world.Height)
}

// WorldToMini converts a world-space point to minimap screen coordinates.
func (m *Minimap) WorldToMini(p Vec2, world Rect) Vec2 {
	s := m.scale(world)
	return Vec2{
		X: m.Bounds.X + m.Padding + (p.X-world.X)*s,
		Y: m.Bounds.Y + m.Padding + (p.Y-world.Y)*s,
	}
}

// MiniToWorld converts a minimap screen point back to world space. Exact
// inverse of WorldToMini.
func (m *Minimap) MiniToWorld(p Vec2, world Rect) Vec2 {
	s := m.scale(world)
	return Vec2{
		X: world.X + (p.X-m.Bounds.X-m.Padding)/s,
		Y: world.Y + (p.Y-m.Bounds.Y-m.Padding)/s,
	}
}

// ViewportRect returns the main viewport's visible world area as a rectangle
// in minimap coordinates, for drawing the view indicator.
func (m *Minimap) ViewportRect(v Viewport, screen Size, world Rect) Rect {
	visible := v.VisibleWorldRect(screen)
	tl := m.WorldToMini(Vec2{X: visible.X, Y: visible.Y}, world)
	br := m.WorldToMini(Vec2{X: visible.X + visible.Width, Y: visible.Y + visible.Height}, world)
	return Rect{X: tl.X, Y: tl.Y, Width: br.X - tl.X, Height: br.Y - tl.Y}
}

// Recenter returns the viewport re-centered on the world point under the
// given minimap screen point. Zoom is unchanged.
func (m *Minimap) Recenter(v Viewport, screen Size, world Rect, miniPoint Vec2) Viewport {
	wp := m.MiniToWorld(miniPoint, world)
	return Viewport{
		X:    screen.W/2 - wp.X*v.Zoom,
		Y:    screen.H/2 - wp.Y*v.Zoom,
		Zoom: v.Zoom,
	}
}
