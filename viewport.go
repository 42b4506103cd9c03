package mural

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Zoom is always clamped to this range. Division by zoom is safe everywhere
// because nothing below MinZoom can reach the transform functions.
const (
	MinZoom = 0.1
	MaxZoom = 2.0
)

// DefaultFitMargin is the screen-pixel padding FitToContent leaves on every
// side of the content bounds.
const DefaultFitMargin = 48.0

// Viewport is the single pan/zoom state defining the world-to-screen mapping
// for one canvas. X and Y are the screen-space offset of the world origin;
// Zoom is the scale factor.
type Viewport struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"zoom"`
}

// NewViewport returns a viewport at the origin with zoom 1.
func NewViewport() Viewport {
	return Viewport{Zoom: 1}
}

// ClampZoom returns z limited to [MinZoom, MaxZoom].
func ClampZoom(z float64) float64 {
	return clamp(z, MinZoom, MaxZoom)
}

// Clamped returns the viewport with its zoom forced into the legal range.
func (v Viewport) Clamped() Viewport {
	v.Zoom = ClampZoom(v.Zoom)
	return v
}

// ScreenToWorld converts a screen-space point to world space:
// world = (screen - offset) / zoom.
func (v Viewport) ScreenToWorld(p Vec2) Vec2 {
	return Vec2{X: (p.X - v.X) / v.Zoom, Y: (p.Y - v.Y) / v.Zoom}
}

// WorldToScreen converts a world-space point to screen space. Exact inverse
// of ScreenToWorld.
func (v Viewport) WorldToScreen(p Vec2) Vec2 {
	return Vec2{X: p.X*v.Zoom + v.X, Y: p.Y*v.Zoom + v.Y}
}

// VisibleWorldRect returns the world-space rectangle currently covered by a
// screen of the given size.
func (v Viewport) VisibleWorldRect(screen Size) Rect {
	tl := v.ScreenToWorld(Vec2{X: 0, Y: 0})
	br := v.ScreenToWorld(Vec2{X: screen.W, Y: screen.H})
	return Rect{X: tl.X, Y: tl.Y, Width: br.X - tl.X, Height: br.Y - tl.Y}
}

// ZoomAtScreenPoint scales the zoom by factor, anchored at the given screen
// point: the world point under the cursor before the zoom is still under the
// cursor after it. The resulting zoom is clamped to [MinZoom, MaxZoom].
func (v Viewport) ZoomAtScreenPoint(factor float64, p Vec2) Viewport {
	newZoom := ClampZoom(v.Zoom * factor)
	if newZoom == v.Zoom {
		return v
	}
	world := v.ScreenToWorld(p)
	return Viewport{
		X:    p.X - world.X*newZoom,
		Y:    p.Y - world.Y*newZoom,
		Zoom: newZoom,
	}
}

// FitToContent computes the viewport that fits bounds into the screen with
// the given margin on every side. The zoom is the smaller of the two
// axis-fit ratios (preserving aspect), clamped to the legal range, and the
// offset places the bounds' top-left corner at the margin.
func FitToContent(bounds Rect, screen Size, margin float64) Viewport {
	availW := screen.W - 2*margin
	availH := screen.H - 2*margin
	zoom := MaxZoom
	if bounds.Width > 0 && bounds.Height > 0 && availW > 0 && availH > 0 {
		zoom = min(availW/bounds.Width, availH/bounds.Height)
	}
	zoom = ClampZoom(zoom)
	return Viewport{
		X:    margin - bounds.X*zoom,
		Y:    margin - bounds.Y*zoom,
		Zoom: zoom,
	}
}

// viewAnim holds active tweens animating the viewport offset (and optionally
// zoom). Advanced once per frame by Canvas.Update; any direct pointer
// gesture cancels it.
type viewAnim struct {
	tweenX   *gween.Tween
	tweenY   *gween.Tween
	tweenZ   *gween.Tween
	doneX    bool
	doneY    bool
	doneZ    bool
	zoomAnim bool
}

func newViewAnim(from, to Viewport, duration float32, easeFn ease.TweenFunc) *viewAnim {
	if easeFn == nil {
		easeFn = ease.Linear
	}
	a := &viewAnim{
		tweenX: gween.New(float32(from.X), float32(to.X), duration, easeFn),
		tweenY: gween.New(float32(from.Y), float32(to.Y), duration, easeFn),
	}
	if to.Zoom != from.Zoom {
		a.tweenZ = gween.New(float32(from.Zoom), float32(to.Zoom), duration, easeFn)
		a.zoomAnim = true
	}
	return a
}

// update advances the tweens and returns the animated viewport. finished is
// true once every axis has completed.
func (a *viewAnim) update(v Viewport, dt float32) (Viewport, bool) {
	if !a.doneX {
		val, done := a.tweenX.Update(dt)
		v.X = float64(val)
		a.doneX = done
	}
	if !a.doneY {
		val, done := a.tweenY.Update(dt)
		v.Y = float64(val)
		a.doneY = done
	}
	if a.zoomAnim && !a.doneZ {
		val, done := a.tweenZ.Update(dt)
		v.Zoom = ClampZoom(float64(val))
		a.doneZ = done
	}
	finished := a.doneX && a.doneY && (!a.zoomAnim || a.doneZ)
	return v, finished
}
