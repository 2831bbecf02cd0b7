package orb

import (
	"image"
	"math"
)

// Viewport is the pixel size of the drawing surface.
type Viewport struct {
	Width, Height int
}

// Empty reports whether nothing can be drawn.
func (v Viewport) Empty() bool {
	return v.Width <= 0 || v.Height <= 0
}

// Radius returns factor * min(width, height), or 0 for an empty viewport.
func (v Viewport) Radius(factor float64) float64 {
	if v.Empty() {
		return 0
	}
	return factor * float64(min(v.Width, v.Height))
}

// Center returns the middle of the viewport.
func (v Viewport) Center() (x, y float64) {
	return float64(v.Width) / 2, float64(v.Height) / 2
}

// Rotation holds the accumulated X (pitch) and Y (yaw) angles in radians.
// The angles are never wrapped.
type Rotation struct {
	X, Y float64
}

// Advance returns the rotation after one frame with the given pointer offset.
func (r Rotation) Advance(p PointerOffset, params Params) Rotation {
	return Rotation{
		X: r.X + params.DriftPitch + p.Y*params.PointerPitch,
		Y: r.Y + params.DriftYaw + p.X*params.PointerYaw,
	}
}

// PointerOffset is the pointer position relative to the surface centre,
// normalized by surface size and multiplied by the pointer scale.
type PointerOffset struct {
	X, Y float64
}

// PointerFromScreen converts a host pointer position into an offset from the
// centre of bounds. It is deliberately not clamped: a pointer outside the
// surface yields a proportionally larger offset. ok is false for an empty
// bounds rectangle.
func PointerFromScreen(x, y float64, bounds image.Rectangle, scale float64) (off PointerOffset, ok bool) {
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return PointerOffset{}, false
	}
	off = PointerOffset{
		X: ((x-float64(bounds.Min.X))/float64(w) - 0.5) * scale,
		Y: ((y-float64(bounds.Min.Y))/float64(h) - 0.5) * scale,
	}
	if math.IsNaN(off.X) || math.IsNaN(off.Y) {
		return PointerOffset{}, false
	}
	return off, true
}
