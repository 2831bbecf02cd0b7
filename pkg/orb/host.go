package orb

import (
	"image"
	"image/color"
	"time"

	"github.com/taigrr/wireorb/pkg/math3d"
)

// Scheduler schedules a callback on the host's next frame. The returned
// cancel function must be safe to call after the callback has fired.
type Scheduler interface {
	RequestFrame(fn func(now time.Time)) (cancel func())
}

// Host is the environment a renderer is mounted into. All callbacks are
// delivered on the host's loop goroutine.
type Host interface {
	Scheduler

	// Bounds returns the container rectangle in host pointer coordinates.
	Bounds() image.Rectangle

	// OnPointerMove registers a listener for global pointer movement.
	OnPointerMove(fn func(x, y float64)) (remove func())

	// OnResize registers a listener for container size changes.
	OnResize(fn func(bounds image.Rectangle)) (remove func())
}

// ThemeSource is an external dark-mode flag with change notification.
type ThemeSource interface {
	Dark() bool
	Subscribe(fn func(dark bool)) (cancel func())
}

// Surface is the 2D drawing target owned by a renderer.
type Surface interface {
	Resize(width, height int)
	Clear()
	StrokePolyline(pts []math3d.Vec2, c color.NRGBA, width float64)
	FillRadial(cx, cy, radius float64, inner, outer color.NRGBA)
}
