package orb

import (
	"image"
	"time"

	"go.uber.org/zap"
)

// Renderer draws the orb onto a Surface once per host frame until unmounted.
// It is not safe for concurrent use; the host delivers every callback on a
// single loop goroutine.
type Renderer struct {
	host    Host
	surface Surface
	params  Params
	log     *zap.Logger

	bounds image.Rectangle
	vp     Viewport
	rot    Rotation
	ptr    PointerOffset
	dark   bool
	fader  *paletteFader

	cancelFrame func()
	removers    []func()
	mounted     bool
	frames      uint64
	drawn       uint64
}

// Mount attaches a renderer to host and starts its frame loop. A nil surface
// means no drawing context is available: the returned renderer is inert and
// never draws. theme may be nil, which pins the light palette.
func Mount(host Host, surface Surface, theme ThemeSource, params Params, log *zap.Logger) *Renderer {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Renderer{
		host:    host,
		surface: surface,
		params:  params.withDefaults(),
		log:     log,
	}
	if host == nil || surface == nil {
		r.log.Warn("orb: no drawing surface, rendering disabled")
		return r
	}

	if theme != nil {
		r.dark = theme.Dark()
	}
	r.fader = newPaletteFader(r.params.FPS, r.params.FadeFrequency, r.params.For(r.dark))

	r.setBounds(host.Bounds())
	r.removers = append(r.removers,
		host.OnPointerMove(r.onPointerMove),
		host.OnResize(r.onResize),
	)
	if theme != nil {
		r.removers = append(r.removers, theme.Subscribe(r.onTheme))
	}

	r.mounted = true
	r.cancelFrame = host.RequestFrame(r.frame)
	r.log.Debug("orb mounted",
		zap.Int("width", r.vp.Width),
		zap.Int("height", r.vp.Height),
		zap.Int("rings", r.params.Topology.Rings),
		zap.Int("segs", r.params.Topology.Segs),
		zap.Bool("dark", r.dark),
	)
	return r
}

// Unmount cancels the pending frame and detaches every listener. It is safe
// to call more than once, and from inside a frame callback.
func (r *Renderer) Unmount() {
	if !r.mounted {
		return
	}
	r.mounted = false
	if r.cancelFrame != nil {
		r.cancelFrame()
		r.cancelFrame = nil
	}
	for i := len(r.removers) - 1; i >= 0; i-- {
		r.removers[i]()
	}
	r.removers = nil
	r.log.Debug("orb unmounted", zap.Uint64("frames", r.frames))
}

// Mounted reports whether the frame loop is live.
func (r *Renderer) Mounted() bool { return r.mounted }

// Rotation returns the accumulated rotation.
func (r *Renderer) Rotation() Rotation { return r.rot }

// Pointer returns the last pointer offset.
func (r *Renderer) Pointer() PointerOffset { return r.ptr }

// Viewport returns the most recently measured surface size.
func (r *Renderer) Viewport() Viewport { return r.vp }

// Dark reports the theme the renderer is targeting.
func (r *Renderer) Dark() bool { return r.dark }

// Frames returns how many frame callbacks ran while mounted.
func (r *Renderer) Frames() uint64 { return r.frames }

// Drawn returns how many frames produced geometry.
func (r *Renderer) Drawn() uint64 { return r.drawn }

func (r *Renderer) frame(time.Time) {
	r.cancelFrame = nil
	if !r.mounted {
		return
	}
	r.frames++
	r.draw()
	if r.mounted {
		r.cancelFrame = r.host.RequestFrame(r.frame)
	}
}

func (r *Renderer) draw() {
	r.fader.Step()
	if r.vp.Empty() {
		// Hidden container: try again next frame.
		return
	}

	r.surface.Clear()
	r.rot = r.rot.Advance(r.ptr, r.params)

	pal := r.fader.Current()
	for _, pl := range BuildMesh(r.rot, r.vp, r.params) {
		r.surface.StrokePolyline(pl.Points, pal.Stroke(pl.Alpha), pl.Width)
	}

	cx, cy := r.vp.Center()
	glow := r.vp.Radius(r.params.RadiusFactor) * r.params.GlowFactor
	r.surface.FillRadial(cx, cy, glow, pal.GlowInner(), glowOuter)
	r.drawn++
}

func (r *Renderer) setBounds(b image.Rectangle) {
	r.bounds = b
	r.vp = Viewport{Width: max(b.Dx(), 0), Height: max(b.Dy(), 0)}
	r.surface.Resize(r.vp.Width, r.vp.Height)
}

func (r *Renderer) onResize(b image.Rectangle) {
	if !r.mounted {
		return
	}
	r.setBounds(b)
	r.log.Debug("orb resized", zap.Int("width", r.vp.Width), zap.Int("height", r.vp.Height))
}

func (r *Renderer) onPointerMove(x, y float64) {
	if !r.mounted {
		return
	}
	if off, ok := PointerFromScreen(x, y, r.bounds, r.params.PointerScale); ok {
		r.ptr = off
	}
}

func (r *Renderer) onTheme(dark bool) {
	if !r.mounted || dark == r.dark {
		return
	}
	r.dark = dark
	r.fader.Retarget(r.params.For(dark))
	r.log.Debug("orb theme changed", zap.Bool("dark", dark))
}
