package orb

import (
	"image/color"
	"math"

	"github.com/charmbracelet/harmonica"
	"github.com/lucasb-eyer/go-colorful"
)

// fadeDone is how close to the target the spring must get before the fade
// snaps to the new palette.
const fadeDone = 1e-3

// paletteFader cross-fades between palettes on theme change using a
// critically damped spring. With a zero frequency it switches immediately.
type paletteFader struct {
	spring  harmonica.Spring
	enabled bool

	from, to Palette
	pos, vel float64
}

func newPaletteFader(fps int, frequency float64, initial Palette) *paletteFader {
	f := &paletteFader{
		from: initial,
		to:   initial,
		pos:  1,
	}
	if frequency > 0 {
		f.enabled = true
		f.spring = harmonica.NewSpring(harmonica.FPS(fps), frequency, 1.0)
	}
	return f
}

// Retarget starts a fade from whatever is currently shown toward p.
func (f *paletteFader) Retarget(p Palette) {
	f.from = f.Current()
	f.to = p
	if !f.enabled {
		f.pos, f.vel = 1, 0
		return
	}
	f.pos, f.vel = 0, 0
}

// Step advances the fade by one frame.
func (f *paletteFader) Step() {
	if f.pos >= 1 {
		return
	}
	f.pos, f.vel = f.spring.Update(f.pos, f.vel, 1)
	if math.Abs(1-f.pos) < fadeDone {
		f.pos, f.vel = 1, 0
	}
}

// Done reports whether the target palette is fully shown.
func (f *paletteFader) Done() bool {
	return f.pos >= 1
}

// Current returns the blended palette for this frame.
func (f *paletteFader) Current() Palette {
	t := clamp01(f.pos)
	if t >= 1 {
		return f.to
	}
	return Palette{
		Line:      f.from.Line.BlendRgb(f.to.Line, t),
		Glow:      f.from.Glow.BlendRgb(f.to.Glow, t),
		GlowAlpha: f.from.GlowAlpha + (f.to.GlowAlpha-f.from.GlowAlpha)*t,
	}
}

// Stroke returns the line colour at the given opacity.
func (p Palette) Stroke(alpha float64) color.NRGBA {
	return nrgba(p.Line, alpha)
}

// GlowInner returns the centre colour of the radial glow.
func (p Palette) GlowInner() color.NRGBA {
	return nrgba(p.Glow, p.GlowAlpha)
}

// glowOuter is the transparent rim of the radial glow.
var glowOuter = color.NRGBA{R: 255, G: 255, B: 255, A: 0}

func nrgba(c colorful.Color, alpha float64) color.NRGBA {
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(math.Round(clamp01(alpha) * 255))}
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
