// Package orb renders a rotating wireframe sphere that drifts on its own and
// leans toward the pointer.
package orb

import (
	"github.com/lucasb-eyer/go-colorful"
)

// Topology is the mesh resolution of the sphere.
type Topology struct {
	Rings int // latitude bands
	Segs  int // longitude divisions
}

// DefaultTopology is 12 latitude bands by 24 longitude segments.
var DefaultTopology = Topology{Rings: 12, Segs: 24}

// Valid reports whether the topology can form a closed mesh.
func (t Topology) Valid() bool {
	return t.Rings >= 2 && t.Segs >= 3
}

// Params holds every tunable of the renderer.
type Params struct {
	Topology     Topology
	RadiusFactor float64 // sphere radius as a fraction of min(width, height)
	FOV          float64 // perspective distance, scale = fov / (fov + z)

	DriftYaw     float64 // per-frame Y rotation with no pointer input
	DriftPitch   float64 // per-frame X rotation with no pointer input
	PointerYaw   float64 // Y rotation per unit of horizontal pointer offset
	PointerPitch float64 // X rotation per unit of vertical pointer offset
	PointerScale float64 // normalized pointer offset multiplier

	RingWidth     float64
	MeridianWidth float64
	GlowFactor    float64 // glow radius as a fraction of the sphere radius

	Dark  Palette
	Light Palette

	// FadeFrequency is the angular frequency of the palette cross-fade on
	// theme change. Zero switches on the next frame.
	FadeFrequency float64
	FPS           int
}

// DefaultParams returns the stock orb settings.
func DefaultParams() Params {
	return Params{
		Topology:      DefaultTopology,
		RadiusFactor:  0.38,
		FOV:           600,
		DriftYaw:      0.004,
		DriftPitch:    0.001,
		PointerYaw:    0.01,
		PointerPitch:  0.005,
		PointerScale:  0.6,
		RingWidth:     0.7,
		MeridianWidth: 0.6,
		GlowFactor:    0.5,
		Dark:          DarkPalette(),
		Light:         LightPalette(),
		FPS:           60,
	}
}

// withDefaults fills zero or unusable structural fields from DefaultParams.
// Motion gains are left alone so zero disables them.
func (p Params) withDefaults() Params {
	d := DefaultParams()
	if !p.Topology.Valid() {
		p.Topology = d.Topology
	}
	if p.RadiusFactor <= 0 {
		p.RadiusFactor = d.RadiusFactor
	}
	if p.FOV <= 0 {
		p.FOV = d.FOV
	}
	if p.FPS <= 0 {
		p.FPS = d.FPS
	}
	return p
}

// Palette is the stroke and glow colouring for one theme.
type Palette struct {
	Line      colorful.Color
	Glow      colorful.Color
	GlowAlpha float64
}

// DarkPalette is light-grey strokes with a faint white glow.
func DarkPalette() Palette {
	return Palette{
		Line:      mustHex("#b4b4c8"),
		Glow:      mustHex("#ffffff"),
		GlowAlpha: 0.03,
	}
}

// LightPalette is dark-grey strokes with a faint black glow.
func LightPalette() Palette {
	return Palette{
		Line:      mustHex("#28283c"),
		Glow:      mustHex("#000000"),
		GlowAlpha: 0.02,
	}
}

// For returns the palette for the given theme.
func (p Params) For(dark bool) Palette {
	if dark {
		return p.Dark
	}
	return p.Light
}

// mustHex parses a "#rrggbb" literal and panics if it is malformed.
func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}
