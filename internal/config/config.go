// Package config handles wireorb configuration loading and validation.
package config

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/taigrr/wireorb/pkg/orb"
)

// Config holds all wireorb settings.
type Config struct {
	Orb     OrbConfig     `yaml:"orb"`
	Theme   ThemeConfig   `yaml:"theme"`
	Display DisplayConfig `yaml:"display"`
	Logging LoggingConfig `yaml:"logging"`
}

// OrbConfig holds the sphere geometry and motion settings.
type OrbConfig struct {
	Rings         int     `yaml:"rings"`
	Segs          int     `yaml:"segs"`
	RadiusFactor  float64 `yaml:"radius_factor"`
	FOV           float64 `yaml:"fov"`
	DriftYaw      float64 `yaml:"drift_yaw"`
	DriftPitch    float64 `yaml:"drift_pitch"`
	PointerYaw    float64 `yaml:"pointer_yaw"`
	PointerPitch  float64 `yaml:"pointer_pitch"`
	PointerScale  float64 `yaml:"pointer_scale"`
	RingWidth     float64 `yaml:"ring_width"`
	MeridianWidth float64 `yaml:"meridian_width"`
	GlowFactor    float64 `yaml:"glow_factor"`
	FadeFrequency float64 `yaml:"fade_frequency"` // 0 switches palettes instantly
}

// PaletteConfig holds the colours for one theme as hex strings.
type PaletteConfig struct {
	Line      string  `yaml:"line"`
	Glow      string  `yaml:"glow"`
	GlowAlpha float64 `yaml:"glow_alpha"`
}

// ThemeConfig holds the starting theme and both palettes.
type ThemeConfig struct {
	Dark         bool          `yaml:"dark"`
	DarkPalette  PaletteConfig `yaml:"dark_palette"`
	LightPalette PaletteConfig `yaml:"light_palette"`
}

// DisplayConfig holds output settings shared by the hosts.
type DisplayConfig struct {
	FPS        int     `yaml:"fps"`
	Background string  `yaml:"background"`
	Opacity    float64 `yaml:"opacity"`
	Width      int     `yaml:"width"`  // window and snapshot size
	Height     int     `yaml:"height"` // window and snapshot size
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config matching orb.DefaultParams.
func Default() *Config {
	p := orb.DefaultParams()
	return &Config{
		Orb: OrbConfig{
			Rings:         p.Topology.Rings,
			Segs:          p.Topology.Segs,
			RadiusFactor:  p.RadiusFactor,
			FOV:           p.FOV,
			DriftYaw:      p.DriftYaw,
			DriftPitch:    p.DriftPitch,
			PointerYaw:    p.PointerYaw,
			PointerPitch:  p.PointerPitch,
			PointerScale:  p.PointerScale,
			RingWidth:     p.RingWidth,
			MeridianWidth: p.MeridianWidth,
			GlowFactor:    p.GlowFactor,
			FadeFrequency: p.FadeFrequency,
		},
		Theme: ThemeConfig{
			Dark:         true,
			DarkPalette:  paletteConfig(p.Dark),
			LightPalette: paletteConfig(p.Light),
		},
		Display: DisplayConfig{
			FPS:        p.FPS,
			Background: "#1e1e28",
			Opacity:    0.85,
			Width:      480,
			Height:     480,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

func paletteConfig(p orb.Palette) PaletteConfig {
	return PaletteConfig{Line: p.Line.Hex(), Glow: p.Glow.Hex(), GlowAlpha: p.GlowAlpha}
}

// Validate reports every setting that cannot produce a drawable orb.
func (c *Config) Validate() error {
	var errs []error
	if c.Orb.Rings < 2 {
		errs = append(errs, fmt.Errorf("orb.rings must be at least 2, got %d", c.Orb.Rings))
	}
	if c.Orb.Segs < 3 {
		errs = append(errs, fmt.Errorf("orb.segs must be at least 3, got %d", c.Orb.Segs))
	}
	if c.Orb.FOV <= 0 {
		errs = append(errs, fmt.Errorf("orb.fov must be positive, got %v", c.Orb.FOV))
	}
	if c.Orb.RadiusFactor <= 0 {
		errs = append(errs, fmt.Errorf("orb.radius_factor must be positive, got %v", c.Orb.RadiusFactor))
	}
	if c.Orb.FadeFrequency < 0 {
		errs = append(errs, fmt.Errorf("orb.fade_frequency must not be negative, got %v", c.Orb.FadeFrequency))
	}
	if c.Display.FPS <= 0 {
		errs = append(errs, fmt.Errorf("display.fps must be positive, got %d", c.Display.FPS))
	}
	if c.Display.Opacity < 0 || c.Display.Opacity > 1 {
		errs = append(errs, fmt.Errorf("display.opacity must be within [0, 1], got %v", c.Display.Opacity))
	}
	if c.Display.Width <= 0 || c.Display.Height <= 0 {
		errs = append(errs, fmt.Errorf("display size must be positive, got %dx%d", c.Display.Width, c.Display.Height))
	}
	if _, err := colorful.Hex(c.Display.Background); err != nil {
		errs = append(errs, fmt.Errorf("display.background: %w", err))
	}
	if _, err := c.Theme.DarkPalette.palette(); err != nil {
		errs = append(errs, fmt.Errorf("theme.dark_palette: %w", err))
	}
	if _, err := c.Theme.LightPalette.palette(); err != nil {
		errs = append(errs, fmt.Errorf("theme.light_palette: %w", err))
	}
	return errors.Join(errs...)
}

// Params converts the orb and theme sections into renderer parameters.
func (c *Config) Params() (orb.Params, error) {
	if err := c.Validate(); err != nil {
		return orb.Params{}, err
	}
	dark, _ := c.Theme.DarkPalette.palette()
	light, _ := c.Theme.LightPalette.palette()

	return orb.Params{
		Topology:      orb.Topology{Rings: c.Orb.Rings, Segs: c.Orb.Segs},
		RadiusFactor:  c.Orb.RadiusFactor,
		FOV:           c.Orb.FOV,
		DriftYaw:      c.Orb.DriftYaw,
		DriftPitch:    c.Orb.DriftPitch,
		PointerYaw:    c.Orb.PointerYaw,
		PointerPitch:  c.Orb.PointerPitch,
		PointerScale:  c.Orb.PointerScale,
		RingWidth:     c.Orb.RingWidth,
		MeridianWidth: c.Orb.MeridianWidth,
		GlowFactor:    c.Orb.GlowFactor,
		Dark:          dark,
		Light:         light,
		FadeFrequency: c.Orb.FadeFrequency,
		FPS:           c.Display.FPS,
	}, nil
}

// BackgroundColor returns the parsed display background.
func (c *Config) BackgroundColor() (color.RGBA, error) {
	bg, err := colorful.Hex(c.Display.Background)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("display.background: %w", err)
	}
	r, g, b := bg.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

func (p PaletteConfig) palette() (orb.Palette, error) {
	line, err := colorful.Hex(p.Line)
	if err != nil {
		return orb.Palette{}, fmt.Errorf("line: %w", err)
	}
	glow, err := colorful.Hex(p.Glow)
	if err != nil {
		return orb.Palette{}, fmt.Errorf("glow: %w", err)
	}
	if p.GlowAlpha < 0 || p.GlowAlpha > 1 {
		return orb.Palette{}, fmt.Errorf("glow_alpha must be within [0, 1], got %v", p.GlowAlpha)
	}
	return orb.Palette{Line: line, Glow: glow, GlowAlpha: p.GlowAlpha}, nil
}
