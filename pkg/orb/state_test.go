package orb

import (
	"image"
	"math"
	"testing"
)

func TestViewport(t *testing.T) {
	tests := []struct {
		vp     Viewport
		empty  bool
		radius float64
	}{
		{Viewport{Width: 200, Height: 100}, false, 38},
		{Viewport{Width: 50, Height: 400}, false, 19},
		{Viewport{}, true, 0},
		{Viewport{Width: 10, Height: 0}, true, 0},
		{Viewport{Width: -4, Height: 10}, true, 0},
	}
	for _, tc := range tests {
		if got := tc.vp.Empty(); got != tc.empty {
			t.Errorf("%v.Empty() = %v, want %v", tc.vp, got, tc.empty)
		}
		if got := tc.vp.Radius(0.38); math.Abs(got-tc.radius) > eps || math.IsNaN(got) {
			t.Errorf("%v.Radius = %v, want %v", tc.vp, got, tc.radius)
		}
	}
}

func TestRotationDrift(t *testing.T) {
	params := DefaultParams()
	for _, n := range []int{1, 10, 600, 10000} {
		var rot Rotation
		for range n {
			rot = rot.Advance(PointerOffset{}, params)
		}
		if math.Abs(rot.Y-0.004*float64(n)) > 1e-9 {
			t.Errorf("n=%d: rot.Y = %v, want %v", n, rot.Y, 0.004*float64(n))
		}
		if math.Abs(rot.X-0.001*float64(n)) > 1e-9 {
			t.Errorf("n=%d: rot.X = %v, want %v", n, rot.X, 0.001*float64(n))
		}
	}
}

func TestRotationPointerGain(t *testing.T) {
	params := DefaultParams()
	tests := []struct {
		name   string
		ptr    PointerOffset
		dY, dX float64
	}{
		{"centre", PointerOffset{}, 0.004, 0.001},
		{"right edge", PointerOffset{X: 0.3}, 0.007, 0.001},
		{"halfway right", PointerOffset{X: 0.15}, 0.0055, 0.001},
		{"left edge", PointerOffset{X: -0.3}, 0.001, 0.001},
		{"bottom edge", PointerOffset{Y: 0.3}, 0.004, 0.0025},
		{"top edge", PointerOffset{Y: -0.3}, 0.004, -0.0005},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			start := Rotation{X: 2, Y: -1}
			got := start.Advance(tc.ptr, params)
			if math.Abs(got.Y-start.Y-tc.dY) > eps {
				t.Errorf("dY = %v, want %v", got.Y-start.Y, tc.dY)
			}
			if math.Abs(got.X-start.X-tc.dX) > eps {
				t.Errorf("dX = %v, want %v", got.X-start.X, tc.dX)
			}
		})
	}
}

func TestPointerFromScreen(t *testing.T) {
	bounds := image.Rect(100, 50, 500, 250) // 400 x 200
	tests := []struct {
		name   string
		x, y   float64
		want   PointerOffset
		wantOK bool
	}{
		{"centre", 300, 150, PointerOffset{}, true},
		{"top left", 100, 50, PointerOffset{X: -0.3, Y: -0.3}, true},
		{"bottom right", 500, 250, PointerOffset{X: 0.3, Y: 0.3}, true},
		{"three quarters", 400, 200, PointerOffset{X: 0.15, Y: 0.15}, true},
		{"far outside", 1300, 150, PointerOffset{X: 1.5}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := PointerFromScreen(tc.x, tc.y, bounds, 0.6)
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if math.Abs(got.X-tc.want.X) > eps || math.Abs(got.Y-tc.want.Y) > eps {
				t.Errorf("offset = %+v, want %+v", got, tc.want)
			}
		})
	}

	if _, ok := PointerFromScreen(10, 10, image.Rectangle{}, 0.6); ok {
		t.Error("empty bounds produced an offset")
	}
}

func TestParamsWithDefaults(t *testing.T) {
	p := Params{Topology: Topology{Rings: 1, Segs: 2}}.withDefaults()
	if p.Topology != DefaultTopology {
		t.Errorf("Topology = %+v, want default", p.Topology)
	}
	if p.FOV != 600 || p.RadiusFactor != 0.38 || p.FPS != 60 {
		t.Errorf("structural defaults not applied: %+v", p)
	}

	custom := DefaultParams()
	custom.Topology = Topology{Rings: 4, Segs: 6}
	custom.FOV = 300
	if got := custom.withDefaults(); got.Topology != custom.Topology || got.FOV != 300 {
		t.Errorf("valid overrides were replaced: %+v", got)
	}

	still := DefaultParams()
	still.PointerScale = 0
	if got := still.withDefaults(); got.PointerScale != 0 {
		t.Errorf("PointerScale = %v, want 0 kept", got.PointerScale)
	}
}

func TestPaletteHex(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"dark line", DarkPalette().Line.Hex(), "#b4b4c8"},
		{"dark glow", DarkPalette().Glow.Hex(), "#ffffff"},
		{"light line", LightPalette().Line.Hex(), "#28283c"},
		{"light glow", LightPalette().Glow.Hex(), "#000000"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.got != tc.want {
				t.Errorf("Hex = %s, want %s", tc.got, tc.want)
			}
		})
	}
}

func TestMustHexPanicsOnBadInput(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("mustHex accepted a malformed colour")
		}
	}()
	mustHex("#zzz")
}
