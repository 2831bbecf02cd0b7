package render

import (
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/wireorb/pkg/math3d"
)

var (
	white       = color.NRGBA{255, 255, 255, 255}
	opaqueWhite = color.RGBA{255, 255, 255, 255}
)

func setPixel(fb *Framebuffer, x, y int, c color.RGBA) {
	fb.Pixels[y*fb.Width+x] = c
}

func TestNewFramebufferTransparent(t *testing.T) {
	fb := NewFramebuffer(4, 3)
	if len(fb.Pixels) != 12 {
		t.Fatalf("len(Pixels) = %d, want 12", len(fb.Pixels))
	}
	for i, p := range fb.Pixels {
		if p != (color.RGBA{}) {
			t.Fatalf("pixel %d = %v, want transparent", i, p)
		}
	}
}

func TestResizeDropsContent(t *testing.T) {
	fb := NewFramebuffer(8, 8)
	for i := range fb.Pixels {
		fb.Pixels[i] = opaqueWhite
	}
	fb.Resize(4, 4)
	if fb.Width != 4 || fb.Height != 4 || len(fb.Pixels) != 16 {
		t.Fatalf("size = %dx%d (%d px), want 4x4", fb.Width, fb.Height, len(fb.Pixels))
	}
	if fb.GetPixel(1, 1) != (color.RGBA{}) {
		t.Error("content survived resize")
	}

	fb.Resize(-3, 5)
	if fb.Width != 0 || len(fb.Pixels) != 0 {
		t.Errorf("negative width resize = %dx%d", fb.Width, fb.Height)
	}
}

func TestBlendPixelOver(t *testing.T) {
	fb := NewFramebuffer(1, 1)
	setPixel(fb, 0, 0, color.RGBA{0, 0, 255, 255})
	fb.BlendPixel(0, 0, premultiply(color.NRGBA{255, 0, 0, 255}, 0.5))

	got := fb.GetPixel(0, 0)
	if got.A != 255 {
		t.Errorf("alpha = %d, want 255", got.A)
	}
	if absInt(int(got.R)-128) > 1 || absInt(int(got.B)-127) > 1 {
		t.Errorf("blend = %v, want ~{128 0 127 255}", got)
	}
}

func TestStrokePolylineCoverage(t *testing.T) {
	tests := []struct {
		name  string
		width float64
		alpha uint8
	}{
		{"full width", 1, 255},
		{"wide line", 3, 255},
		{"sub pixel", 0.5, 128},
		{"zero width", 0, 255},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fb := NewFramebuffer(10, 10)
			fb.StrokePolyline([]math3d.Vec2{{X: 1, Y: 5}, {X: 8, Y: 5}}, white, tc.width)
			got := fb.GetPixel(4, 5)
			if absInt(int(got.A)-int(tc.alpha)) > 1 {
				t.Errorf("alpha = %d, want %d", got.A, tc.alpha)
			}
		})
	}
}

func TestStrokePolylineJointsBlendedOnce(t *testing.T) {
	fb := NewFramebuffer(10, 3)
	half := color.NRGBA{255, 255, 255, 128}
	pts := []math3d.Vec2{{X: 0, Y: 1}, {X: 3, Y: 1}, {X: 6, Y: 1}, {X: 9, Y: 1}}
	fb.StrokePolyline(pts, half, 1)

	want := fb.GetPixel(1, 1)
	for _, x := range []int{3, 6} {
		if got := fb.GetPixel(x, 1); got != want {
			t.Errorf("joint pixel %d = %v, want %v", x, got, want)
		}
	}
}

func TestStrokePolylineClipsHugeCoordinates(t *testing.T) {
	fb := NewFramebuffer(20, 20)
	pts := []math3d.Vec2{
		{X: -1e12, Y: 10},
		{X: 1e12, Y: 10},
		{X: math.NaN(), Y: 0},
		{X: 5, Y: 5},
		{X: 1e300, Y: -1e300},
	}
	fb.StrokePolyline(pts, white, 1)

	for x := range 20 {
		if fb.GetPixel(x, 10).A == 0 {
			t.Fatalf("pixel (%d, 10) not drawn by clipped line", x)
		}
	}
}

func TestStrokePolylineOutside(t *testing.T) {
	fb := NewFramebuffer(10, 10)
	fb.StrokePolyline([]math3d.Vec2{{X: -5, Y: -5}, {X: -1, Y: 20}}, white, 1)
	for i, p := range fb.Pixels {
		if p.A != 0 {
			t.Fatalf("pixel %d drawn for a segment fully outside", i)
		}
	}
}

func TestFillRadial(t *testing.T) {
	fb := NewFramebuffer(21, 21)
	inner := color.NRGBA{255, 255, 255, 200}
	outer := color.NRGBA{255, 255, 255, 0}
	fb.FillRadial(10.5, 10.5, 8, inner, outer)

	center := fb.GetPixel(10, 10)
	if absInt(int(center.A)-200) > 1 {
		t.Errorf("centre alpha = %d, want ~200", center.A)
	}
	mid := fb.GetPixel(14, 10)
	if mid.A == 0 || mid.A >= center.A {
		t.Errorf("mid alpha = %d, want between 0 and %d", mid.A, center.A)
	}
	if corner := fb.GetPixel(0, 0); corner.A != 0 {
		t.Errorf("corner outside disc alpha = %d, want 0", corner.A)
	}

	fb.Clear()
	fb.FillRadial(10, 10, 0, inner, outer)
	fb.FillRadial(10, 10, math.NaN(), inner, outer)
	if fb.GetPixel(10, 10).A != 0 {
		t.Error("degenerate radius drew pixels")
	}
}

func TestFillRadialPremultiplied(t *testing.T) {
	fb := NewFramebuffer(21, 21)
	// Black fading to transparent white must stay black all the way out.
	fb.FillRadial(10.5, 10.5, 10, color.NRGBA{0, 0, 0, 255}, color.NRGBA{255, 255, 255, 0})

	for _, x := range []int{10, 13, 16, 19} {
		p := fb.GetPixel(x, 10)
		if p.A == 0 {
			continue
		}
		if p.R != 0 || p.G != 0 || p.B != 0 {
			t.Errorf("pixel (%d, 10) = %v, want pure black with alpha", x, p)
		}
	}
	if a := fb.GetPixel(16, 10).A; a == 0 || a == 255 {
		t.Errorf("mid alpha = %d, want partial", a)
	}
}

func TestFlatten(t *testing.T) {
	fb := NewFramebuffer(2, 1)
	fb.Background = color.RGBA{30, 30, 40, 255}
	fb.Opacity = 1
	setPixel(fb, 1, 0, opaqueWhite)

	if got := fb.Flatten(0, 0); got != color.RGBA{30, 30, 40, 255} {
		t.Errorf("empty pixel = %v, want background", got)
	}
	if got := fb.Flatten(1, 0); got != opaqueWhite {
		t.Errorf("opaque pixel = %v, want white", got)
	}

	fb.Opacity = 0.5
	got := fb.Flatten(1, 0)
	if absInt(int(got.R)-143) > 1 || absInt(int(got.B)-148) > 1 {
		t.Errorf("half opacity = %v, want ~{143 143 148}", got)
	}
}

func TestStrokeDiagonal(t *testing.T) {
	fb := NewFramebuffer(5, 5)
	fb.StrokePolyline([]math3d.Vec2{{X: 0, Y: 0}, {X: 4, Y: 4}}, white, 1)
	for i := range 5 {
		if fb.GetPixel(i, i) != opaqueWhite {
			t.Errorf("diagonal pixel %d = %v", i, fb.GetPixel(i, i))
		}
	}
	if fb.GetPixel(1, 0).A != 0 {
		t.Error("pixel off the diagonal was drawn")
	}
}

func TestSavePNG(t *testing.T) {
	fb := NewFramebuffer(6, 4)
	fb.Background = color.RGBA{10, 20, 30, 255}
	setPixel(fb, 2, 2, opaqueWhite)

	dir := t.TempDir()
	for _, transparent := range []bool{true, false} {
		path := filepath.Join(dir, "out.png")
		if err := fb.SavePNG(path, transparent); err != nil {
			t.Fatalf("SavePNG(transparent=%v): %v", transparent, err)
		}
		f, err := os.Open(path)
		if err != nil {
			t.Fatal(err)
		}
		img, err := png.Decode(f)
		f.Close()
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if img.Bounds().Dx() != 6 || img.Bounds().Dy() != 4 {
			t.Errorf("bounds = %v", img.Bounds())
		}
		_, _, _, a := img.At(0, 0).RGBA()
		if transparent && a != 0 {
			t.Errorf("transparent corner alpha = %d", a)
		}
		if !transparent && a != 0xffff {
			t.Errorf("flattened corner alpha = %d", a)
		}
	}
}

func TestClipLine(t *testing.T) {
	tests := []struct {
		name           string
		x0, y0, x1, y1 float64
		ok             bool
	}{
		{"inside", 1, 1, 5, 5, true},
		{"crossing", -10, 5, 20, 5, true},
		{"diagonal through", -5, -5, 15, 15, true},
		{"left of box", -5, 0, -1, 9, false},
		{"above box", 0, -3, 9, -1, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			x0, y0, x1, y1, ok := clipLine(tc.x0, tc.y0, tc.x1, tc.y1, 0, 0, 9, 9)
			if ok != tc.ok {
				t.Fatalf("ok = %v, want %v", ok, tc.ok)
			}
			if !ok {
				return
			}
			for _, v := range []float64{x0, y0, x1, y1} {
				if v < -1e-9 || v > 9+1e-9 {
					t.Errorf("clipped coordinate %v outside box", v)
				}
			}
		})
	}
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func TestDrawHalfBlocks(t *testing.T) {
	fb := NewFramebuffer(3, 4)
	bg := color.RGBA{10, 20, 30, 255}
	red := color.RGBA{255, 0, 0, 255}
	blue := color.RGBA{0, 0, 255, 255}
	fb.Background = bg
	fb.Opacity = 1
	setPixel(fb, 1, 2, red)  // row 1, top half
	setPixel(fb, 2, 3, blue) // row 1, bottom half

	scr := uv.NewScreenBuffer(3, 2)
	fb.Draw(scr, scr.Bounds())

	tests := []struct {
		name   string
		col    int
		row    int
		fg, bg color.RGBA
	}{
		{"empty", 0, 0, bg, bg},
		{"top pixel", 1, 1, red, bg},
		{"bottom pixel", 2, 1, bg, blue},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cell := scr.CellAt(tc.col, tc.row)
			if cell == nil {
				t.Fatal("cell is nil")
			}
			if cell.Content != "▀" {
				t.Errorf("content = %q, want upper half block", cell.Content)
			}
			if cell.Style.Fg != tc.fg {
				t.Errorf("fg = %v, want %v", cell.Style.Fg, tc.fg)
			}
			if cell.Style.Bg != tc.bg {
				t.Errorf("bg = %v, want %v", cell.Style.Bg, tc.bg)
			}
		})
	}
}

func TestDrawAppliesOpacity(t *testing.T) {
	fb := NewFramebuffer(1, 2)
	fb.Background = color.RGBA{10, 20, 30, 255}
	fb.Opacity = 0.5
	setPixel(fb, 0, 0, opaqueWhite)

	scr := uv.NewScreenBuffer(1, 1)
	fb.Draw(scr, scr.Bounds())

	fg, ok := scr.CellAt(0, 0).Style.Fg.(color.RGBA)
	if !ok {
		t.Fatalf("fg type = %T, want color.RGBA", scr.CellAt(0, 0).Style.Fg)
	}
	// 255*0.5 + background*(1-0.5)
	want := color.RGBA{133, 138, 143, 255}
	if absInt(int(fg.R)-int(want.R)) > 1 || absInt(int(fg.G)-int(want.G)) > 1 || absInt(int(fg.B)-int(want.B)) > 1 {
		t.Errorf("fg = %v, want ~%v", fg, want)
	}
	if bg := scr.CellAt(0, 0).Style.Bg; bg != fb.Background {
		t.Errorf("bg = %v, want background %v", bg, fb.Background)
	}
}

func TestTerminalRendererSize(t *testing.T) {
	tr := NewTerminalRenderer(nil, 80, 24)
	if w, h := tr.FramebufferSize(); w != 80 || h != 48 {
		t.Errorf("FramebufferSize = %dx%d, want 80x48", w, h)
	}
	tr.Resize(100, 30)
	if w, h := tr.FramebufferSize(); w != 100 || h != 60 {
		t.Errorf("after resize = %dx%d, want 100x60", w, h)
	}
}

func BenchmarkStrokePolyline(b *testing.B) {
	fb := NewFramebuffer(320, 240)
	pts := make([]math3d.Vec2, 25)
	for i := range pts {
		a := float64(i) / 24 * 2 * math.Pi
		pts[i] = math3d.V2(160+90*math.Cos(a), 120+90*math.Sin(a))
	}
	c := color.NRGBA{180, 180, 200, 46}
	for b.Loop() {
		fb.StrokePolyline(pts, c, 0.7)
	}
}

func BenchmarkFillRadial(b *testing.B) {
	fb := NewFramebuffer(320, 240)
	inner := color.NRGBA{255, 255, 255, 8}
	for b.Loop() {
		fb.FillRadial(160, 120, 45, inner, color.NRGBA{})
	}
}
