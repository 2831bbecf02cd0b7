// Package render provides the software framebuffer the orb is drawn into and
// its terminal and image outputs.
package render

import (
	"image"
	"image/color"
	"image/png"
	"math"
	"os"

	"github.com/taigrr/wireorb/pkg/math3d"
)

// Framebuffer is a 2D array of premultiplied RGBA pixels. Cleared pixels are
// transparent; Background and Opacity are applied only when flattening for
// display.
type Framebuffer struct {
	Width  int
	Height int
	Pixels []color.RGBA // Row-major, premultiplied

	Background color.RGBA // Opaque colour shown behind the drawing
	Opacity    float64    // Global opacity of the drawing over Background
}

// NewFramebuffer creates a new transparent framebuffer.
func NewFramebuffer(width, height int) *Framebuffer {
	width, height = max(width, 0), max(height, 0)
	return &Framebuffer{
		Width:      width,
		Height:     height,
		Pixels:     make([]color.RGBA, width*height),
		Background: color.RGBA{A: 255},
		Opacity:    1,
	}
}

// Resize reallocates the pixel store. Content is not preserved.
func (fb *Framebuffer) Resize(width, height int) {
	width, height = max(width, 0), max(height, 0)
	fb.Width, fb.Height = width, height
	if cap(fb.Pixels) >= width*height {
		fb.Pixels = fb.Pixels[:width*height]
		fb.Clear()
		return
	}
	fb.Pixels = make([]color.RGBA, width*height)
}

// Clear makes every pixel transparent.
func (fb *Framebuffer) Clear() {
	clear(fb.Pixels)
}

// GetPixel returns the color at (x, y).
// Returns transparent black if out of bounds.
func (fb *Framebuffer) GetPixel(x, y int) color.RGBA {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return color.RGBA{}
	}
	return fb.Pixels[y*fb.Width+x]
}

// BlendPixel composites the premultiplied colour c over (x, y).
func (fb *Framebuffer) BlendPixel(x, y int, c color.RGBA) {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height || c.A == 0 {
		return
	}
	i := y*fb.Width + x
	fb.Pixels[i] = over(c, fb.Pixels[i])
}

// over is the Porter-Duff source-over operator on premultiplied colours.
func over(src, dst color.RGBA) color.RGBA {
	inv := 255 - uint32(src.A)
	return color.RGBA{
		R: uint8(uint32(src.R) + (uint32(dst.R)*inv+127)/255),
		G: uint8(uint32(src.G) + (uint32(dst.G)*inv+127)/255),
		B: uint8(uint32(src.B) + (uint32(dst.B)*inv+127)/255),
		A: uint8(uint32(src.A) + (uint32(dst.A)*inv+127)/255),
	}
}

// premultiply converts a straight-alpha colour, scaling its alpha by k.
func premultiply(c color.NRGBA, k float64) color.RGBA {
	a := float64(c.A) / 255 * k
	if a <= 0 {
		return color.RGBA{}
	}
	if a > 1 {
		a = 1
	}
	return color.RGBA{
		R: uint8(math.Round(float64(c.R) * a)),
		G: uint8(math.Round(float64(c.G) * a)),
		B: uint8(math.Round(float64(c.B) * a)),
		A: uint8(math.Round(255 * a)),
	}
}

// StrokePolyline draws connected segments through pts. Widths below one
// pixel reduce coverage instead of thinning the line. Non-finite points
// break the polyline.
func (fb *Framebuffer) StrokePolyline(pts []math3d.Vec2, c color.NRGBA, width float64) {
	coverage := 1.0
	if width > 0 && width < 1 {
		coverage = width
	}
	pc := premultiply(c, coverage)
	if pc.A == 0 {
		return
	}

	first := true
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		if !a.IsFinite() || !b.IsFinite() {
			first = true
			continue
		}
		// Joints are shared by neighbouring segments; blend them once.
		fb.blendLine(a.X, a.Y, b.X, b.Y, pc, !first)
		first = false
	}
}

// blendLine clips the segment to the buffer and blends it pixel by pixel.
func (fb *Framebuffer) blendLine(x0, y0, x1, y1 float64, c color.RGBA, skipFirst bool) {
	if fb.Width == 0 || fb.Height == 0 {
		return
	}
	sx0, sy0 := x0, y0
	x0, y0, x1, y1, ok := clipLine(x0, y0, x1, y1, 0, 0, float64(fb.Width-1), float64(fb.Height-1))
	if !ok {
		return
	}
	// Only skip the joint pixel when the start point survived clipping.
	skip := skipFirst && x0 == sx0 && y0 == sy0
	fb.bresenham(round(x0), round(y0), round(x1), round(y1), skip, func(x, y int) { fb.BlendPixel(x, y, c) })
}

func (fb *Framebuffer) bresenham(x0, y0, x1, y1 int, skipFirst bool, plot func(x, y int)) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		if !skipFirst {
			plot(x0, y0)
		}
		skipFirst = false
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// FillRadial fills the disc of the given radius with a radial gradient from
// inner at the centre to outer at the rim, interpolated in premultiplied alpha.
func (fb *Framebuffer) FillRadial(cx, cy, radius float64, inner, outer color.NRGBA) {
	if radius <= 0 || math.IsNaN(radius) || math.IsInf(radius, 0) {
		return
	}
	minX := max(int(math.Floor(cx-radius)), 0)
	maxX := min(int(math.Ceil(cx+radius)), fb.Width-1)
	minY := max(int(math.Floor(cy-radius)), 0)
	maxY := min(int(math.Ceil(cy+radius)), fb.Height-1)
	in, out := premultiply(inner, 1), premultiply(outer, 1)

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			d := math.Hypot(float64(x)+0.5-cx, float64(y)+0.5-cy)
			if d > radius {
				continue
			}
			fb.BlendPixel(x, y, lerpRGBA(in, out, d/radius))
		}
	}
}

// lerpRGBA interpolates premultiplied colours.
func lerpRGBA(a, b color.RGBA, t float64) color.RGBA {
	l := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t))
	}
	return color.RGBA{R: l(a.R, b.R), G: l(a.G, b.G), B: l(a.B, b.B), A: l(a.A, b.A)}
}

// Flatten returns pixel (x, y) composited over Background at Opacity.
func (fb *Framebuffer) Flatten(x, y int) color.RGBA {
	return flatten(fb.GetPixel(x, y), fb.Background, fb.Opacity)
}

func flatten(px, bg color.RGBA, opacity float64) color.RGBA {
	if opacity < 0 {
		opacity = 0
	} else if opacity > 1 {
		opacity = 1
	}
	a := float64(px.A) / 255 * opacity
	mix := func(p, b uint8) uint8 {
		return uint8(math.Round(float64(p)*opacity + float64(b)*(1-a)))
	}
	return color.RGBA{R: mix(px.R, bg.R), G: mix(px.G, bg.G), B: mix(px.B, bg.B), A: 255}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func round(v float64) int {
	return int(math.Round(v))
}

// ToImage converts the framebuffer to a transparent image.RGBA.
func (fb *Framebuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for i, p := range fb.Pixels {
		j := i * 4
		img.Pix[j+0] = p.R
		img.Pix[j+1] = p.G
		img.Pix[j+2] = p.B
		img.Pix[j+3] = p.A
	}
	return img
}

// FlattenInto writes the framebuffer composited over Background into dst,
// reallocating it when the size differs, and returns it.
func (fb *Framebuffer) FlattenInto(dst *image.RGBA) *image.RGBA {
	if dst == nil || dst.Bounds().Dx() != fb.Width || dst.Bounds().Dy() != fb.Height {
		dst = image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	}
	for i, p := range fb.Pixels {
		c := flatten(p, fb.Background, fb.Opacity)
		j := i * 4
		dst.Pix[j+0] = c.R
		dst.Pix[j+1] = c.G
		dst.Pix[j+2] = c.B
		dst.Pix[j+3] = 255
	}
	return dst
}

// SavePNG saves the framebuffer as a PNG file. With transparent set the
// background is left out.
func (fb *Framebuffer) SavePNG(path string, transparent bool) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var img image.Image
	if transparent {
		img = fb.ToImage()
	} else {
		img = fb.FlattenInto(nil)
	}
	if err := png.Encode(f, img); err != nil {
		return err
	}
	return f.Close()
}
