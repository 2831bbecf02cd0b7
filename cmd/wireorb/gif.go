package main

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"os"

	"github.com/taigrr/wireorb/pkg/render"
)

// quantize flattens fb and maps it onto pal by nearest colour.
func quantize(fb *render.Framebuffer, pal color.Palette) *image.Paletted {
	src := fb.FlattenInto(nil)
	dst := image.NewPaletted(src.Bounds(), pal)
	draw.Draw(dst, dst.Bounds(), src, image.Point{}, draw.Src)
	return dst
}

func saveGIF(path string, anim *gif.GIF) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create gif: %w", err)
	}
	defer f.Close()

	if err := gif.EncodeAll(f, anim); err != nil {
		return fmt.Errorf("encode gif: %w", err)
	}
	return f.Close()
}
