//go:build cgo

package main

import (
	"context"
	"errors"
	"image"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"go.uber.org/zap"

	"github.com/taigrr/wireorb/internal/config"
	"github.com/taigrr/wireorb/pkg/orb"
	"github.com/taigrr/wireorb/pkg/render"
	"github.com/taigrr/wireorb/pkg/stage"
	"github.com/taigrr/wireorb/pkg/theme"
)

// runWindow opens a desktop window showing the orb. It blocks until the
// window closes or ctx is cancelled.
func runWindow(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	params, err := cfg.Params()
	if err != nil {
		return err
	}
	bg, err := cfg.BackgroundColor()
	if err != nil {
		return err
	}

	w, h := cfg.Display.Width, cfg.Display.Height
	fb := render.NewFramebuffer(w, h)
	fb.Background = bg
	fb.Opacity = cfg.Display.Opacity

	st := stage.New(image.Rect(0, 0, w, h), cfg.Display.FPS)
	sig := theme.NewSignal(cfg.Theme.Dark)
	r := orb.Mount(st, fb, sig, params, log)
	defer r.Unmount()

	g := &windowGame{ctx: ctx, st: st, fb: fb, sig: sig, w: w, h: h, cursorX: -1, cursorY: -1}

	ebiten.SetWindowTitle("wireorb")
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(cfg.Display.FPS)

	log.Info("window host started", zap.Int("width", w), zap.Int("height", h))
	err = ebiten.RunGame(g)
	log.Info("window host stopped", zap.Uint64("frames", r.Frames()))
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

// windowGame adapts the stage to ebiten's game loop. Update, Draw and Layout
// all run on ebiten's loop goroutine, which doubles as the stage loop.
type windowGame struct {
	ctx context.Context
	st  *stage.Stage
	fb  *render.Framebuffer
	sig *theme.Signal

	w, h             int
	cursorX, cursorY int

	img   *image.RGBA
	fbImg *ebiten.Image
}

func (g *windowGame) Update() error {
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyT) {
		g.sig.Toggle()
	}

	if x, y := ebiten.CursorPosition(); x != g.cursorX || y != g.cursorY {
		g.cursorX, g.cursorY = x, y
		g.st.MovePointer(float64(x), float64(y))
	}

	g.st.Step(time.Now())
	return nil
}

func (g *windowGame) Draw(screen *ebiten.Image) {
	if g.fb.Width == 0 || g.fb.Height == 0 {
		return
	}
	g.img = g.fb.FlattenInto(g.img)
	if g.fbImg == nil || g.fbImg.Bounds().Dx() != g.fb.Width || g.fbImg.Bounds().Dy() != g.fb.Height {
		if g.fbImg != nil {
			g.fbImg.Deallocate()
		}
		g.fbImg = ebiten.NewImage(g.fb.Width, g.fb.Height)
	}
	g.fbImg.WritePixels(g.img.Pix)
	screen.DrawImage(g.fbImg, nil)
}

func (g *windowGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.w || outsideHeight != g.h {
		g.w, g.h = outsideWidth, outsideHeight
		g.st.Resize(image.Rect(0, 0, g.w, g.h))
	}
	return max(g.w, 1), max(g.h, 1)
}
