package main

import (
	"context"
	"fmt"
	"image"
	"os"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"go.uber.org/zap"

	"github.com/taigrr/wireorb/internal/config"
	"github.com/taigrr/wireorb/internal/logger"
	"github.com/taigrr/wireorb/pkg/orb"
	"github.com/taigrr/wireorb/pkg/render"
	"github.com/taigrr/wireorb/pkg/stage"
	"github.com/taigrr/wireorb/pkg/theme"
)

func runTerminalCmd(ctx context.Context, flags *rootFlags) error {
	// Console logging would draw over the alternate screen.
	cfg, log, err := setup(flags, 0, 0, false)
	if err != nil {
		return err
	}
	defer logger.Sync(log)

	return ignoreCancel(runTerminal(ctx, cfg, log))
}

// HUD renders a one-line overlay with frame rate and orb state.
type HUD struct {
	show      bool
	fps       float64
	fpsFrames int
	fpsTime   time.Time
}

// NewHUD creates a hidden HUD.
func NewHUD() *HUD {
	return &HUD{fpsTime: time.Now()}
}

// UpdateFPS updates the FPS counter (call once per presented frame).
func (h *HUD) UpdateFPS(now time.Time) {
	h.fpsFrames++
	elapsed := now.Sub(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = now
	}
}

// Render draws the HUD on the bottom row of the terminal.
func (h *HUD) Render(height int, r *orb.Renderer) {
	const (
		reset     = "\x1b[0m"
		bgBlack   = "\x1b[40m"
		fgGreen   = "\x1b[92m"
		fgWhite   = "\x1b[97m"
		clearLine = "\x1b[2K"
	)
	moveTo := func(row, col int) string {
		return fmt.Sprintf("\x1b[%d;%dH", row, col)
	}

	// Always clear the HUD row so toggling off works.
	fmt.Print(moveTo(height, 1) + clearLine)
	if !h.show {
		return
	}

	mode := "light"
	if r.Dark() {
		mode = "dark"
	}
	rot := r.Rotation()
	ptr := r.Pointer()
	fmt.Printf("%s%s%s %.0f FPS %s%s %s  rot %.2f/%.2f  ptr %+.2f/%+.2f %s",
		moveTo(height, 1), bgBlack, fgGreen, h.fps, fgWhite, bgBlack,
		mode, rot.X, rot.Y, ptr.X, ptr.Y, reset)
}

func runTerminal(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	params, err := cfg.Params()
	if err != nil {
		return err
	}
	bg, err := cfg.BackgroundColor()
	if err != nil {
		return err
	}

	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	fmt.Fprint(os.Stdout, "\x1b[?1003h") // Enable any-event mouse tracking
	fmt.Fprint(os.Stdout, "\x1b[?1006h") // Enable SGR extended mouse mode

	cleanup := func() {
		fmt.Fprint(os.Stdout, "\x1b[?1003l")
		fmt.Fprint(os.Stdout, "\x1b[?1006l")
		term.ExitAltScreen()
		term.ShowCursor()
		if err := term.Shutdown(context.Background()); err != nil {
			log.Warn("terminal shutdown", zap.Error(err))
		}
	}
	defer cleanup()

	termRenderer := render.NewTerminalRenderer(term, width, height)
	fbWidth, fbHeight := termRenderer.FramebufferSize()
	fb := render.NewFramebuffer(fbWidth, fbHeight)
	fb.Background = bg
	fb.Opacity = cfg.Display.Opacity

	st := stage.New(image.Rect(0, 0, fbWidth, fbHeight), cfg.Display.FPS)
	sig := theme.NewSignal(cfg.Theme.Dark)
	hud := NewHUD()

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	r := orb.Mount(st, fb, sig, params, log)
	defer r.Unmount()

	st.SetPresenter(func(now time.Time) {
		termRenderer.Render(fb)
		if err := termRenderer.Flush(); err != nil {
			cancel(fmt.Errorf("flush: %w", err))
			return
		}
		hud.UpdateFPS(now)
		hud.Render(height, r)
	})

	log.Info("terminal host started",
		zap.Int("cols", width),
		zap.Int("rows", height),
		zap.Int("fps", cfg.Display.FPS),
	)

	// Events arrive on the terminal's goroutine; everything that touches the
	// renderer is posted to the stage loop.
	post := func(fn func()) {
		select {
		case <-ctx.Done():
		default:
			st.Post(fn)
		}
	}
	go func() {
		for ev := range term.Events() {
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				cols, rows := ev.Width, ev.Height
				post(func() {
					width, height = cols, rows
					term.Erase()
					term.Resize(cols, rows)
					termRenderer.Resize(cols, rows)
					fbWidth, fbHeight = termRenderer.FramebufferSize()
					st.Resize(image.Rect(0, 0, fbWidth, fbHeight))
				})

			case uv.KeyPressEvent:
				switch {
				case ev.MatchString("q", "escape", "ctrl+c"):
					cancel(context.Canceled)
					return
				case ev.MatchString("t"):
					post(func() { sig.Toggle() })
				case ev.MatchString("?"), ev.MatchString("shift+/"):
					post(func() { hud.show = !hud.show })
				}

			case uv.MouseMotionEvent:
				// Half blocks: each cell is two framebuffer rows.
				x, y := float64(ev.X), float64(2*ev.Y+1)
				post(func() { st.MovePointer(x, y) })
			}
		}
	}()

	err = st.Run(ctx)
	if cause := context.Cause(ctx); cause != nil && cause != context.Canceled {
		return cause
	}
	log.Info("terminal host stopped", zap.Uint64("frames", r.Frames()))
	return err
}
