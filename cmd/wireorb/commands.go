package main

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/taigrr/wireorb/internal/config"
	"github.com/taigrr/wireorb/internal/logger"
	"github.com/taigrr/wireorb/pkg/math3d"
	"github.com/taigrr/wireorb/pkg/models"
	"github.com/taigrr/wireorb/pkg/orb"
	"github.com/taigrr/wireorb/pkg/render"
	"github.com/taigrr/wireorb/pkg/stage"
	"github.com/taigrr/wireorb/pkg/theme"
)

func newWindowCmd(flags *rootFlags) *cobra.Command {
	var width, height int
	cmd := &cobra.Command{
		Use:   "window",
		Short: "Render the orb in a desktop window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup(flags, width, height, true)
			if err != nil {
				return err
			}
			defer logger.Sync(log)
			return ignoreCancel(runWindow(cmd.Context(), cfg, log))
		},
	}
	cmd.Flags().IntVar(&width, "width", 0, "window width in pixels")
	cmd.Flags().IntVar(&height, "height", 0, "window height in pixels")
	return cmd
}

// snapshotOptions controls a headless render.
type snapshotOptions struct {
	frames      int
	every       int
	pointer     string
	transparent bool
}

func newSnapshotCmd(flags *rootFlags) *cobra.Command {
	var (
		width, height int
		opts          snapshotOptions
	)
	cmd := &cobra.Command{
		Use:   "snapshot <out.png|out.gif>",
		Short: "Render frames headlessly to a PNG or animated GIF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(flags, width, height, true)
			if err != nil {
				return err
			}
			defer logger.Sync(log)
			if err := snapshot(cfg, log, args[0], opts); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().IntVar(&width, "width", 0, "image width in pixels")
	cmd.Flags().IntVar(&height, "height", 0, "image height in pixels")
	cmd.Flags().IntVarP(&opts.frames, "frames", "n", 120, "number of frames to run")
	cmd.Flags().IntVar(&opts.every, "every", 2, "keep every n-th frame in a GIF")
	cmd.Flags().StringVar(&opts.pointer, "pointer", "", "fixed pointer position as fractions of the surface, e.g. 0.75,0.5")
	cmd.Flags().BoolVar(&opts.transparent, "transparent", false, "leave the PNG background transparent")
	return cmd
}

// snapshot runs the orb on a headless stage and writes the result to out.
func snapshot(cfg *config.Config, log *zap.Logger, out string, opts snapshotOptions) error {
	if opts.frames <= 0 {
		return fmt.Errorf("frames must be positive, got %d", opts.frames)
	}
	if opts.every <= 0 {
		opts.every = 1
	}
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
	r := orb.Mount(st, fb, theme.NewSignal(cfg.Theme.Dark), params, log)
	defer r.Unmount()

	if opts.pointer != "" {
		var fx, fy float64
		if _, err := fmt.Sscanf(opts.pointer, "%g,%g", &fx, &fy); err != nil {
			return fmt.Errorf("parse pointer %q: %w", opts.pointer, err)
		}
		st.MovePointer(fx*float64(w), fy*float64(h))
	}

	isGIF := strings.EqualFold(filepath.Ext(out), ".gif")
	var anim *gif.GIF
	if isGIF {
		anim = &gif.GIF{}
		pal := gifPalette(bg, params)
		// GIF delays are in hundredths of a second.
		step := time.Duration(opts.every) * st.Interval()
		delay := max(int(math.Round(step.Seconds()*100)), 1)
		frame := 0
		st.SetPresenter(func(time.Time) {
			frame++
			if frame%opts.every != 0 {
				return
			}
			anim.Image = append(anim.Image, quantize(fb, pal))
			anim.Delay = append(anim.Delay, delay)
		})
	}

	start := time.Now()
	st.RunFrames(start, opts.frames)
	log.Debug("snapshot rendered",
		zap.Int("frames", opts.frames),
		zap.Uint64("drawn", r.Drawn()),
		zap.Duration("took", time.Since(start)),
	)

	if isGIF {
		if len(anim.Image) == 0 {
			return fmt.Errorf("no frames captured (frames %d, every %d)", opts.frames, opts.every)
		}
		return saveGIF(out, anim)
	}
	if err := fb.SavePNG(out, opts.transparent); err != nil {
		return fmt.Errorf("save png: %w", err)
	}
	return nil
}

// gifPalette spans the background to every colour the orb can draw with, so
// strokes and glow quantize without dithering noise.
func gifPalette(bg color.RGBA, params orb.Params) color.Palette {
	base, _ := colorful.MakeColor(bg)
	targets := []colorful.Color{params.Dark.Line, params.Light.Line, params.Dark.Glow, params.Light.Glow}
	steps := 256 / len(targets)

	pal := make(color.Palette, 0, 256)
	for _, target := range targets {
		for i := range steps {
			c := base.BlendRgb(target, float64(i)/float64(steps-1))
			r, g, b := c.Clamped().RGB255()
			pal = append(pal, color.RGBA{R: r, G: g, B: b, A: 255})
		}
	}
	return pal
}

func newExportCmd(flags *rootFlags) *cobra.Command {
	var (
		radius float64
		frames int
	)
	cmd := &cobra.Command{
		Use:   "export <out.glb|out.gltf>",
		Short: "Write the orb wire mesh as glTF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(flags, 0, 0, true)
			if err != nil {
				return err
			}
			defer logger.Sync(log)

			params, err := cfg.Params()
			if err != nil {
				return err
			}
			var rot orb.Rotation
			for range frames {
				rot = rot.Advance(orb.PointerOffset{}, params)
			}

			mesh := models.OrbMesh(params.Topology, radius, rot)
			if err := models.SaveGLTF(mesh, args[0]); err != nil {
				return err
			}
			log.Debug("mesh exported",
				zap.String("path", args[0]),
				zap.Int("vertices", mesh.VertexCount()),
				zap.Int("lines", mesh.LineCount()),
				zap.Float64s("center", vec3Fields(mesh.Center())),
				zap.Float64("extent", mesh.Size().Len()),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d vertices, %d lines)\n", args[0], mesh.VertexCount(), mesh.LineCount())
			return nil
		},
	}
	cmd.Flags().Float64Var(&radius, "radius", 1, "sphere radius in model units")
	cmd.Flags().IntVarP(&frames, "frames", "n", 0, "pre-rotate by this many frames of drift")
	return cmd
}

func vec3Fields(v math3d.Vec3) []float64 {
	return []float64{v.X, v.Y, v.Z}
}
