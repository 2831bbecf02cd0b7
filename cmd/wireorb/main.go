// wireorb - rotating wireframe orb
// Draws a slowly spinning wireframe sphere that leans toward the pointer, in
// the terminal, in a desktop window, or into image and glTF files.
//
// Controls (run and window):
//
//	Mouse  - Lean the orb toward the pointer
//	T      - Toggle dark/light theme
//	?      - Toggle HUD overlay (terminal only)
//	Q/Esc  - Quit
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/taigrr/wireorb/internal/config"
	"github.com/taigrr/wireorb/internal/logger"
)

// rootFlags are the persistent flags shared by every subcommand.
type rootFlags struct {
	configPath string
	debug      bool
	dark       bool
	light      bool
	fps        int
	logFile    string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := fang.Execute(ctx, newRootCmd()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var flags rootFlags

	root := &cobra.Command{
		Use:   "wireorb",
		Short: "Rotating wireframe orb for the terminal, a window, or image files",
		Long: "wireorb draws a wireframe sphere that drifts on its own and leans toward the pointer.\n" +
			"Without a subcommand it runs in the terminal.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTerminalCmd(cmd.Context(), &flags)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "path to config file (default ./"+config.FileName+" or the user config dir)")
	pf.BoolVar(&flags.debug, "debug", false, "enable debug logging")
	pf.BoolVar(&flags.dark, "dark", false, "start with the dark theme")
	pf.BoolVar(&flags.light, "light", false, "start with the light theme")
	pf.IntVar(&flags.fps, "fps", 0, "target frames per second")
	pf.StringVar(&flags.logFile, "log-file", "", "write logs to this file (rotated)")
	root.MarkFlagsMutuallyExclusive("dark", "light")

	root.AddCommand(
		newRunCmd(&flags),
		newWindowCmd(&flags),
		newSnapshotCmd(&flags),
		newExportCmd(&flags),
		newConfigCmd(&flags),
	)
	return root
}

func newRunCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Render the orb in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTerminalCmd(cmd.Context(), flags)
		},
	}
}

// overrides turns the persistent flags into config overrides. size is only
// set by commands that take --width/--height.
func (f *rootFlags) overrides(width, height int) config.Overrides {
	ov := config.Overrides{
		ConfigPath: f.configPath,
		Debug:      f.debug,
		FPS:        f.fps,
		Width:      width,
		Height:     height,
		LogFile:    f.logFile,
	}
	switch {
	case f.dark:
		ov.Dark = &f.dark
	case f.light:
		dark := false
		ov.Dark = &dark
	}
	return ov
}

// setup loads the config and builds the logger. console selects whether log
// entries also go to stderr.
func setup(flags *rootFlags, width, height int, console bool) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(flags.overrides(width, height))
	if err != nil {
		return nil, nil, err
	}

	opts := logger.Options{Level: cfg.Logging.Level}
	if cfg.Logging.LogFile != "" {
		opts.File = logger.DefaultFileConfig(cfg.Logging.LogFile)
	}
	if console {
		opts.Console = os.Stderr
	}
	log := logger.New(opts)
	log.Debug("config loaded",
		zap.Int("fps", cfg.Display.FPS),
		zap.Bool("dark", cfg.Theme.Dark),
		zap.String("log_file", cfg.Logging.LogFile),
	)
	return cfg, log, nil
}

// ignoreCancel treats a cancelled context as a clean exit.
func ignoreCancel(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func newConfigCmd(flags *rootFlags) *cobra.Command {
	var write string
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(flags.overrides(0, 0))
			if err != nil {
				return err
			}
			if write != "" {
				if err := cfg.SaveTo(write); err != nil {
					return fmt.Errorf("write config: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", write)
				return nil
			}
			data, err := cfg.Marshal()
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().StringVarP(&write, "write", "w", "", "save the configuration to this path instead of printing it")
	return cmd
}
