// Command ls-orrery animates a stylized solar system in the terminal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/litescript/ls-orrery/internal/config"
	"github.com/litescript/ls-orrery/internal/system"
	"github.com/litescript/ls-orrery/internal/version"
)

const appName = "ls-orrery"

// options holds flags that select a run mode rather than a setting.
type options struct {
	configPath  string
	snapshot    string
	frames      int
	width       int
	height      int
	headless    bool
	skipInvalid bool
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := config.New()
	opts := &options{}

	root := &cobra.Command{
		Use:   appName,
		Short: "Animated stylized solar system for the terminal",
		Long: `ls-orrery draws a stylized, animated solar system: a glowing sun,
planets on tilted elliptical orbits with fading trails, moons, rings,
an asteroid belt and a twinkling starfield.

Without flags it runs an interactive terminal UI. --snapshot renders a
PNG after a number of frames; --headless prints frames to stdout.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v, opts.configPath)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, *opts)
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&opts.configPath, "config", "", "config file (default: ./orrery.yaml or ~/.config/ls-orrery/orrery.yaml)")
	f.String("log-level", "info", "log level (debug, info, warn, error)")
	f.String("log-file", "", "append logs to this file")
	f.Int64("seed", 0, "random seed (0 picks one from the clock)")
	f.Int("fps", config.DefaultConfig().Animation.FPS, "frames per second")
	f.Float64("time-scale", 1, "simulation speed multiplier")
	f.String("metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")
	bindFlags(v, root, map[string]string{
		"log-level":    "log.level",
		"log-file":     "log.file",
		"seed":         "animation.seed",
		"fps":          "animation.fps",
		"time-scale":   "animation.time_scale",
		"metrics-addr": "metrics.addr",
	})

	lf := root.Flags()
	lf.StringVar(&opts.snapshot, "snapshot", "", "render to a PNG file and exit")
	lf.IntVar(&opts.frames, "frames", 0, "frames to simulate (snapshot default 1, headless default unlimited)")
	lf.IntVar(&opts.width, "width", 0, "surface width in pixels (default: terminal width, or 800 for snapshots)")
	lf.IntVar(&opts.height, "height", 0, "surface height in pixels (default: terminal height, or 600 for snapshots)")
	lf.BoolVar(&opts.headless, "headless", false, "print frames to stdout instead of running the TUI")
	lf.BoolVar(&opts.skipInvalid, "skip-invalid", false, "drop invalid planets instead of failing")

	root.AddCommand(newConfigCmd(v, opts))
	return root
}

func newConfigCmd(v *viper.Viper, opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Long: `Print the configuration that results from the defaults, the config
file, ORRERY_* environment variables and flags. The output is a valid
config file and can be used as a starting point for customization.

The body descriptors are checked as well; invalid bodies are reported
after the YAML and the command exits non-zero.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v, opts.configPath)
			if err != nil {
				return err
			}
			if err := config.Write(cmd.OutOrStdout(), cfg); err != nil {
				return err
			}
			if err := system.Validate(cfg.Bodies); err != nil {
				return fmt.Errorf("invalid bodies: %w", err)
			}
			return nil
		},
	}
}

// bindFlags maps persistent flags onto config keys.
func bindFlags(v *viper.Viper, cmd *cobra.Command, keys map[string]string) {
	for flag, key := range keys {
		if err := v.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", flag, err))
		}
	}
}
