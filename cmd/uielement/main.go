package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/uielement/internal/config"
	"github.com/vango-dev/uielement/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ┬ ┬┬┌─┐┬  ┌─┐┌┬┐┌─┐┌┐┌┌┬┐
  │ ││├┤ │  ├┤ │││├┤ │││ │
  └─┘┴└─┘┴─┘└─┘┴ ┴└─┘┘└┘ ┴
`

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.Fprint(os.Stderr, err)
		os.Exit(1)
	}
}

// globalFlags are the persistent flags shared by all commands.
type globalFlags struct {
	config   string
	logLevel string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "uielement",
		Short: "Reactive custom elements, rendered in Go",
		Long: `uielement upgrades the custom elements of an HTML page with reactive
components and renders the result on the server.

  • Signals, computeds and effects with glitch-free batching
  • Components bound to custom elements and their attributes
  • One-shot rendering with scripted events
  • A live server that keeps a document per browser tab`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&flags.config, "config", "c", "", "config file or directory (default: ./uielement.json)")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(
		renderCmd(flags),
		checkCmd(flags),
		serveCmd(flags),
		initCmd(),
		versionCmd(),
	)

	return rootCmd
}

// loadConfig reads the configuration named by --config, or the one in the
// working directory, falling back to defaults.
func loadConfig(flags *globalFlags) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	switch {
	case flags.config != "":
		if info, statErr := os.Stat(flags.config); statErr == nil && info.IsDir() {
			cfg, err = config.Load(flags.config)
		} else {
			cfg, err = config.LoadFile(flags.config)
		}
	case config.Find(".") != "":
		cfg, err = config.Load(".")
	default:
		cfg = config.New()
	}
	if err != nil {
		return nil, err
	}

	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the process logger from the log configuration.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	level, err := cfg.LogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// printBanner prints the ASCII art banner.
func printBanner(w io.Writer) {
	fmt.Fprint(w, banner)
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}
