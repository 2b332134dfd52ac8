package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/uielement/internal/app"
)

func serveCmd(flags *globalFlags) *cobra.Command {
	var (
		port    int
		host    string
		metrics bool
	)

	cmd := &cobra.Command{
		Use:   "serve [page]",
		Short: "Serve a page with live sessions",
		Long: `Serve renders the page on every request and keeps a live document per
browser tab. Clicks and input in the browser are replayed on the server
document and the body is sent back after each change.

Routes:
  /          the page with the live client
  /render    one-shot render, ?event=selector=type
  /live      WebSocket endpoint
  /metrics   Prometheus metrics (with --metrics)
  /healthz   liveness

Examples:
  uielement serve
  uielement serve index.html --port 8080 --metrics`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if err := pageArg(cfg, args); err != nil {
				return err
			}
			if port != 0 {
				cfg.Serve.Port = port
			}
			if host != "" {
				cfg.Serve.Host = host
			}
			if metrics {
				cfg.Metrics.Enabled = true
			}

			a, err := app.New(app.Options{Config: cfg, Logger: newLogger(cfg, cmd.ErrOrStderr())})
			if err != nil {
				return err
			}
			defer a.Close()

			w := cmd.OutOrStdout()
			printBanner(w)
			success(w, "Serving %s", cfg.PagePath())
			info(w, "Local:   http://%s", cfg.Address())
			if cfg.Metrics.Enabled {
				info(w, "Metrics: http://%s/metrics", cfg.Address())
			}
			info(w, "Press Ctrl+C to stop")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.Serve(ctx)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (default: from config or 3000)")
	cmd.Flags().StringVar(&host, "host", "", "host to bind to (default: from config or localhost)")
	cmd.Flags().BoolVar(&metrics, "metrics", false, "serve Prometheus metrics on /metrics")

	return cmd
}
