package app

import (
	"context"
	_ "embed"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/uielement/internal/errors"
	"github.com/vango-dev/uielement/internal/live"
)

//go:embed client.js
var clientScript string

// Handler returns the HTTP routes:
//
//	GET /          the rendered page with the live client
//	GET /render    the rendered body; ?event=selector=type replays events
//	GET /live      live session WebSocket
//	GET /metrics   Prometheus metrics, when enabled
//	GET /healthz   liveness
func (a *App) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(a.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", a.handlePage)
	r.Get("/render", a.handleRender)
	r.Handle("/live", a.live)
	r.Get("/client.js", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
		w.Write([]byte(clientScript))
	})
	if a.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(a.gatherer, promhttp.HandlerOpts{}))
	}
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	})
	return r
}

func (a *App) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		a.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (a *App) handlePage(w http.ResponseWriter, r *http.Request) {
	html, err := a.Render(RenderOptions{Full: true})
	if html == "" {
		a.writeError(w, r, err, http.StatusInternalServerError)
		return
	}
	if err != nil {
		a.logger.Warn("page rendered with errors", "error", err)
	}

	tag := `<script src="/client.js" defer></script>`
	if i := strings.LastIndex(html, "</body>"); i >= 0 {
		html = html[:i] + tag + html[i:]
	} else {
		html += tag
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(html))
}

func (a *App) handleRender(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	var events []live.Message
	for _, s := range query["input"] {
		msg, err := ParseInput(s)
		if err != nil {
			a.writeError(w, r, err, http.StatusBadRequest)
			return
		}
		events = append(events, msg)
	}
	for _, s := range query["event"] {
		msg, err := ParseEvent(s)
		if err != nil {
			a.writeError(w, r, err, http.StatusBadRequest)
			return
		}
		events = append(events, msg)
	}

	html, err := a.Render(RenderOptions{Events: events, Full: query.Get("full") == "1"})
	if err != nil {
		status := http.StatusInternalServerError
		if code, _ := errors.Classify(err); code == "UIE402" {
			status = http.StatusUnprocessableEntity
		}
		if html == "" {
			a.writeError(w, r, err, status)
			return
		}
		a.logger.Warn("page rendered with errors", "error", err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(html))
}

func (a *App) writeError(w http.ResponseWriter, r *http.Request, err error, status int) {
	ue := errors.FromError(err, "UIE442")
	a.logger.Error("request failed",
		"path", r.URL.Path,
		"code", ue.Code,
		"error", err,
		"request_id", middleware.GetReqID(r.Context()),
	)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(ue.FormatJSON()))
}

// Serve listens on the configured address until ctx is done, then shuts down
// gracefully within the configured timeout.
func (a *App) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.config.Address(),
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server starting", "address", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != http.ErrServerClosed {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.ShutdownTimeout())
	defer cancel()

	a.live.CloseAll()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("shutdown error", "error", err)
		return err
	}
	a.logger.Info("server shutdown complete")
	return nil
}
