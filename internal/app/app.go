package app

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/vango-dev/uielement/internal/config"
	"github.com/vango-dev/uielement/internal/demo"
	"github.com/vango-dev/uielement/internal/errors"
	"github.com/vango-dev/uielement/internal/live"
	"github.com/vango-dev/uielement/pkg/dom"
	"github.com/vango-dev/uielement/pkg/instrument"
	"github.com/vango-dev/uielement/pkg/reactive"
	"github.com/vango-dev/uielement/pkg/resource"
)

// loopBuffer is the capacity of the UI loop queue.
const loopBuffer = 256

// Options configures an App.
type Options struct {
	// Config is the loaded configuration. nil uses config.New().
	Config *config.Config

	// Logger is the application logger (default: slog.Default()).
	Logger *slog.Logger

	// Page is the page markup. When empty the page is read from
	// Config.PagePath().
	Page string

	// Register defines the page's components (default: demo.Register).
	Register func(*dom.Registry, *resource.Cache) error
}

// App owns the component registry, the UI event loop and the process-wide
// reactive settings derived from the configuration.
//
// Only one App should be open at a time: New installs the loop as the
// reactive scheduler and Close restores the previous one.
type App struct {
	config   *config.Config
	logger   *slog.Logger
	page     string
	registry *dom.Registry
	cache    *resource.Cache
	loop     *reactive.EventLoop
	live     *live.Manager
	metrics  *instrument.Metrics
	gatherer prometheus.Gatherer

	cancel    context.CancelFunc
	restore   []func()
	closeOnce sync.Once
}

// New creates an App and starts its event loop.
func New(opts Options) (*App, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.New()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	page := opts.Page
	if page == "" {
		path := cfg.PagePath()
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.New("UIE440").WithSubject(path).Wrap(err).
				WithSuggestion("Run 'uielement init' to write a sample page")
		}
		page = string(data)
	}

	register := opts.Register
	if register == nil {
		register = demo.Register
	}

	cacheOpts := []resource.Option{
		resource.WithTimeout(cfg.FetchTimeout()),
		resource.WithLogger(logger),
	}
	if s3cfg := cfg.Fetch.S3; s3cfg.Region != "" {
		cacheOpts = append(cacheOpts, resource.WithS3(resource.NewS3Client(resource.S3Config{
			Region:      s3cfg.Region,
			Endpoint:    s3cfg.Endpoint,
			PathStyle:   s3cfg.PathStyle,
			Credentials: envCredentials(),
		})))
	}

	a := &App{
		config:   cfg,
		logger:   logger,
		page:     page,
		registry: dom.NewRegistry(logger),
		cache:    resource.NewCache(cacheOpts...),
		loop:     reactive.NewEventLoop(loopBuffer, logger),
	}
	if err := register(a.registry, a.cache); err != nil {
		return nil, err
	}

	a.installObservers()

	budget := reactive.SetFlushBudget(cfg.Reactive.MaxEffectRunsPerFlush)
	a.restore = append(a.restore, func() { reactive.SetFlushBudget(budget) })

	scheduler := reactive.SetScheduler(a.loop)
	a.restore = append(a.restore, func() { reactive.SetScheduler(scheduler) })

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	go a.loop.Run(ctx)

	a.live = live.NewManager(a.registry, a.loop, live.Config{
		Page:    page,
		Logger:  logger,
		Metrics: a.metrics,
	})

	return a, nil
}

// envCredentials returns static credentials from the standard AWS
// environment variables, or nil when they are not set.
func envCredentials() aws.CredentialsProvider {
	id, secret := os.Getenv("AWS_ACCESS_KEY_ID"), os.Getenv("AWS_SECRET_ACCESS_KEY")
	if id == "" || secret == "" {
		return nil
	}
	creds := aws.Credentials{
		AccessKeyID:     id,
		SecretAccessKey: secret,
		SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
		Source:          "environment",
	}
	return aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
		return creds, nil
	})
}

func (a *App) installObservers() {
	var observers []reactive.Observer

	if a.config.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		a.metrics = instrument.NewMetrics(
			instrument.WithRegistry(reg),
			instrument.WithNamespace(a.config.Metrics.Namespace),
		)
		a.gatherer = reg
		observers = append(observers, a.metrics)
	}

	if a.config.Tracing.Enabled {
		opts := []instrument.TracingOption{instrument.WithMinDuration(a.config.TracingMinDuration())}
		if name := a.config.Tracing.TracerName; name != "" {
			opts = append(opts, instrument.WithTracerName(name))
		}
		observers = append(observers, instrument.NewTracing(opts...))
	}

	if len(observers) == 0 {
		return
	}
	previous := reactive.SetObserver(instrument.Fanout(observers...))
	a.restore = append(a.restore, func() { reactive.SetObserver(previous) })
}

// Registry returns the component registry.
func (a *App) Registry() *dom.Registry {
	return a.registry
}

// Live returns the live session manager.
func (a *App) Live() *live.Manager {
	return a.live
}

// Metrics returns the metrics reporter, or nil when metrics are disabled.
func (a *App) Metrics() *instrument.Metrics {
	return a.metrics
}

// Close ends all live sessions, stops the loop and restores the reactive
// settings New replaced.
func (a *App) Close() {
	a.closeOnce.Do(func() {
		a.live.CloseAll()
		a.cancel()
		<-a.loop.Done()
		for i := len(a.restore) - 1; i >= 0; i-- {
			a.restore[i]()
		}
	})
}

// do runs fn on the loop and converts a panic into an error.
func (a *App) do(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
			} else {
				err = errors.Newf(errors.CategoryRuntime, "panic: %v", r)
			}
		}
	}()
	var fnErr error
	if err := a.loop.Do(func() { fnErr = fn() }); err != nil {
		return err
	}
	return fnErr
}
