package providers

import (
	"go.uber.org/zap"

	"github.com/km-arc/go-ioc/framework/config"
	"github.com/km-arc/go-ioc/framework/container"
	"github.com/km-arc/go-ioc/framework/inspect"
	"github.com/km-arc/go-ioc/framework/logging"
	"github.com/km-arc/go-ioc/framework/metrics"
	"github.com/km-arc/go-ioc/framework/routing"
)

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider binds the application configuration as "config".
//
// Bound ids:
//   - "config" → *config.Config
//
// A pre-loaded Config wins; otherwise File (YAML) is read when set, else
// .env files and the environment.
type ConfigServiceProvider struct {
	container.BaseProvider
	Config   *config.Config
	File     string
	EnvFiles []string
}

func (p *ConfigServiceProvider) Register(app *container.Container) {
	if p.Config != nil {
		app.Instance("config", p.Config)
		return
	}
	file, envFiles := p.File, p.EnvFiles
	app.Set("config", func() (*config.Config, error) {
		if file != "" {
			return config.LoadFile(file, envFiles...)
		}
		return config.Load(envFiles...), nil
	})
}

// ── LoggingServiceProvider ────────────────────────────────────────────────────

// LoggingServiceProvider builds the zap logger from the "log" config section
// and, once booted, routes the container's own events through it.
//
// Bound ids:
//   - "logger" → *zap.Logger
type LoggingServiceProvider struct {
	container.BaseProvider
}

func (p *LoggingServiceProvider) Register(app *container.Container) {
	app.Set("logger", func(cfg *config.Config) (*zap.Logger, error) {
		return logging.New(cfg.Log)
	})
}

func (p *LoggingServiceProvider) Boot(app *container.Container) {
	app.SetLogger(container.MustResolve[*zap.Logger](app, "logger"))
}

// ── MetricsServiceProvider ────────────────────────────────────────────────────

// MetricsServiceProvider is deferred: the Prometheus collector is built, and
// installed as the container's observer, the first time "metrics" is resolved.
//
// Bound ids:
//   - "metrics" → *metrics.Collector
type MetricsServiceProvider struct {
	container.BaseProvider
}

func (p *MetricsServiceProvider) IsDeferred() bool   { return true }
func (p *MetricsServiceProvider) Provides() []string { return []string{"metrics"} }

func (p *MetricsServiceProvider) Register(app *container.Container) {
	app.Set("metrics", func(cfg *config.Config) *metrics.Collector {
		return metrics.NewCollector(cfg.Container.MetricsNamespace)
	})
	app.OnInstance("metrics", func(col *metrics.Collector, c *container.Container, logger *zap.Logger) {
		c.SetObserver(col)
		logger.Debug("container metrics enabled")
	})
}

// ── RoutingServiceProvider ────────────────────────────────────────────────────

// RoutingServiceProvider registers the HTTP router with the container
// inspection routes and, when "metrics" is available, GET /metrics.
//
// Bound ids:
//   - "router" → *routing.Router
type RoutingServiceProvider struct {
	container.BaseProvider
}

func (p *RoutingServiceProvider) Register(app *container.Container) {
	app.Set("router", container.Func(newRouter,
		container.Names("config", "logger", "container", "metrics"),
		container.Optional("metrics"),
	))
}

func newRouter(cfg *config.Config, logger *zap.Logger, c *container.Container, col *metrics.Collector) *routing.Router {
	r := routing.New(logger)
	if col != nil {
		r.Handle("/metrics", col.Handler())
	}
	if prefix := cfg.Container.InspectPrefix; prefix != "" {
		inspect.Mount(r, prefix, c)
	}
	return r
}
