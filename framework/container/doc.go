// Package container provides an auto-wiring IoC (Inversion of Control)
// container and Service Provider system for Go.
//
// # Overview
//
// The container turns an id (usually a type name) into a fully built object
// graph. Producers are plain funcs; their parameters are resolved from the
// container by declared type, then by declared name, then from defaults.
// Instances are shared (cached) unless an id is marked NoShare.
//
// Go has no runtime lookup of types by name and drops parameter names, so
// the container keeps a type catalog (Define, DefineConstructor) and takes
// parameter names as options (Names, Default, Optional).
//
// # Container Lifecycle
//
//  1. Create: c := container.New(container.WithLogger(logger))
//  2. Register providers: registry.Register(&MyProvider{})
//  3. Boot: registry.Boot()  (safe to resolve everything after this)
//  4. Serve requests
//
// # Bindings
//
//	// Shared: built once, reused
//	c.Set("Logger", func() Logger { return &stdoutLogger{} })
//
//	// Fresh instance on every Get
//	c.Bind("Request", NewRequest, false)
//
//	// Pre-built value
//	c.Instance("config", cfg)
//
//	// Named parameters and defaults
//	c.Set("mailer", container.Func(NewMailer,
//	    container.Names("host", "port"),
//	    container.Default("port", 587),
//	))
//
//	// Bound and "Type::method" producers
//	c.Set("reports", container.Method(factory, "Reports"))
//	c.Set("clock", container.Static("Clock", "System"))
//
// # Auto-construction
//
//	c.Define("Logger", (*Logger)(nil))         // abstract: names a type
//	c.DefineConstructor("Service", NewService) // func(l Logger) *Service
//	c.Define("Options", Options{})             // struct: zero construction
//
//	svc, err := container.Resolve[*Service](c, "Service")
//
// # Resolution order
//
// For every parameter:
//
//	a. the per-call defaults map, keyed by type id then by name
//	b. Get(type id), when the type is not primitive
//	c. Get(parameter name)
//	d. the declared Default
//	e. the zero value, when Optional or variadic
//	f. *ArgumentResolutionError
//
// Requesting an id that is already being built in the same resolution
// returns *CircularDependencyError.
//
// # Hooks
//
//	c.OnInstance("Logger", func(l Logger) Logger { return &prefixed{Inner: l} })
//
// Hooks run after every fresh production, in registration order; a non-nil
// result replaces the instance. Set with a producer taking the id's own
// type registers a hook too.
//
// # Service Providers
//
//	type AppServiceProvider struct{ container.BaseProvider }
//
//	func (p *AppServiceProvider) Register(app *container.Container) {
//	    app.Set("mailer", func(cfg *config.Config) *mail.SMTP {
//	        return mail.NewSMTP(cfg.Mail)
//	    })
//	}
//
//	registry := container.NewProviderRegistry(c)
//	registry.Register(&AppServiceProvider{})
//	registry.Boot()
//
// # Deferred Providers
//
//	type HeavyProvider struct{ container.BaseProvider }
//
//	func (p *HeavyProvider) IsDeferred() bool   { return true }
//	func (p *HeavyProvider) Provides() []string { return []string{"heavy"} }
//	func (p *HeavyProvider) Register(app *container.Container) {
//	    app.Set("heavy", heavySetup) // only called on first app.Get("heavy")
//	}
package container
