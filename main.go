package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"go.uber.org/zap"

	"github.com/km-arc/go-ioc/framework/app"
	"github.com/km-arc/go-ioc/framework/config"
	"github.com/km-arc/go-ioc/framework/container"
	gohttp "github.com/km-arc/go-ioc/framework/http"
	"github.com/km-arc/go-ioc/framework/routing"
)

// ── Demo services ─────────────────────────────────────────────────────────────

// Greeter is resolved by type: any parameter of type Greeter gets the
// "Greeter" binding.
type Greeter interface {
	Greet(name string) string
}

type politeGreeter struct{ salutation string }

func (g *politeGreeter) Greet(name string) string { return g.salutation + ", " + name + "!" }

// Visits counts greetings. It is auto-constructed from the type catalog.
type Visits struct{ n atomic.Int64 }

// GreetingService depends on Greeter, Visits and the logger, all by type.
type GreetingService struct {
	greeter Greeter
	visits  *Visits
	logger  *zap.Logger
}

func NewGreetingService(g Greeter, v *Visits, logger *zap.Logger) *GreetingService {
	return &GreetingService{greeter: g, visits: v, logger: logger}
}

func (s *GreetingService) Greet(name string) string {
	n := s.visits.n.Add(1)
	s.logger.Debug("greeting", zap.String("name", name), zap.Int64("visits", n))
	return s.greeter.Greet(name)
}

// ── Demo provider ─────────────────────────────────────────────────────────────

type GreetingServiceProvider struct{ container.BaseProvider }

func (p *GreetingServiceProvider) Register(c *container.Container) {
	c.Instance("salutation", "Hello")
	c.Set("debug", func(cfg *config.Config) bool { return cfg.App.Debug })
	c.Set("Greeter", container.Func(
		func(salutation string) Greeter { return &politeGreeter{salutation: salutation} },
		container.Names("salutation"),
	))
	container.DefineType[Visits](c, "Visits")
	c.DefineConstructor("GreetingService", NewGreetingService)

	// every fresh Greeter shouts in debug mode; "debug" is resolved by name
	c.OnInstance("Greeter", container.Func(func(g Greeter, debug bool) Greeter {
		if !debug {
			return nil
		}
		return shouting{g}
	}, container.Names("", "debug"), container.Default("debug", false)))
}

func (p *GreetingServiceProvider) Boot(c *container.Container) {
	router := container.MustResolve[*routing.Router](c, "router")
	svc := container.MustResolve[*GreetingService](c, "GreetingService")

	router.Get("/greet/{name}", func(w http.ResponseWriter, req *http.Request) {
		gohttp.NewResponse(w).Success(map[string]any{
			"message": svc.Greet(routing.Param(req, "name")),
		})
	})
}

type shouting struct{ Greeter }

func (s shouting) Greet(name string) string { return s.Greeter.Greet(name) + "!!" }

func main() {
	application := app.New(nil) // loads .env automatically
	application.Register(&GreetingServiceProvider{})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
