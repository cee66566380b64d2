// Package inspect exposes a read-only JSON view of a container's bindings.
//
//	inspect.Mount(router, "/_container", c)
//
//	GET /_container/bindings       → {"data": [{"id": ..., "shared": ..., "resolved": ...}]}
//	GET /_container/bindings/{id}  → {"data": {"id": ..., "has": ..., "shared": ..., "resolved": ...}}
package inspect

import (
	"net/http"

	"github.com/km-arc/go-ioc/framework/container"
	gohttp "github.com/km-arc/go-ioc/framework/http"
	"github.com/km-arc/go-ioc/framework/routing"
)

// Binding describes one container id.
type Binding struct {
	ID       string `json:"id"`
	Has      bool   `json:"has"`
	Shared   bool   `json:"shared"`
	Resolved bool   `json:"resolved"`
}

// Mount registers the inspection routes on r under prefix.
func Mount(r *routing.Router, prefix string, c *container.Container) {
	r.Prefix(prefix, func(g *routing.Router) {
		g.Get("/bindings", List(c))
		g.Get("/bindings/{id}", Show(c))
	})
}

// List serves every explicit binding.
func List(c *container.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		ids := c.Bindings()
		out := make([]Binding, 0, len(ids))
		for _, id := range ids {
			out = append(out, describe(c, id))
		}
		gohttp.NewResponse(w).Success(out)
	}
}

// Show serves one id, or 404 when the container cannot produce it.
// Inspection never triggers a resolution.
func Show(c *container.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		res := gohttp.NewResponse(w)
		id := routing.Param(req, "id")
		b := describe(c, id)
		if !b.Has {
			res.NotFound("No binding for [" + id + "].")
			return
		}
		res.Success(b)
	}
}

func describe(c *container.Container, id string) Binding {
	return Binding{
		ID:       id,
		Has:      c.Has(id),
		Shared:   c.Shared(id),
		Resolved: c.Resolved(id),
	}
}
