// Package module wires meta endpoints into the API
package module

import (
	stdhttp "net/http"
	"time"

	"gavel/internal/modkit"
	"gavel/internal/modkit/httpkit"
	metahttp "gavel/internal/services/meta/http"
)

// Module implements the meta service module. Every route is public:
// the guard allows empty requirements without a principal
type Module struct {
	deps      modkit.Deps
	name      string
	prefix    string
	mws       []func(stdhttp.Handler) stdhttp.Handler
	startedAt time.Time
}

// New constructs the meta module
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("meta"),
		modkit.WithPrefix("/meta"),
	}, opts...)...)

	return &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		startedAt: time.Now(),
	}
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return m.name }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return nil }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.prefix, func(rr httpkit.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		metahttp.Register(rr, metahttp.Deps{
			ServiceName: "gavel-api",
			StartedAt:   m.startedAt,
			PG:          m.deps.PG,
			CH:          m.deps.CH,
		})
	})
}
