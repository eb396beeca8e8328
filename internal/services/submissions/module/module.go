// Package module wires the submissions service into the API
package module

import (
	stdhttp "net/http"

	"gavel/internal/modkit"
	"gavel/internal/modkit/httpkit"
	"gavel/internal/services/auth/guard"
	"gavel/internal/services/submissions/domain"
	subhttp "gavel/internal/services/submissions/http"
	"gavel/internal/services/submissions/repo"
	"gavel/internal/services/submissions/service"
)

// Ports exposed by the submissions module
type Ports struct {
	Submissions domain.SubmissionsPort
}

// Module implements the submissions service module
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string
	mws    []func(stdhttp.Handler) stdhttp.Handler
	ports  Ports
	guard  *guard.Middleware
}

// New constructs the submissions module
func New(deps modkit.Deps, g *guard.Middleware, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("submissions"),
		modkit.WithPrefix("/submissions"),
	}, opts...)...)

	svc := service.New(deps.PG, repo.NewPG())

	return &Module{
		deps:   deps,
		name:   b.Name,
		prefix: b.Prefix,
		mws:    b.Mw,
		ports:  Ports{Submissions: svc},
		guard:  g,
	}
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return m.name }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.prefix, func(rr httpkit.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		subhttp.Register(rr, m.ports.Submissions, m.guard)
	})
}
