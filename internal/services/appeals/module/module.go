// Package module wires the appeals service into the API
package module

import (
	stdhttp "net/http"

	"gavel/internal/modkit"
	"gavel/internal/modkit/httpkit"
	"gavel/internal/services/appeals/domain"
	appealhttp "gavel/internal/services/appeals/http"
	"gavel/internal/services/appeals/policy"
	"gavel/internal/services/appeals/repo"
	"gavel/internal/services/appeals/service"
	"gavel/internal/services/auth/guard"
	subdom "gavel/internal/services/submissions/domain"
)

// Ports exposed by the appeals module
type Ports struct {
	Appeals domain.AppealsPort
}

// Wiring carries the cross-module dependencies the appeals service
// consumes
type Wiring struct {
	Guard       *guard.Middleware
	Policy      *policy.Policy
	Submissions subdom.SubmissionsPort
}

// Module implements the appeals service module
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string
	mws    []func(stdhttp.Handler) stdhttp.Handler
	ports  Ports
	wiring Wiring
}

// New constructs the appeals module
func New(deps modkit.Deps, w Wiring, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("appeals"),
		modkit.WithPrefix("/appeals"),
	}, opts...)...)

	svc := service.New(
		deps.PG,
		repo.NewPG(),
		w.Policy,
		w.Submissions,
		service.Config{MaxPageSize: 100},
		deps.Log,
	)

	return &Module{
		deps:   deps,
		name:   b.Name,
		prefix: b.Prefix,
		mws:    b.Mw,
		ports:  Ports{Appeals: svc},
		wiring: w,
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
		appealhttp.Register(rr, m.ports.Appeals, m.wiring.Guard)
	})
}
