// Package module wires the audit recorder as a routeless module
package module

import (
	"gavel/internal/modkit"
	"gavel/internal/modkit/httpkit"
	"gavel/internal/services/audit/service"
	"gavel/internal/services/auth/guard"
)

// Ports exposed by the audit module
type Ports struct {
	Recorder guard.Recorder
}

// Module implements the audit service module. It exposes the decision
// recorder port and mounts no routes
type Module struct {
	deps     modkit.Deps
	name     string
	ports    Ports
	recorder *service.Recorder
}

// New constructs the audit module
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("audit"),
	}, opts...)...)

	rec := service.New(deps.CH, service.Config{}, deps.Log)

	return &Module{
		deps:     deps,
		name:     b.Name,
		ports:    Ports{Recorder: rec},
		recorder: rec,
	}
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return m.name }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(httpkit.Router) {}

// Close flushes pending events
func (m *Module) Close() { m.recorder.Close() }
