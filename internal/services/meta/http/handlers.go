// Package http provides meta endpoints
package http

import (
	stdctx "context"
	"net/http"
	"time"

	"gavel/internal/core/version"
	"gavel/internal/modkit/httpkit"
)

// Pinger is satisfied by adapters that expose Ping
type Pinger interface {
	Ping(stdctx.Context) error
}

// Deps are the handler dependencies
type Deps struct {
	ServiceName string
	StartedAt   time.Time
	PG          any
	CH          any
}

type handlers struct {
	deps Deps
}

// Register mounts the meta routes
func Register(r httpkit.Router, d Deps) {
	h := &handlers{deps: d}

	httpkit.Get(r, "/health", h.health)
	httpkit.Get(r, "/ready", h.ready)
	httpkit.Get(r, "/version", h.version)
}

// HealthResponse is the health payload
type HealthResponse struct {
	OK      bool   `json:"ok"      example:"true"`
	Service string `json:"service" example:"gavel-api"`
	Started string `json:"started" example:"2026-08-01T13:00:00Z"`
	Now     string `json:"now"     example:"2026-08-01T13:05:00Z"`
}

// ReadyCheck describes a single dependency check
type ReadyCheck struct {
	Name   string `json:"name"   example:"pg"`
	Status string `json:"status" example:"ok"` // ok fail skipped
	Error  string `json:"error,omitempty"`
}

// ReadyResponse summarizes readiness
type ReadyResponse struct {
	Status string       `json:"status" example:"ok"` // ok degraded
	Checks []ReadyCheck `json:"checks"`
	Now    string       `json:"now"`
}

// @Summary Health check
// @Tags Meta
// @Produce json
// @Success 200 {object} HealthResponse "ok"
// @Router /meta/health [get]
func (h *handlers) health(_ *http.Request) (any, error) {
	return HealthResponse{
		OK:      true,
		Service: h.deps.ServiceName,
		Started: h.deps.StartedAt.UTC().Format(time.RFC3339),
		Now:     time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// @Summary Readiness probe with dependency checks
// @Tags Meta
// @Produce json
// @Success 200 {object} ReadyResponse "ok"
// @Router /meta/ready [get]
func (h *handlers) ready(r *http.Request) (any, error) {
	ctx, cancel := stdctx.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	check := func(name string, c any) ReadyCheck {
		if c == nil {
			return ReadyCheck{Name: name, Status: "skipped"}
		}
		p, ok := c.(Pinger)
		if !ok {
			return ReadyCheck{Name: name, Status: "skipped"}
		}
		if err := p.Ping(ctx); err != nil {
			return ReadyCheck{Name: name, Status: "fail", Error: err.Error()}
		}
		return ReadyCheck{Name: name, Status: "ok"}
	}

	checks := []ReadyCheck{
		check("pg", h.deps.PG),
		check("ch", h.deps.CH),
	}
	status := "ok"
	for _, c := range checks {
		if c.Status == "fail" {
			status = "degraded"
		}
	}
	return ReadyResponse{
		Status: status,
		Checks: checks,
		Now:    time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// @Summary Build version
// @Tags Meta
// @Produce json
// @Success 200 {object} version.BuildInfo "ok"
// @Router /meta/version [get]
func (h *handlers) version(_ *http.Request) (any, error) {
	return version.Info(), nil
}
