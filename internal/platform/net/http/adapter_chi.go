package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// AdaptChi adapts a *chi.Mux to the Router seam
func AdaptChi(m *chi.Mux) Router { return chiRouter{root: m, r: m} }

// Param returns the named URL parameter from the route context
func Param(r *http.Request, name string) string { return chi.URLParam(r, name) }

// chiRouter wraps any chi.Router; root keeps the top-level mux for Mux()
// on the outermost instance
type chiRouter struct {
	root *chi.Mux
	r    chi.Router
}

func std(h Handler) http.HandlerFunc { return http.HandlerFunc(h) }

func (c chiRouter) Get(p string, h Handler)     { c.r.Method(http.MethodGet, p, std(h)) }
func (c chiRouter) Post(p string, h Handler)    { c.r.Method(http.MethodPost, p, std(h)) }
func (c chiRouter) Put(p string, h Handler)     { c.r.Method(http.MethodPut, p, std(h)) }
func (c chiRouter) Patch(p string, h Handler)   { c.r.Method(http.MethodPatch, p, std(h)) }
func (c chiRouter) Delete(p string, h Handler)  { c.r.Method(http.MethodDelete, p, std(h)) }
func (c chiRouter) Head(p string, h Handler)    { c.r.Method(http.MethodHead, p, std(h)) }
func (c chiRouter) Options(p string, h Handler) { c.r.Method(http.MethodOptions, p, std(h)) }

func (c chiRouter) Handle(p string, h http.Handler)           { c.r.Handle(p, h) }
func (c chiRouter) Use(mw ...func(http.Handler) http.Handler) { c.r.Use(mw...) }

func (c chiRouter) Group(fn func(Router)) {
	c.r.Group(func(sub chi.Router) { fn(chiRouter{root: c.root, r: sub}) })
}

func (c chiRouter) Route(pattern string, fn func(Router)) {
	c.r.Route(pattern, func(sub chi.Router) { fn(chiRouter{root: c.root, r: sub}) })
}

func (c chiRouter) Mux() http.Handler {
	if c.root != nil && chi.Router(c.root) == c.r {
		return c.root
	}
	return c.r
}
