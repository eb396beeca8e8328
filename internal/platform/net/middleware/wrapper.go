// Package middleware holds thin adapters over chi middleware plus a few
// in-house middlewares, without leaking chi types to callers
package middleware

import (
	"net/http"
	"time"

	pstrings "gavel/internal/platform/strings"

	chimw "github.com/go-chi/chi/v5/middleware"
	chicors "github.com/go-chi/cors"
)

// RequestID attaches or propagates X-Request-ID and stores it on context
func RequestID() func(http.Handler) http.Handler { return chimw.RequestID }

// RealIP sets RemoteAddr from X-Forwarded-For style headers
func RealIP() func(http.Handler) http.Handler { return chimw.RealIP }

// Timeout cancels the request context after d
func Timeout(d time.Duration) func(http.Handler) http.Handler { return chimw.Timeout(d) }

// NoCache disables client and proxy caching
func NoCache() func(http.Handler) http.Handler { return chimw.NoCache }

// Heartbeat answers 200 OK on GET path for load balancer checks
func Heartbeat(path string) func(http.Handler) http.Handler { return chimw.Heartbeat(path) }

// RedirectSlashes redirects /foo/ to /foo
func RedirectSlashes() func(http.Handler) http.Handler { return chimw.RedirectSlashes }

// StripSlashes strips a trailing slash from the request path
func StripSlashes() func(http.Handler) http.Handler { return chimw.StripSlashes }

// Compress enables response compression at the given level
func Compress(level int) func(http.Handler) http.Handler { return chimw.Compress(level) }

// CORSOptions is a narrow surface over go-chi/cors
type CORSOptions struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// CORS wraps go-chi/cors with defaults suited to a JSON API
func CORS(o CORSOptions) func(http.Handler) http.Handler {
	return chicors.Handler(chicors.Options{
		AllowedOrigins: pstrings.IfEmpty(o.AllowedOrigins, []string{"*"}),
		AllowedMethods: pstrings.IfEmpty(o.AllowedMethods, []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
		AllowedHeaders: pstrings.IfEmpty(o.AllowedHeaders, []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-Request-ID",
		}),
		ExposedHeaders:   o.ExposedHeaders,
		AllowCredentials: o.AllowCredentials,
		MaxAge:           o.MaxAge,
	})
}
