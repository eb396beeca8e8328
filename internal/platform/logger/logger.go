// Package logger wraps zerolog with process-wide defaults and
// request-scoped child loggers
package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"gavel/internal/platform/config/raw"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// Options configures the root logger
type Options struct {
	Level      string
	Format     string // "console" or "json"
	Service    string
	WithCaller bool
	Writer     io.Writer
}

// FromEnv reads LOG_* via the logging-free raw reader (no cycles)
func FromEnv() Options {
	rc := raw.New().Prefix("LOG_")
	return Options{
		Level:      strings.ToLower(rc.Get("LEVEL", "debug")),
		Format:     strings.ToLower(rc.Get("FORMAT", "console")),
		Service:    rc.Get("SERVICE", ""),
		WithCaller: rc.GetBool("CALLER", false),
	}
}

// Logger is the project logging type; today an alias for zerolog.Logger
type Logger = zerolog.Logger

var (
	once   sync.Once
	root   atomic.Pointer[zerolog.Logger]
	inited atomic.Bool
)

// Get returns the process root logger, initializing from env on first use
func Get() *Logger {
	if !inited.Load() {
		Init(FromEnv())
	}
	return root.Load()
}

// Init builds the root logger; subsequent calls are no-ops
func Init(opt Options) {
	once.Do(func() {
		zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
		zerolog.TimeFieldFormat = time.RFC3339Nano

		var w io.Writer = os.Stdout
		if opt.Writer != nil {
			w = opt.Writer
		}
		if opt.Format == "console" {
			w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
		}

		builder := zerolog.New(w).Level(parseLevel(opt.Level)).With().Timestamp()
		if opt.Service != "" {
			builder = builder.Str("service", opt.Service)
		}
		log := builder.Logger()
		if opt.WithCaller {
			log = log.With().Caller().Logger()
		}

		root.Store(&log)
		inited.Store(true)
	})
}

func parseLevel(s string) zerolog.Level {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "panic":
		return zerolog.PanicLevel
	default:
		return zerolog.DebugLevel
	}
}

type ctxKey struct{ name string }

var keyRequestID = ctxKey{"request_id"}

// WithRequest stashes the request id for C to pick up
func WithRequest(ctx context.Context, reqID string) context.Context {
	if reqID == "" {
		return ctx
	}
	return context.WithValue(ctx, keyRequestID, reqID)
}

// C returns a child logger enriched with request-scoped fields from ctx
func C(ctx context.Context) *Logger {
	builder := Get().With()
	if v, ok := ctx.Value(keyRequestID).(string); ok && v != "" {
		builder = builder.Str("request_id", v)
	}
	ll := builder.Logger()
	return &ll
}

// Named returns a child logger tagged with a component field
func Named(component string) *Logger {
	if component == "" {
		return Get()
	}
	ll := Get().With().Str("component", component).Logger()
	return &ll
}
