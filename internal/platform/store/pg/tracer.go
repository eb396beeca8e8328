package pg

import (
	"context"

	"gavel/internal/platform/logger"

	"github.com/rs/zerolog"
)

// QueryEvent describes one executed statement
type QueryEvent struct {
	SQL       string
	Args      any
	ElapsedUS int64
	Err       error
	Slow      bool
}

// QueryTracer receives an event per executed statement
type QueryTracer interface {
	OnQuery(ctx context.Context, ev QueryEvent)
}

// Tracer returns a tracer that prints SQL regardless of the
// process-wide root level
func Tracer(root logger.Logger) QueryTracer {
	ll := root.Level(zerolog.DebugLevel).With().Str("component", "pg").Logger()
	return &logTracer{log: ll}
}

type logTracer struct{ log logger.Logger }

func (t *logTracer) OnQuery(_ context.Context, ev QueryEvent) {
	evt := t.log.Info()
	if ev.Slow {
		evt = t.log.Warn()
	}
	evt.Float64("elapsed_ms", float64(ev.ElapsedUS)/1000.0).
		Bool("slow", ev.Slow).
		Str("sql", compact(ev.SQL)).
		Interface("args", ev.Args).
		Err(ev.Err).
		Msg("pg query")
}

// compact collapses runs of whitespace so multi-line SQL logs on one line
func compact(s string) string {
	out := make([]rune, 0, len(s))
	space := false
	for _, r := range s {
		if r == '\n' || r == '\t' || r == '\r' || r == ' ' {
			if !space {
				out = append(out, ' ')
				space = true
			}
			continue
		}
		space = false
		out = append(out, r)
	}
	return string(out)
}
