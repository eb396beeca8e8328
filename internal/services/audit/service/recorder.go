// Package service records authorization decisions to clickhouse.
// Recording is loss tolerant: a full buffer drops the event and a
// failed insert is logged, neither ever fails the request
package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"gavel/internal/platform/logger"
	"gavel/internal/platform/store"
	"gavel/internal/services/auth/guard"
)

// table is the clickhouse destination for decision events
const table = "authz_decision"

var columns = []string{
	"at", "allow", "reason", "required_roles", "required_scopes",
	"machine", "user_id", "method", "path", "request_id",
}

// Config for the recorder
type Config struct {
	// Buffer is the channel capacity before events are dropped
	Buffer int

	// FlushEvery bounds how long an event waits before being written
	FlushEvery time.Duration

	// BatchSize flushes early once this many events are pending
	BatchSize int
}

// Recorder implements guard.Recorder over the store CH seam
type Recorder struct {
	ch  store.Clickhouse
	log logger.Logger
	cfg Config

	events chan guard.Event
	done   chan struct{}
	once   sync.Once
}

var _ guard.Recorder = (*Recorder)(nil)

// New starts a Recorder draining into ch. ch may be nil, in which case
// every event is dropped silently
func New(ch store.Clickhouse, cfg Config, log logger.Logger) *Recorder {
	if cfg.Buffer <= 0 {
		cfg.Buffer = 1024
	}
	if cfg.FlushEvery <= 0 {
		cfg.FlushEvery = 2 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 200
	}
	r := &Recorder{
		ch:     ch,
		log:    log.With().Str("component", "audit").Logger(),
		cfg:    cfg,
		events: make(chan guard.Event, cfg.Buffer),
		done:   make(chan struct{}),
	}
	go r.drain()
	return r
}

// Record implements guard.Recorder. Never blocks the request path
func (r *Recorder) Record(_ context.Context, ev guard.Event) {
	select {
	case r.events <- ev:
	default:
		r.log.Warn().Msg("audit buffer full, dropping decision event")
	}
}

// Close flushes pending events and stops the drain loop
func (r *Recorder) Close() {
	r.once.Do(func() {
		close(r.events)
		<-r.done
	})
}

func (r *Recorder) drain() {
	defer close(r.done)

	ticker := time.NewTicker(r.cfg.FlushEvery)
	defer ticker.Stop()

	batch := make([]guard.Event, 0, r.cfg.BatchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		r.write(batch)
		batch = batch[:0]
	}

	for {
		select {
		case ev, ok := <-r.events:
			if !ok {
				flush()
				return
			}
			batch = append(batch, ev)
			if len(batch) >= r.cfg.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

func (r *Recorder) write(batch []guard.Event) {
	if r.ch == nil {
		return
	}

	rows := make([][]any, 0, len(batch))
	for _, ev := range batch {
		allow := uint8(0)
		if ev.Allow {
			allow = 1
		}
		machine := uint8(0)
		if ev.Machine {
			machine = 1
		}
		rows = append(rows, []any{
			ev.At, allow, ev.Reason,
			strings.Join(ev.Roles, ","), strings.Join(ev.Scopes, ","),
			machine, ev.UserID, ev.Method, ev.Path, ev.RequestID,
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := r.ch.Insert(ctx, table, columns, rows); err != nil {
		r.log.Error().Err(err).Int("events", len(rows)).Msg("audit insert failed")
	}
}
