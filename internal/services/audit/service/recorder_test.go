package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"gavel/internal/platform/logger"
	"gavel/internal/platform/store"
	"gavel/internal/services/auth/guard"
)

type memSink struct {
	mu   sync.Mutex
	rows [][]any
	cols []string
}

func (m *memSink) Insert(_ context.Context, _ string, columns []string, rows [][]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cols = columns
	m.rows = append(m.rows, rows...)
	return nil
}

func (m *memSink) Query(context.Context, string, ...any) (store.Rows, error) { return nil, nil }
func (m *memSink) Ping(context.Context) error                               { return nil }
func (m *memSink) Close() error                                             { return nil }

func (m *memSink) snapshot() [][]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]any(nil), m.rows...)
}

func event(allow bool, reason string) guard.Event {
	return guard.Event{
		Allow:  allow,
		Reason: reason,
		Roles:  []string{"administrator", "reviewer"},
		Method: "GET",
		Path:   "/api/v1/appeals",
		UserID: "member-1",
		At:     time.Now().UTC(),
	}
}

func TestRecorder_CloseFlushesPending(t *testing.T) {
	sink := &memSink{}
	r := New(sink, Config{FlushEvery: time.Hour}, *logger.Get())

	r.Record(context.Background(), event(true, ""))
	r.Record(context.Background(), event(false, "insufficient_permissions"))
	r.Close()

	rows := sink.snapshot()
	if len(rows) != 2 {
		t.Fatalf("flushed %d rows want 2", len(rows))
	}
	if len(sink.cols) != len(rows[0]) {
		t.Fatalf("column/value arity mismatch: %d vs %d", len(sink.cols), len(rows[0]))
	}
	// booleans travel as 0/1
	if rows[0][1] != uint8(1) || rows[1][1] != uint8(0) {
		t.Fatalf("allow column = %v / %v", rows[0][1], rows[1][1])
	}
	// role lists are comma joined
	if rows[0][3] != "administrator,reviewer" {
		t.Fatalf("roles column = %v", rows[0][3])
	}
}

func TestRecorder_BatchSizeTriggersEarlyFlush(t *testing.T) {
	sink := &memSink{}
	r := New(sink, Config{BatchSize: 2, FlushEvery: time.Hour}, *logger.Get())
	defer r.Close()

	r.Record(context.Background(), event(true, ""))
	r.Record(context.Background(), event(true, ""))

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(sink.snapshot()) == 2 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("batch never flushed, have %d rows", len(sink.snapshot()))
}

func TestRecorder_FullBufferDropsInsteadOfBlocking(t *testing.T) {
	// nil sink: the drain loop still consumes, so choke it with a
	// buffer of one and no consumer headroom
	r := &Recorder{
		log:    *logger.Get(),
		cfg:    Config{Buffer: 1},
		events: make(chan guard.Event, 1),
		done:   make(chan struct{}),
	}
	// no drain goroutine running; both calls must return immediately
	done := make(chan struct{})
	go func() {
		r.Record(context.Background(), event(true, ""))
		r.Record(context.Background(), event(true, ""))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Record blocked on a full buffer")
	}
}

func TestRecorder_NilSinkIsSafe(t *testing.T) {
	r := New(nil, Config{}, *logger.Get())
	r.Record(context.Background(), event(true, ""))
	r.Close()
	// double close is a no-op
	r.Close()
}
