package store

import (
	"context"
	"fmt"
	"time"

	chx "gavel/internal/platform/store/ch"
	"gavel/internal/platform/store/pg"
)

// openPG opens pg, pings with retry, then publishes the adapter
func openPG(ctx context.Context, cfg Config, s *Store) (TxRunner, error) {
	var tracer pg.QueryTracer
	if cfg.PG.LogSQL {
		tracer = pg.Tracer(s.Log)
	}

	p, err := pg.Open(ctx, pg.Config{
		URL:      cfg.PG.URL,
		MaxConns: cfg.PG.MaxConns,
		SlowMs:   cfg.PG.SlowQueryMs,
	}, tracer, nil)
	if err != nil {
		return nil, err
	}

	const (
		maxAttempts    = 20
		pingTimeout    = 3 * time.Second
		backoffStart   = 150 * time.Millisecond
		backoffCeiling = 2 * time.Second
	)

	var lastErr error
	backoff := backoffStart
	for i := 0; i < maxAttempts; i++ {
		toCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		lastErr = p.Pool.Ping(toCtx)
		cancel()

		if lastErr == nil {
			a := newPGAdapter(p)
			s.PG = a
			return a, nil
		}
		if ctx.Err() != nil {
			p.Close()
			return nil, ctx.Err()
		}
		time.Sleep(backoff)
		if backoff < backoffCeiling {
			backoff *= 2
			if backoff > backoffCeiling {
				backoff = backoffCeiling
			}
		}
	}

	p.Close()
	return nil, fmt.Errorf("postgres ping failed after %d attempts: %w", maxAttempts, lastErr)
}

func openCH(ctx context.Context, cfg Config) (Clickhouse, error) {
	c, err := chx.Open(ctx, chx.Config{URL: cfg.CH.URL, Role: cfg.CH.Role})
	if err != nil {
		return nil, err
	}
	return newCHAdapter(c), nil
}
