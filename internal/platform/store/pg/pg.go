// Package pg provides the Postgres client built on pgxpool with
// optional query tracing
package pg

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config configures the pgx pool
type Config struct {
	URL      string
	MaxConns int32
	SlowMs   int
}

// PG holds the pool plus tracing knobs
type PG struct {
	Pool   *pgxpool.Pool
	Tracer QueryTracer
	SlowMs int
}

var newPool = pgxpool.NewWithConfig

// Open parses cfg.URL and creates the pool. poolMut, when non-nil, may
// adjust the parsed pool config before the pool is created
func Open(ctx context.Context, cfg Config, tracer QueryTracer, poolMut func(*pgxpool.Config)) (*PG, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}
	if poolMut != nil {
		poolMut(pcfg)
	}
	pool, err := newPool(ctx, pcfg)
	if err != nil {
		return nil, err
	}
	return &PG{Pool: pool, Tracer: tracer, SlowMs: cfg.SlowMs}, nil
}

// Close closes the pool
func (p *PG) Close() {
	if p != nil && p.Pool != nil {
		p.Pool.Close()
	}
}
