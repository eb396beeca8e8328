package store

import (
	"context"
	"errors"

	"gavel/internal/platform/store/ch"
)

// newCHAdapter wraps *ch.CH into the Clickhouse seam
func newCHAdapter(c *ch.CH) Clickhouse {
	return &chAdapter{inner: c}
}

type chAdapter struct {
	inner *ch.CH
}

var _ Clickhouse = (*chAdapter)(nil)

func (a *chAdapter) Insert(ctx context.Context, table string, columns []string, rows [][]any) error {
	if a == nil || a.inner == nil {
		return errors.New("store: nil clickhouse adapter")
	}
	return a.inner.Insert(ctx, table, columns, rows)
}

func (a *chAdapter) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	r, err := a.inner.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return &chRows{r: r}, nil
}

func (a *chAdapter) Ping(ctx context.Context) error {
	if a == nil || a.inner == nil {
		return errors.New("store: nil clickhouse adapter")
	}
	return a.inner.Ping(ctx)
}

func (a *chAdapter) Close() error { return a.inner.Close() }

// chRows adapts ch.Rows to store.Rows
type chRows struct {
	r ch.Rows
}

func (r *chRows) Next() bool             { return r.r.Next() }
func (r *chRows) Scan(dest ...any) error { return r.r.Scan(dest...) }
func (r *chRows) Err() error             { return r.r.Err() }
func (r *chRows) Close()                 { _ = r.r.Close() }
