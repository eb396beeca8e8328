// Package store provides a unified facade over the storage backends.
// The zero value is safe but does nothing
package store

import (
	"context"
	"errors"
	"fmt"

	"gavel/internal/platform/logger"
)

// Store is the facade over optional backends
type Store struct {
	// Log is the logger handed to subclients
	Log logger.Logger

	// PG is the postgres seam, nil when disabled
	PG TxRunner

	// CH is the clickhouse seam, nil when disabled
	CH Clickhouse
}

// Row is the minimal scan contract for a single row
type Row interface {
	Scan(dest ...any) error
}

// Rows is the minimal iteration contract for a result set
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

// CommandTag inspects command results
type CommandTag interface {
	String() string
	RowsAffected() int64
}

// RowQuerier is the read and write surface repos use for sql
type RowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) Row
}

// TxRunner wraps transaction execution around a function
type TxRunner interface {
	RowQuerier
	Tx(ctx context.Context, fn func(q RowQuerier) error) error
}

// Clickhouse is a tiny seam for columnar inserts and queries
type Clickhouse interface {
	Insert(ctx context.Context, table string, columns []string, rows [][]any) error
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	Ping(ctx context.Context) error
	Close() error
}

// Option mutates Store during Open
type Option func(*Store) error

// WithLogger sets the logger used by subclients
func WithLogger(log logger.Logger) Option {
	return func(s *Store) error {
		s.Log = log
		return nil
	}
}

// Open brings up the enabled backends described by cfg
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	s := &Store{}
	for _, o := range opts {
		if err := o(s); err != nil {
			return nil, err
		}
	}

	if cfg.PG.Enabled {
		if _, err := openPG(ctx, cfg, s); err != nil {
			return nil, fmt.Errorf("store: postgres: %w", err)
		}
	}
	if cfg.CH.Enabled {
		ch, err := openCH(ctx, cfg)
		if err != nil {
			_ = s.Close(ctx)
			return nil, fmt.Errorf("store: clickhouse: %w", err)
		}
		s.CH = ch
	}
	return s, nil
}

// Close releases every open backend
func (s *Store) Close(_ context.Context) error {
	var errs []error
	if c, ok := s.PG.(interface{ Close() error }); ok && c != nil {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if s.CH != nil {
		if err := s.CH.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
