// Package net provides request context helpers shared by transports
package net

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// WithRequestID stores the request id where chi middleware can see it too
func WithRequestID(ctx context.Context, reqID string) context.Context {
	if reqID == "" {
		return ctx
	}
	return context.WithValue(ctx, chimw.RequestIDKey, reqID)
}

// RequestID returns the request id on the context, or ""
func RequestID(ctx context.Context) string {
	return chimw.GetReqID(ctx)
}
