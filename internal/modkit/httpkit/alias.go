// Package httpkit provides handler and routing helpers that alias the
// platform http package. Modules use these so they do not import
// internal/platform/net/http directly
package httpkit

import (
	"net/http"

	phttp "gavel/internal/platform/net/http"
)

type (
	// Envelope is the transport envelope type
	Envelope = phttp.Envelope

	// Page is the pagination metadata type
	Page = phttp.Page

	// Response is the HTTP response type
	Response = phttp.Response

	// Handler is the platform handler type
	Handler = phttp.Handler

	// Router is a re-export of the platform router seam
	Router = phttp.Router
)

// OK returns a 200 response
func OK(data any) Response { return phttp.OK(data) }

// Created returns a 201 response
func Created(data any) Response { return phttp.Created(data) }

// NoContent returns a 204 response
func NoContent() Response { return phttp.NoContent() }

// Error returns a response that maps an error to status and envelope
func Error(err error) Response { return phttp.Error(err) }

// List returns a 200 response with items and pagination
func List(items any, total, page, size int) Response {
	return phttp.List(items, total, page, size)
}

// JSON adapts a body-decoding handler
func JSON[T any](fn func(*http.Request, T) (any, error)) Handler {
	return phttp.JSONHandler(fn)
}

// Call adapts a handler that takes no JSON body
func Call(fn func(*http.Request) (any, error)) Handler {
	return phttp.JSONHandlerNoBody(fn)
}

// Handle adapts a Response-returning function directly
func Handle(fn func(*http.Request) Response) Handler {
	return phttp.Handle(fn)
}

// Param returns the named URL parameter
func Param(r *http.Request, name string) string { return phttp.Param(r, name) }
