package http

import (
	"net/http"

	"gavel/internal/platform/net/http/bind"
)

// JSONHandler adapts a pure JSON handler to a platform Handler.
// The request body is decoded into T and validated before fn runs
func JSONHandler[T any](fn func(*http.Request, T) (any, error)) Handler {
	return Handle(func(r *http.Request) Response {
		in, err := bind.ParseJSON[T](r)
		if err != nil {
			return Error(err)
		}
		out, err := fn(r, in)
		if err != nil {
			return Error(err)
		}
		if resp, ok := out.(Response); ok {
			return resp
		}
		return OK(out)
	})
}

// JSONHandlerNoBody adapts a body-less handler
func JSONHandlerNoBody(fn func(*http.Request) (any, error)) Handler {
	return Handle(func(r *http.Request) Response {
		out, err := fn(r)
		if err != nil {
			return Error(err)
		}
		if resp, ok := out.(Response); ok {
			return resp
		}
		return OK(out)
	})
}
