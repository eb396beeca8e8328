package httpkit

import (
	"net/http"

	phttp "gavel/internal/platform/net/http"
)

// GetJSON mounts a body-decoding handler under GET
func GetJSON[T any](r Router, path string, h func(*http.Request, T) (any, error)) {
	r.Get(path, phttp.JSONHandler(h))
}

// PostJSON mounts a body-decoding handler under POST
func PostJSON[T any](r Router, path string, h func(*http.Request, T) (any, error)) {
	r.Post(path, phttp.JSONHandler(h))
}

// PutJSON mounts a body-decoding handler under PUT
func PutJSON[T any](r Router, path string, h func(*http.Request, T) (any, error)) {
	r.Put(path, phttp.JSONHandler(h))
}

// PatchJSON mounts a body-decoding handler under PATCH
func PatchJSON[T any](r Router, path string, h func(*http.Request, T) (any, error)) {
	r.Patch(path, phttp.JSONHandler(h))
}

// DeleteJSON mounts a body-decoding handler under DELETE
func DeleteJSON[T any](r Router, path string, h func(*http.Request, T) (any, error)) {
	r.Delete(path, phttp.JSONHandler(h))
}

// Body-less endpoints

// Get registers a no-body handler under GET
func Get(r Router, path string, h func(*http.Request) (any, error)) {
	r.Get(path, Call(h))
}

// Post registers a no-body handler under POST
func Post(r Router, path string, h func(*http.Request) (any, error)) {
	r.Post(path, Call(h))
}

// Delete registers a no-body handler under DELETE
func Delete(r Router, path string, h func(*http.Request) (any, error)) {
	r.Delete(path, Call(h))
}
