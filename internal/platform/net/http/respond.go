// Package http provides the JSON response envelope and handler adapters
package http

import (
	"encoding/json"
	stdhttp "net/http"

	perr "gavel/internal/platform/errors"
	pnet "gavel/internal/platform/net"
)

// Envelope is the standard response body for every endpoint
type Envelope struct {
	StatusCode int            `json:"status_code"`
	Status     string         `json:"status"`
	Code       perr.ErrorCode `json:"code,omitempty"`
	Error      string         `json:"error,omitempty"`
	RequestID  string         `json:"request_id,omitempty"`
	Data       any            `json:"data,omitempty"`
	Page       *Page          `json:"page,omitempty"`
}

// Page carries list pagination metadata
type Page struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Size  int `json:"size"`
}

// JSON writes v as application/json with the given status
func JSON(w stdhttp.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Response is the functional return value for handlers
type Response struct {
	Status int
	Body   any
	Page   *Page
	Header stdhttp.Header
}

// Handle adapts a Response-returning handler to the platform Handler type
func Handle(h func(r *stdhttp.Request) Response) stdhttp.HandlerFunc {
	return func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		h(r).write(w, r)
	}
}

func (resp Response) write(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	status := resp.Status
	if status == 0 {
		status = stdhttp.StatusOK
	}
	for k, vv := range resp.Header {
		for _, v := range vv {
			w.Header().Add(k, v)
		}
	}
	if status == stdhttp.StatusNoContent {
		w.WriteHeader(stdhttp.StatusNoContent)
		return
	}

	reqID := pnet.RequestID(r.Context())

	// errors decide their own status before the envelope is built
	if err, ok := resp.Body.(error); ok && err != nil {
		status = perr.HTTPStatus(err)
		wire := perr.WireFrom(err)
		JSON(w, status, Envelope{
			StatusCode: status,
			Status:     stdhttp.StatusText(status),
			Code:       wire.Code,
			Error:      wire.Message,
			RequestID:  reqID,
		})
		return
	}

	JSON(w, status, Envelope{
		StatusCode: status,
		Status:     stdhttp.StatusText(status),
		RequestID:  reqID,
		Data:       resp.Body,
		Page:       resp.Page,
	})
}

// RespondError maps a project error into an envelope and writes it
func RespondError(w stdhttp.ResponseWriter, r *stdhttp.Request, err error) {
	Response{Body: err}.write(w, r)
}

// OK returns a 200 response
func OK(data any) Response { return Response{Status: stdhttp.StatusOK, Body: data} }

// Created returns a 201 response
func Created(data any) Response { return Response{Status: stdhttp.StatusCreated, Body: data} }

// NoContent returns a 204 response
func NoContent() Response { return Response{Status: stdhttp.StatusNoContent} }

// Error returns a response that maps err to status and envelope
func Error(err error) Response { return Response{Body: err} }

// List returns a 200 response with items plus pagination metadata
func List(items any, total, page, size int) Response {
	return Response{
		Status: stdhttp.StatusOK,
		Body:   items,
		Page:   &Page{Total: total, Page: page, Size: size},
	}
}
