// Package strings provides small string and slice helpers
package strings

import std "strings"

// IfEmpty returns def when in is empty, otherwise in
func IfEmpty[T any](in []T, def []T) []T {
	if len(in) == 0 {
		return def
	}
	return in
}

// MustString returns s when it has non-whitespace content, otherwise panics.
// name appears in the panic message so the missing value is identifiable
func MustString(s, name string) string {
	if std.TrimSpace(s) == "" {
		panic(name + " is required")
	}
	return s
}

// MustPrefix normalizes a route prefix like /appeals: one leading slash,
// no trailing slash. Panics on empty input
func MustPrefix(s string) string {
	s = "/" + std.Trim(std.TrimSpace(s), " /")
	if s == "/" {
		panic("route prefix is required")
	}
	return s
}

// Deref returns "" for a nil pointer, else the pointed-to string
func Deref(ps *string) string {
	if ps == nil {
		return ""
	}
	return *ps
}

// Ptr returns a pointer to s, or nil when s is empty
func Ptr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
