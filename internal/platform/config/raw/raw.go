// Package raw is the minimal env reader used while bootstrapping.
// It must stay free of the logger package so logger configuration
// itself can be read without an import cycle
package raw

import (
	"os"
	"strconv"
	"strings"
)

// Conf reads environment variables under a fixed prefix
type Conf struct{ prefix string }

// New returns a root Conf with no prefix
func New() Conf { return Conf{} }

// Prefix derives a child Conf, e.g. New().Prefix("LOG_")
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

func (c Conf) lookup(key string) string {
	return strings.TrimSpace(os.Getenv(c.prefix + key))
}

// Get returns the trimmed value or def when the var is missing/blank
func (c Conf) Get(key, def string) string {
	if v := c.lookup(key); v != "" {
		return v
	}
	return def
}

// GetBool accepts 1/true/yes (any case) as true; anything else is false
func (c Conf) GetBool(key string, def bool) bool {
	switch strings.ToLower(c.lookup(key)) {
	case "":
		return def
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

// GetInt parses a non-negative integer; anything else falls back to def
func (c Conf) GetInt(key string, def int) int {
	s := c.lookup(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return def
	}
	return n
}
