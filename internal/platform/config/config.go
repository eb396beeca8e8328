// Package config exposes application configuration read from environment
// variables. Missing required keys are fatal and reported through the logger
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gavel/internal/platform/logger"
)

// Conf is a namespaced view over environment variables.
// Use New() for global access or Prefix("AUTH_") for a component scope
type Conf struct{ prefix string }

// New creates a root Conf without a prefix
func New() Conf { return Conf{} }

// Prefix derives a child Conf, e.g. cfg.Prefix("CORE_API_")
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

func (c Conf) key(k string) string { return c.prefix + k }

func (c Conf) value(k string) string { return strings.TrimSpace(os.Getenv(c.key(k))) }

// MustString panics when the key is missing or blank
func (c Conf) MustString(key string) string {
	v := c.value(key)
	if v == "" {
		logger.Get().Panic().Str("key", c.key(key)).Msg("missing required env")
	}
	return v
}

// MustInt panics when the key is missing, blank, or not an integer
func (c Conf) MustInt(key string) int {
	s := c.MustString(key)
	v, err := strconv.Atoi(s)
	if err != nil {
		logger.Get().Panic().Str("key", c.key(key)).Str("value", s).Msg("invalid int value")
	}
	return v
}

// Require asserts that every key is present and non-blank
func (c Conf) Require(keys ...string) {
	for _, k := range keys {
		if c.value(k) == "" {
			logger.Get().Panic().Str("key", c.key(k)).Msg("missing required env")
		}
	}
}

// MayString returns the value or def when missing/blank
func (c Conf) MayString(key, def string) string {
	if v := c.value(key); v != "" {
		return v
	}
	return def
}

// MayInt returns the value or def; logs and falls back when unparsable
func (c Conf) MayInt(key string, def int) int {
	s := c.value(key)
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	logger.Get().Warn().Str("key", c.key(key)).Str("value", s).Int("default", def).Msg("invalid int; using default")
	return def
}

// MayBool returns the value or def; logs and falls back when unparsable
func (c Conf) MayBool(key string, def bool) bool {
	s := c.value(key)
	if s == "" {
		return def
	}
	if v, err := strconv.ParseBool(s); err == nil {
		return v
	}
	logger.Get().Warn().Str("key", c.key(key)).Str("value", s).Bool("default", def).Msg("invalid bool; using default")
	return def
}

// MayDuration returns the value or def; logs and falls back when unparsable
func (c Conf) MayDuration(key string, def time.Duration) time.Duration {
	s := c.value(key)
	if s == "" {
		return def
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	logger.Get().Warn().Str("key", c.key(key)).Str("value", s).Dur("default", def).Msg("invalid duration; using default")
	return def
}

// MayEnum returns the value when it matches one of allowed (case-insensitive),
// def when blank, and panics otherwise. Misconfigured enums must not boot
func (c Conf) MayEnum(key, def string, allowed ...string) string {
	v := c.MayString(key, def)
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return strings.ToLower(v)
		}
	}
	logger.Get().Panic().Str("key", c.key(key)).Str("value", v).Strs("allowed", allowed).Msg("invalid enum value")
	return "" // unreachable
}
