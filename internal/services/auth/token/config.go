// Package token turns bearer credentials into principals
package token

import (
	"time"

	"gavel/internal/platform/config"
)

// Operating modes. Development relaxes verification to decode-only and
// is the explicit, named relaxation; it is never the silent default in
// a production deployment
const (
	ModeProduction  = "production"
	ModeDevelopment = "development"
)

// Config is the validator's environment surface
type Config struct {
	// Issuer is the token issuer; the JWKS URL derives from it
	Issuer string

	// Audience is the expected aud claim
	Audience string

	// ClockSkew bounds accepted clock drift for time-based claims
	ClockSkew time.Duration

	// Mode selects production verification or development decode-only
	Mode string
}

// ConfigFromEnv reads the AUTH_ config surface
func ConfigFromEnv(cfg config.Conf) Config {
	c := cfg.Prefix("AUTH_")
	return Config{
		Issuer:    c.MayString("ISSUER", "https://gavel-dev.auth0.com/"),
		Audience:  c.MayString("AUDIENCE", "https://api.gavel.dev"),
		ClockSkew: c.MayDuration("CLOCK_SKEW", 30*time.Second),
		Mode:      c.MayEnum("MODE", ModeDevelopment, ModeProduction, ModeDevelopment),
	}
}
