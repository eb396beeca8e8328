package token

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	perr "gavel/internal/platform/errors"
	"gavel/internal/platform/logger"

	"golang.org/x/sync/singleflight"
)

// jwksPath is the well-known key set location under the issuer
const jwksPath = ".well-known/jwks.json"

// refreshCooldown bounds how often an unknown kid may trigger a refetch
const refreshCooldown = time.Minute

// JWKSClient fetches and caches RSA signing keys from the issuer's key
// set endpoint. Keys are cached for the process lifetime; an unknown
// kid triggers at most one refetch per cooldown window. Concurrent
// fetches collapse into one request
type JWKSClient struct {
	url    string
	client *http.Client
	log    logger.Logger

	mu          sync.RWMutex
	keys        map[string]*rsa.PublicKey
	lastRefresh time.Time

	group singleflight.Group
}

// NewJWKSClient derives the key set URL from issuer
func NewJWKSClient(issuer string, client *http.Client, log logger.Logger) *JWKSClient {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &JWKSClient{
		url:    strings.TrimSuffix(issuer, "/") + "/" + jwksPath,
		client: client,
		log:    log.With().Str("component", "jwks").Logger(),
		keys:   map[string]*rsa.PublicKey{},
	}
}

// Key returns the public key for kid, fetching the key set when the kid
// is not cached. Fetch failures surface as dependency errors, never as
// an authorization outcome
func (c *JWKSClient) Key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	c.mu.RLock()
	k, ok := c.keys[kid]
	stale := time.Since(c.lastRefresh) >= refreshCooldown
	c.mu.RUnlock()
	if ok {
		return k, nil
	}
	if !stale {
		// recently refreshed and the kid still isn't there
		return nil, perr.Unauthorizedf("unknown key id")
	}

	if _, err, _ := c.group.Do("refresh", func() (any, error) {
		return nil, c.refresh(ctx)
	}); err != nil {
		return nil, err
	}

	c.mu.RLock()
	k, ok = c.keys[kid]
	c.mu.RUnlock()
	if !ok {
		return nil, perr.Unauthorizedf("unknown key id")
	}
	return k, nil
}

type jwksDoc struct {
	Keys []jwkKey `json:"keys"`
}

type jwkKey struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	N   string `json:"n"`
	E   string `json:"e"`
}

func (c *JWKSClient) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeDependency, "jwks request")
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeDependency, "jwks fetch")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return perr.Dependencyf("jwks fetch: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeDependency, "jwks read")
	}

	var doc jwksDoc
	if err := json.Unmarshal(body, &doc); err != nil {
		return perr.Wrap(err, perr.ErrorCodeDependency, "jwks decode")
	}

	keys := make(map[string]*rsa.PublicKey, len(doc.Keys))
	for _, k := range doc.Keys {
		if k.Kty != "RSA" || k.Kid == "" {
			continue
		}
		pub, err := rsaKey(k)
		if err != nil {
			c.log.Warn().Err(err).Str("kid", k.Kid).Msg("skipping malformed jwk")
			continue
		}
		keys[k.Kid] = pub
	}

	c.mu.Lock()
	c.keys = keys
	c.lastRefresh = time.Now()
	c.mu.Unlock()

	c.log.Debug().Int("keys", len(keys)).Msg("jwks refreshed")
	return nil
}

// rsaKey builds an rsa.PublicKey from base64url modulus and exponent
func rsaKey(k jwkKey) (*rsa.PublicKey, error) {
	nb, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, fmt.Errorf("modulus: %w", err)
	}
	eb, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, fmt.Errorf("exponent: %w", err)
	}
	e := 0
	for _, b := range eb {
		e = e<<8 | int(b)
	}
	if e <= 0 {
		return nil, fmt.Errorf("exponent out of range")
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(nb), E: e}, nil
}
