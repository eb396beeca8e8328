package token

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	perr "gavel/internal/platform/errors"
	"gavel/internal/platform/logger"
	"gavel/internal/platform/testkit"
)

func jwkFor(t *testing.T, kid string, pub *rsa.PublicKey) jwkKey {
	t.Helper()
	e := pub.E
	var eb []byte
	for e > 0 {
		eb = append([]byte{byte(e)}, eb...)
		e >>= 8
	}
	return jwkKey{
		Kty: "RSA",
		Kid: kid,
		Use: "sig",
		N:   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
		E:   base64.RawURLEncoding.EncodeToString(eb),
	}
}

func jwksServer(t *testing.T, fetches *atomic.Int64, keys ...jwkKey) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/"+jwksPath {
			http.NotFound(w, r)
			return
		}
		fetches.Add(1)
		_ = json.NewEncoder(w).Encode(jwksDoc{Keys: keys})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestJWKSClient_FetchAndCache(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	testkit.MustNoErr(t, err)

	var fetches atomic.Int64
	srv := jwksServer(t, &fetches, jwkFor(t, "kid-1", &key.PublicKey))

	c := NewJWKSClient(srv.URL+"/", srv.Client(), *logger.Get())

	got, err := c.Key(context.Background(), "kid-1")
	testkit.MustNoErr(t, err)
	if got.N.Cmp(key.PublicKey.N) != 0 || got.E != key.PublicKey.E {
		t.Fatal("fetched key does not match the published one")
	}

	// cached hit, no second request
	_, err = c.Key(context.Background(), "kid-1")
	testkit.MustNoErr(t, err)
	if n := fetches.Load(); n != 1 {
		t.Fatalf("fetch count = %d want 1", n)
	}
}

func TestJWKSClient_UnknownKidWithinCooldown(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	testkit.MustNoErr(t, err)

	var fetches atomic.Int64
	srv := jwksServer(t, &fetches, jwkFor(t, "kid-1", &key.PublicKey))
	c := NewJWKSClient(srv.URL, srv.Client(), *logger.Get())

	_, err = c.Key(context.Background(), "kid-1")
	testkit.MustNoErr(t, err)

	// a kid the fresh key set does not contain must fail fast instead
	// of hammering the issuer
	_, err = c.Key(context.Background(), "kid-rotated")
	if !perr.IsCode(err, perr.ErrorCodeUnauthorized) {
		t.Fatalf("want unauthorized, got %v", err)
	}
	if n := fetches.Load(); n != 1 {
		t.Fatalf("fetch count = %d want 1 (cooldown must suppress the refetch)", n)
	}
}

func TestJWKSClient_FetchFailureIsDependency(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	c := NewJWKSClient(srv.URL, srv.Client(), *logger.Get())
	_, err := c.Key(context.Background(), "kid-1")
	if !perr.IsCode(err, perr.ErrorCodeDependency) {
		t.Fatalf("want dependency, got %v", err)
	}
}

func TestJWKSClient_SkipsMalformedKeys(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	testkit.MustNoErr(t, err)

	var fetches atomic.Int64
	srv := jwksServer(t, &fetches,
		jwkKey{Kty: "EC", Kid: "kid-ec"},
		jwkKey{Kty: "RSA", Kid: "kid-bad", N: "!!not-base64!!", E: "AQAB"},
		jwkFor(t, "kid-good", &key.PublicKey),
	)
	c := NewJWKSClient(srv.URL, srv.Client(), *logger.Get())

	if _, err := c.Key(context.Background(), "kid-good"); err != nil {
		t.Fatalf("good key should survive malformed siblings: %v", err)
	}
	if _, err := c.Key(context.Background(), "kid-bad"); err == nil {
		t.Fatal("malformed key must not be served")
	}
}

func TestRSAKey_Exponent(t *testing.T) {
	k := jwkKey{N: base64.RawURLEncoding.EncodeToString([]byte{0x01, 0x02}), E: "AQAB"}
	pub, err := rsaKey(k)
	testkit.MustNoErr(t, err)
	if pub.E != 65537 {
		t.Fatalf("E = %d want 65537", pub.E)
	}

	if _, err := rsaKey(jwkKey{N: k.N, E: ""}); err == nil {
		t.Fatal("empty exponent must fail")
	}
}
