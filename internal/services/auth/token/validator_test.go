package token

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"reflect"
	"testing"
	"time"

	perr "gavel/internal/platform/errors"
	"gavel/internal/platform/logger"
	"gavel/internal/platform/testkit"
	"gavel/internal/services/auth/domain"
	"gavel/internal/services/auth/scopes"

	"github.com/golang-jwt/jwt/v5"
)

func devConfig() Config {
	return Config{
		Issuer:    "https://issuer.test/",
		Audience:  "https://api.test",
		ClockSkew: 30 * time.Second,
		Mode:      ModeDevelopment,
	}
}

func prodConfig() Config {
	c := devConfig()
	c.Mode = ModeProduction
	return c
}

// staticKeys is a KeyProvider with a fixed key set
type staticKeys struct {
	keys map[string]*rsa.PublicKey
	err  error
}

func (s staticKeys) Key(_ context.Context, kid string) (*rsa.PublicKey, error) {
	if s.err != nil {
		return nil, s.err
	}
	k, ok := s.keys[kid]
	if !ok {
		return nil, perr.Unauthorizedf("unknown key id")
	}
	return k, nil
}

func signRS256(t *testing.T, key *rsa.PrivateKey, kid string, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tok.Header["kid"] = kid
	s, err := tok.SignedString(key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func TestStaticCredentials_Resolve(t *testing.T) {
	creds := DefaultTestCredentials()

	p, ok := creds.Resolve("token-admin")
	if !ok {
		t.Fatal("token-admin should resolve")
	}
	if p.UserID != "member-admin" || !p.HasRole(domain.RoleAdministrator) || p.Machine {
		t.Fatalf("unexpected principal %+v", p)
	}

	p, ok = creds.Resolve("m2m-appeal-all")
	if !ok {
		t.Fatal("m2m-appeal-all should resolve")
	}
	if !p.Machine || p.UserID != "" {
		t.Fatalf("machine credential produced %+v", p)
	}
	// aggregate credential arrives pre-expanded
	if !p.HasScope(scopes.CreateAppeal) || !p.HasScope(scopes.DeleteAppeal) {
		t.Fatalf("scopes not expanded: %v", p.Scopes)
	}

	if _, ok := creds.Resolve("nope"); ok {
		t.Fatal("unknown credential must not resolve")
	}
	if _, ok := creds.Resolve(""); ok {
		t.Fatal("empty credential must not resolve")
	}
}

func TestNewValidator_ProductionRefusesResolver(t *testing.T) {
	keys := staticKeys{keys: map[string]*rsa.PublicKey{}}
	testkit.MustPanic(t, func() {
		NewValidator(prodConfig(), keys, DefaultTestCredentials(), *logger.Get())
	})
}

func TestNewValidator_ProductionRequiresKeys(t *testing.T) {
	testkit.MustPanic(t, func() {
		NewValidator(prodConfig(), nil, nil, *logger.Get())
	})
}

func TestValidate_EmptyCredential(t *testing.T) {
	v := NewValidator(devConfig(), nil, nil, *logger.Get())
	_, err := v.Validate(context.Background(), "")
	if !perr.IsCode(err, perr.ErrorCodeUnauthorized) {
		t.Fatalf("want unauthorized, got %v", err)
	}
}

func TestValidate_ResolverShortCircuits(t *testing.T) {
	v := NewValidator(devConfig(), nil, DefaultTestCredentials(), *logger.Get())
	p, err := v.Validate(context.Background(), "token-reviewer")
	testkit.MustNoErr(t, err)
	if p.UserID != "member-reviewer" || !p.HasRole(domain.RoleReviewer) {
		t.Fatalf("unexpected principal %+v", p)
	}
}

func TestValidate_DevelopmentDecodesWithoutVerification(t *testing.T) {
	// development mode reads claims from any well-formed token; the
	// signature key is never consulted
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "member-77",
		"roles": []string{domain.RoleCopilot},
	})
	raw, err := tok.SignedString([]byte("local-secret"))
	testkit.MustNoErr(t, err)

	v := NewValidator(devConfig(), nil, nil, *logger.Get())
	p, err := v.Validate(context.Background(), raw)
	testkit.MustNoErr(t, err)
	if p.UserID != "member-77" || !p.HasRole(domain.RoleCopilot) {
		t.Fatalf("unexpected principal %+v", p)
	}
}

func TestValidate_DevelopmentRejectsGarbage(t *testing.T) {
	v := NewValidator(devConfig(), nil, nil, *logger.Get())
	_, err := v.Validate(context.Background(), "not-a-jwt")
	if !perr.IsCode(err, perr.ErrorCodeUnauthorized) {
		t.Fatalf("want unauthorized, got %v", err)
	}
}

func TestValidate_ProductionVerifiesSignature(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	testkit.MustNoErr(t, err)

	cfg := prodConfig()
	keys := staticKeys{keys: map[string]*rsa.PublicKey{"kid-1": &key.PublicKey}}
	v := NewValidator(cfg, keys, nil, *logger.Get())

	now := time.Now()
	raw := signRS256(t, key, "kid-1", jwt.MapClaims{
		"iss":   cfg.Issuer,
		"aud":   cfg.Audience,
		"sub":   "auth0|member-42",
		"exp":   now.Add(time.Hour).Unix(),
		"iat":   now.Unix(),
		"roles": []any{domain.RoleSubmitter},
	})

	p, err := v.Validate(context.Background(), raw)
	testkit.MustNoErr(t, err)
	if p.UserID != "auth0|member-42" || !p.HasRole(domain.RoleSubmitter) || p.Machine {
		t.Fatalf("unexpected principal %+v", p)
	}
}

func TestValidate_ProductionMachineToken(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	testkit.MustNoErr(t, err)

	cfg := prodConfig()
	keys := staticKeys{keys: map[string]*rsa.PublicKey{"kid-1": &key.PublicKey}}
	v := NewValidator(cfg, keys, nil, *logger.Get())

	now := time.Now()
	raw := signRS256(t, key, "kid-1", jwt.MapClaims{
		"iss":   cfg.Issuer,
		"aud":   cfg.Audience,
		"sub":   "app-abc123@clients",
		"exp":   now.Add(time.Hour).Unix(),
		"scope": scopes.AllAppeal,
	})

	p, err := v.Validate(context.Background(), raw)
	testkit.MustNoErr(t, err)
	if !p.Machine {
		t.Fatalf("scope-bearing token must be a machine principal: %+v", p)
	}
	if p.UserID != "" {
		t.Fatalf("client-credential subject must not populate UserID, got %q", p.UserID)
	}
	if !p.HasScope(scopes.UpdateAppeal) {
		t.Fatalf("aggregate scope not expanded: %v", p.Scopes)
	}
}

func TestValidate_ProductionRejections(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	testkit.MustNoErr(t, err)
	other, err := rsa.GenerateKey(rand.Reader, 2048)
	testkit.MustNoErr(t, err)

	cfg := prodConfig()
	keys := staticKeys{keys: map[string]*rsa.PublicKey{"kid-1": &key.PublicKey}}
	v := NewValidator(cfg, keys, nil, *logger.Get())
	now := time.Now()

	base := func() jwt.MapClaims {
		return jwt.MapClaims{
			"iss": cfg.Issuer,
			"aud": cfg.Audience,
			"sub": "auth0|member-42",
			"exp": now.Add(time.Hour).Unix(),
		}
	}

	cases := []struct {
		name string
		raw  string
	}{
		{"expired", signRS256(t, key, "kid-1", jwt.MapClaims{
			"iss": cfg.Issuer, "aud": cfg.Audience, "sub": "x",
			"exp": now.Add(-time.Hour).Unix(),
		})},
		{"wrong issuer", func() string {
			c := base()
			c["iss"] = "https://evil.test/"
			return signRS256(t, key, "kid-1", c)
		}()},
		{"wrong audience", func() string {
			c := base()
			c["aud"] = "https://other.test"
			return signRS256(t, key, "kid-1", c)
		}()},
		{"missing exp", signRS256(t, key, "kid-1", jwt.MapClaims{
			"iss": cfg.Issuer, "aud": cfg.Audience, "sub": "x",
		})},
		{"wrong key", signRS256(t, other, "kid-1", base())},
		{"unknown kid", signRS256(t, key, "kid-2", base())},
		{"missing kid", func() string {
			tok := jwt.NewWithClaims(jwt.SigningMethodRS256, base())
			s, err := tok.SignedString(key)
			testkit.MustNoErr(t, err)
			return s
		}()},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := v.Validate(context.Background(), tc.raw)
			if !perr.IsCode(err, perr.ErrorCodeUnauthorized) {
				t.Fatalf("want unauthorized, got %v", err)
			}
		})
	}
}

func TestValidate_KeyProviderFailureIsDependency(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	testkit.MustNoErr(t, err)

	cfg := prodConfig()
	v := NewValidator(cfg, staticKeys{err: perr.Dependencyf("jwks fetch: status 503")}, nil, *logger.Get())

	raw := signRS256(t, key, "kid-1", jwt.MapClaims{
		"iss": cfg.Issuer,
		"aud": cfg.Audience,
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	_, err = v.Validate(context.Background(), raw)
	// an unavailable key source must not read as a caller problem
	if !perr.IsCode(err, perr.ErrorCodeDependency) {
		t.Fatalf("want dependency, got %v (code %v)", err, perr.CodeOf(err))
	}
}

func TestPrincipalFromClaims_DelegatedMachineKeepsUser(t *testing.T) {
	p := principalFromClaims(jwt.MapClaims{
		"sub":   "auth0|member-9",
		"scope": "read:appeal",
	})
	if !p.Machine || p.UserID != "auth0|member-9" {
		t.Fatalf("delegated token should keep the user identity: %+v", p)
	}
}

func TestRolesClaim_Shapes(t *testing.T) {
	cases := []struct {
		name   string
		claims jwt.MapClaims
		want   []string
	}{
		{"bare list", jwt.MapClaims{"roles": []any{"reviewer", "copilot"}}, []string{"reviewer", "copilot"}},
		{"namespaced", jwt.MapClaims{"https://gavel.dev/roles": []any{"administrator"}}, []string{"administrator"}},
		{"single string", jwt.MapClaims{"roles": "submitter"}, []string{"submitter"}},
		{"absent", jwt.MapClaims{"sub": "x"}, nil},
		{"non-string entries skipped", jwt.MapClaims{"roles": []any{"reviewer", 7, ""}}, []string{"reviewer"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := rolesClaim(tc.claims); !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("rolesClaim = %v want %v", got, tc.want)
			}
		})
	}
}
