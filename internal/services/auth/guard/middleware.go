package guard

import (
	"context"
	"net/http"
	"strings"
	"time"

	"gavel/internal/modkit/httpkit"
	perr "gavel/internal/platform/errors"
	"gavel/internal/platform/logger"
	pnet "gavel/internal/platform/net"
	phttp "gavel/internal/platform/net/http"
	"gavel/internal/services/auth/domain"
)

// challengeParam is the query parameter the listing carve-out keys on
const challengeParam = "challengeId"

// Validator is the token validation port consumed by the middleware
type Validator interface {
	Validate(ctx context.Context, credential string) (*domain.Principal, error)
}

// Event describes one evaluated decision for the audit trail
type Event struct {
	Allow     bool
	Reason    string
	Roles     []string
	Scopes    []string
	Machine   bool
	UserID    string
	Method    string
	Path      string
	RequestID string
	At        time.Time
}

// Recorder receives every decision. Implementations must be loss
// tolerant; recording never fails the request
type Recorder interface {
	Record(ctx context.Context, ev Event)
}

// Middleware authenticates bearer credentials and evaluates per-route
// requirements
type Middleware struct {
	validator Validator
	recorder  Recorder
	log       logger.Logger
}

// NewMiddleware builds the guard middleware. recorder may be nil
func NewMiddleware(v Validator, rec Recorder, log logger.Logger) *Middleware {
	return &Middleware{
		validator: v,
		recorder:  rec,
		log:       log.With().Str("component", "guard").Logger(),
	}
}

// Authenticate resolves the bearer credential into a principal on the
// request context. A missing credential continues as anonymous; an
// invalid credential is stricter than none and short-circuits with 401
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := httpkit.Bearer(r)
		if err != nil {
			// anonymous; protected routes deny later with a clear reason
			next.ServeHTTP(w, r)
			return
		}

		p, err := m.validator.Validate(r.Context(), raw)
		if err != nil {
			phttp.RespondError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(domain.WithPrincipal(r.Context(), p)))
	})
}

// Require evaluates req before the handler body runs. Deny aborts with
// no partial side effects
func (m *Middleware) Require(req Requirement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := domain.FromContext(r.Context())
			rc := ReqContext{
				Method:      r.Method,
				ChallengeID: strings.TrimSpace(r.URL.Query().Get(challengeParam)),
			}

			d := Decide(p, req, rc)
			m.record(r, p, req, d)

			if !d.Allow {
				if d.Reason == ReasonUnauthenticated {
					phttp.RespondError(w, r, perr.Unauthorizedf("authentication required"))
					return
				}
				phttp.RespondError(w, r, perr.Forbiddenf("%s", d.Reason))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m *Middleware) record(r *http.Request, p *domain.Principal, req Requirement, d Decision) {
	if m.recorder == nil {
		return
	}
	ev := Event{
		Allow:     d.Allow,
		Reason:    d.Reason,
		Roles:     req.Roles,
		Scopes:    req.Scopes,
		Method:    r.Method,
		Path:      r.URL.Path,
		RequestID: pnet.RequestID(r.Context()),
		At:        time.Now().UTC(),
	}
	if p != nil {
		ev.Machine = p.Machine
		ev.UserID = p.UserID
	}
	m.recorder.Record(r.Context(), ev)
}
