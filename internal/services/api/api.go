// Package api provides the HTTP API for the application
package api

import (
	"gavel/internal/platform/config"
	"gavel/internal/platform/logger"
	phttp "gavel/internal/platform/net/http"
	"gavel/internal/platform/store"

	"gavel/internal/modkit"
	"gavel/internal/modkit/httpkit"
	"gavel/internal/modkit/module"
	"gavel/internal/modkit/swaggerkit"

	appealsmod "gavel/internal/services/appeals/module"
	"gavel/internal/services/appeals/policy"
	auditmod "gavel/internal/services/audit/module"
	"gavel/internal/services/auth/guard"
	"gavel/internal/services/auth/token"
	"gavel/internal/services/challenges"
	metamod "gavel/internal/services/meta/module"
	"gavel/internal/services/resources"
	submod "gavel/internal/services/submissions/module"
)

// Options are the API options
type Options struct {
	Config        config.Conf
	Store         *store.Store
	Logger        logger.Logger
	EnableSwagger bool
}

// Mount wires every module, the guard middleware stack and the
// versioned prefix onto the given router. Per-endpoint access
// requirements are declared where each module registers its routes
func Mount(r phttp.Router, opt Options) func() {
	deps := modkit.Deps{
		Log: opt.Logger,
		Cfg: opt.Config,
		PG:  opt.Store.PG,
		CH:  opt.Store.CH,
	}

	// token validation and the decision middleware
	tokCfg := token.ConfigFromEnv(opt.Config)
	var resolver token.CredentialResolver
	if tokCfg.Mode != token.ModeProduction {
		resolver = token.DefaultTestCredentials()
	}
	jwks := token.NewJWKSClient(tokCfg.Issuer, nil, opt.Logger)
	validator := token.NewValidator(tokCfg, jwks, resolver, opt.Logger)

	// audit module first so its recorder port feeds the guard
	audit := auditmod.New(deps)
	recorder := module.MustPortsOf[guard.Recorder](audit)
	mw := guard.NewMiddleware(validator, recorder, opt.Logger)

	// external collaborators behind the ownership policy
	res := resources.NewClient(resources.ConfigFromEnv(opt.Config), nil, opt.Logger)
	chs := challenges.NewClient(challenges.ConfigFromEnv(opt.Config), nil, opt.Logger)
	pol := policy.New(res, chs)

	subs := submod.New(deps, mw)
	subsPort := module.MustPortsOf[submod.Ports](subs).Submissions

	appeals := appealsmod.New(deps, appealsmod.Wiring{
		Guard:       mw,
		Policy:      pol,
		Submissions: subsPort,
	})

	mods := []module.Module{
		metamod.New(deps),
		audit,
		subs,
		appeals,
	}

	stack := append(httpkit.CommonStack(), mw.Authenticate)

	httpkit.MountAPIV1(r, stack, func(apiRouter httpkit.Router) {
		swaggerkit.Mount(r, opt.EnableSwagger)

		for _, m := range mods {
			module.Register(m.Name(), m.Ports())
			m.MountRoutes(apiRouter)
		}
	})

	return audit.Close
}
