// @title         Gavel API
// @version       0.1.0
// @description   Review and appeal endpoints behind the authorization core

package main

import (
	"context"

	"gavel/internal/platform/config"
	"gavel/internal/platform/logger"
	phttp "gavel/internal/platform/net/http"
	"gavel/internal/platform/store"

	"gavel/internal/services/api"
)

func main() {
	root := config.New()
	apiCfg := root.Prefix("GAVEL_API_")

	pgCfg := root.Prefix("SERVICE_PGSQL_")
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_")

	logger.Init(logger.FromEnv())
	l := logger.Get()

	// audit sink is optional; the recorder drops events when disabled
	chURL := chCfg.MayString("DBURL", "")

	st, err := store.Open(
		context.Background(),
		store.Config{
			AppName: "gavel-api",
			PG: store.PGConfig{
				Enabled:     true,
				URL:         pgCfg.MustString("DBURL"),
				MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
				SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
				LogSQL:      pgCfg.MayBool("LOG_SQL", false),
			},
			CH: store.CHConfig{
				Enabled: chURL != "",
				URL:     chURL,
				Role:    "api",
			},
		},
		store.WithLogger(*l),
	)
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	srv := phttp.NewServer(apiCfg)

	closeAudit := api.Mount(
		srv.Router(),
		api.Options{
			Config:        root,
			Store:         st,
			Logger:        *l,
			EnableSwagger: apiCfg.MayBool("SWAGGER", true),
		},
	)
	defer closeAudit()

	if err := srv.Run(context.Background()); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
