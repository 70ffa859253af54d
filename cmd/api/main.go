package main

import (
	"database/sql"
	"net/http"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	server "agency_site/internal/adapters/http_server"
	"agency_site/internal/adapters/identity"
	"agency_site/internal/adapters/observability"
	redisad "agency_site/internal/adapters/redis"
	"agency_site/internal/app"
	"agency_site/internal/domain"
	"agency_site/internal/shared"
	mysqlrepo "agency_site/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// deps
	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	var verifier domain.TokenVerifier = identity.Disabled{}
	if cfg.IdentityBase != "" {
		cl, err := identity.New(cfg.IdentityBase, cfg.IdentityRPS)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize identity client")
		}
		verifier = cl
	}

	q := app.NewQueryService(repo, cache, cfg.CacheTTL)
	inv := app.NewInvalidationService(verifier, cache)

	// http
	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Q: q, Inv: inv})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
