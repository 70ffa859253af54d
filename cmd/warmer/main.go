package main

import (
	"context"
	"database/sql"
	"sync"
	"sync/atomic"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"agency_site/internal/adapters/observability"
	redisad "agency_site/internal/adapters/redis"
	"agency_site/internal/app"
	"agency_site/internal/shared"
	mysqlrepo "agency_site/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().Int("workers", cfg.Workers).Msg("warmer starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := cache.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("redis ping failed")
	}

	q := app.NewQueryService(repo, cache, cfg.CacheTTL)
	warm := app.NewWarmService(repo, q)

	targets, err := warm.Targets(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("enumerating warm targets failed")
	}
	log.Info().Int("targets", len(targets)).Msg("warm set computed")

	sem := semaphore.NewWeighted(int64(cfg.Workers))
	var wg sync.WaitGroup
	var failed int64

	for _, t := range targets {
		t := t

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)
			if err := warm.WarmOne(ctx, t); err != nil {
				atomic.AddInt64(&failed, 1)
				log.Error().Err(err).
					Str("type", t.ContentType).
					Str("slug", t.Slug).
					Str("location", t.LocationSlug).
					Msg("warm failed")
			}
		}()
	}
	wg.Wait()

	log.Info().
		Int("targets", len(targets)).
		Int64("failed", atomic.LoadInt64(&failed)).
		Msg("warmer done")
}
