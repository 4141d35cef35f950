package main

import (
	"context"
	"database/sql"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"cruise_catalog/internal/adapters/observability"
	redisad "cruise_catalog/internal/adapters/redis"
	"cruise_catalog/internal/app"
	"cruise_catalog/internal/shared"
	mysqlrepo "cruise_catalog/internal/storage/mysql"
)

// warmer refreshes the facet and detail caches after an import run.
func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	log.Info().
		Int("workers", cfg.WarmWorkers).
		Int("limit", cfg.WarmLimit).
		Msg("warmer starting")

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
	syncFlag := redisad.NewSyncStatus(cache.Client(), cfg.SyncFlagKey)
	if syncFlag.IsSyncInProgress(ctx) {
		log.Warn().Msg("import still running; caches may be refreshed again afterwards")
	}
	q := app.NewQueryService(repo, cache, syncFlag, cfg.CacheTTL)

	lines, err := repo.ListLineIDs(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("list lines failed")
	}
	sailings, err := repo.ListUpcomingSailingIDs(ctx, time.Now().UTC().Truncate(24*time.Hour), cfg.WarmLimit)
	if err != nil {
		log.Fatal().Err(err).Msg("list sailings failed")
	}

	type job struct {
		kind string
		id   string
		run  func(context.Context, string) error
	}
	jobs := make([]job, 0, len(lines)+len(sailings)+1)
	jobs = append(jobs, job{kind: "facets", id: "", run: q.RefreshFacets})
	for _, id := range lines {
		jobs = append(jobs, job{kind: "facets", id: id, run: q.RefreshFacets})
	}
	for _, id := range sailings {
		jobs = append(jobs, job{kind: "detail", id: id, run: q.RefreshDetail})
	}

	sem := semaphore.NewWeighted(int64(cfg.WarmWorkers))
	var wg sync.WaitGroup
	var failed atomic.Int64

	for _, j := range jobs {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(j job) {
			defer wg.Done()
			defer sem.Release(1)

			if err := j.run(ctx, j.id); err != nil {
				failed.Add(1)
				log.Warn().Str("kind", j.kind).Str("id", j.id).Err(err).Msg("warm failed")
				return
			}
			log.Debug().Str("kind", j.kind).Str("id", j.id).Msg("warm ok")
		}(j)
	}

	wg.Wait()
	log.Info().
		Int("jobs", len(jobs)).
		Int64("failed", failed.Load()).
		Msg("warm-up completed")
}
