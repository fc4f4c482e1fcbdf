// Package main runs the background jobs: the outbox dispatcher feeding the
// balance keeper and the daily recurring rule scheduler.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/go-petr/pet-finance/internal/balancekeeper"
	"github.com/go-petr/pet-finance/internal/dispatcher"
	"github.com/go-petr/pet-finance/internal/eventrepo"
	"github.com/go-petr/pet-finance/internal/middleware"
	"github.com/go-petr/pet-finance/internal/profilerepo"
	"github.com/go-petr/pet-finance/internal/recurring"
	"github.com/go-petr/pet-finance/internal/recurringrepo"
	"github.com/go-petr/pet-finance/internal/scheduler"
	"github.com/go-petr/pet-finance/pkg/configpkg"
	"github.com/go-petr/pet-finance/pkg/dbpkg"
	"github.com/go-petr/pet-finance/pkg/lockpkg"

	_ "github.com/lib/pq"
)

const lockPrefix = "pet-finance:"

func newLocker(config configpkg.Config, logger zerolog.Logger) lockpkg.Locker {
	if config.RedisAddr == "" {
		logger.Warn().Msg("REDIS_ADDR is empty, recurring runs are only deduplicated within this process")
		return lockpkg.NewMemoryLocker()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.RedisAddr,
		Password: config.RedisPassword,
		DB:       config.RedisDB,
	})

	return lockpkg.NewRedisLocker(client, lockPrefix)
}

func main() {
	config, err := configpkg.Load("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	logger := middleware.CreateLogger(config)

	db, err := dbpkg.Setup(config.DBDriver, config.DBSource)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot connect to database")
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d := dispatcher.New(
		eventrepo.NewRepoPGS(db),
		balancekeeper.New(balancekeeper.NewStorePGS(db)),
		dispatcher.Config{
			Interval:    config.DispatchInterval,
			BatchSize:   config.DispatchBatchSize,
			MaxAttempts: config.EventMaxAttempts,
		},
	)

	s := scheduler.New(
		recurring.New(profilerepo.NewRepoPGS(db), recurringrepo.NewRepoPGS(db)),
		newLocker(config, logger),
		config.RecurringSchedule,
		config.RecurringLockTTL,
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		l := logger.With().Str("component", "dispatcher").Logger()
		return d.Run(l.WithContext(gctx))
	})

	g.Go(func() error {
		l := logger.With().Str("component", "scheduler").Logger()
		return s.Run(l.WithContext(gctx))
	})

	logger.Info().Msg("FINANCE WORKER HAS STARTED")

	if err := g.Wait(); err != nil {
		logger.Fatal().Err(err).Msg("worker stopped")
	}

	logger.Info().Msg("worker stopped")
}
