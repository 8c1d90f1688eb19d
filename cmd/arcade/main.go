// Package main is the entry point for the Brain Arcade bot.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"brain-arcade/internal/bot"
	"brain-arcade/internal/config"
	"brain-arcade/internal/game"
	"brain-arcade/internal/pkg/db"
	"brain-arcade/internal/pkg/lock"
	"brain-arcade/internal/review"
	"brain-arcade/internal/service"
	"brain-arcade/internal/storage"
)

const appName = "brain-arcade"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		log.Warn().Str("level", cfg.Log.Level).Msg("Unknown log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Info().Str("storage", cfg.Storage.Driver).Msg("Configuration loaded successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open storage")
	}
	defer closeStore()

	games := game.DefaultCatalog()
	log.Info().
		Int("game_count", games.Count()).
		Strs("games", games.IDs()).
		Msg("Games registered")

	submitter := review.NewSubmitter(cfg.Reviews.Endpoint, appName, cfg.Reviews.Timeout)
	if !submitter.Enabled() {
		log.Info().Msg("Review endpoint not configured, reviews are kept locally only")
	}

	arcade := service.NewArcadeService(
		store,
		games,
		review.NewBook(ctx, store),
		submitter,
		lock.NewKeyed[int64](),
		service.Options{
			Location:         cfg.Storage.Location(),
			LevelUpGrant:     cfg.Rewards.LevelUpGrant,
			AchievementGrant: cfg.Rewards.AchievementGrant,
		},
	)

	telegramBot, err := bot.New(&bot.Dependencies{
		Config: cfg,
		Arcade: arcade,
		Games:  games,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create bot")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go telegramBot.Start()

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	telegramBot.Stop()

	flushCtx, flushCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer flushCancel()
	if err := arcade.Close(flushCtx); err != nil {
		log.Error().Err(err).Msg("Failed to flush progress")
	}
	log.Info().Msg("Bot stopped gracefully")
}

// openStore opens the configured storage backend. The returned func releases
// it and everything it owns.
func openStore(ctx context.Context, cfg *config.Config) (storage.Store, func(), error) {
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		log.Warn().Msg("Using in-memory storage, progress is lost on restart")
		s := storage.NewMemoryStore()
		return s, func() { _ = s.Close() }, nil

	case config.DriverSQLite:
		s, err := storage.OpenSQLite(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {
			if err := s.Close(); err != nil {
				log.Error().Err(err).Msg("Failed to close SQLite store")
			}
		}, nil

	case config.DriverPostgres:
		pool, err := db.NewPool(ctx, &cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		s := storage.NewPostgresStore(pool.Pool)
		if err := s.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return s, pool.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}
