package application

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/playforge/tictactoe-ai-backend/internal/bot"
	"github.com/playforge/tictactoe-ai-backend/internal/config"
	"github.com/playforge/tictactoe-ai-backend/internal/repository"
	"github.com/playforge/tictactoe-ai-backend/internal/repository/storage"
	"github.com/playforge/tictactoe-ai-backend/internal/repository/storage/sqlite"
	"github.com/playforge/tictactoe-ai-backend/internal/usecase"
	"github.com/playforge/tictactoe-ai-backend/transport/rest"
)

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	statsRepo, closeStorage, err := buildStatsRepository(ctx, conf)
	if err != nil {
		return fmt.Errorf("could not set up statistics storage: %w", err)
	}

	defer func() {
		if closeErr := closeStorage(); closeErr != nil {
			log.Error("could not close statistics storage", "error", closeErr)
		}
	}()

	rng := rand.New(rand.NewSource(time.Now().UnixNano())) //nolint: gosec // game moves need no crypto randomness
	botService := bot.NewService(rng, conf.Bot.MediumOptimalRate)
	gameManager := usecase.NewGameManager(logger, botService, statsRepo)

	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		server := rest.New(logger, gameManager, statsRepo)
		if httpErr := server.Start(conf.HTTPPort); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}

// buildStatsRepository - wires the configured statistics backend.
func buildStatsRepository(ctx context.Context, conf *config.Config) (repository.StatsRepository, func() error, error) {
	switch conf.Stats.Storage {
	case config.StatsStorageRedis:
		redisStorage, err := storage.New(ctx, conf.Stats.Redis.GetRedisAddr())
		if err != nil {
			return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
		}

		return repository.NewRedisStatsRepository(redisStorage.Connection), redisStorage.Close, nil

	case config.StatsStorageSQLite:
		sqliteStorage, err := sqlite.New(conf.Stats.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("could not open sqlite storage: %w", err)
		}

		if err = sqliteStorage.Init(ctx); err != nil {
			return nil, nil, fmt.Errorf("could not init sqlite storage: %w", err)
		}

		return repository.NewSQLiteStatsRepository(sqliteStorage.Connection), sqliteStorage.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown stats storage %q", conf.Stats.Storage)
	}
}
