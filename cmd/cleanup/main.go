// Command cleanup removes pending user ingredients that no inventory record
// references and that are older than the configured retention period. It is
// intended to be invoked by an external cron job, not as an in-process
// goroutine.
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/heartmarshall/mealink-backend/internal/adapter/postgres"
	"github.com/heartmarshall/mealink-backend/internal/adapter/postgres/ingredient"
	"github.com/heartmarshall/mealink-backend/internal/app"
	"github.com/heartmarshall/mealink-backend/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log, "cleanup")

	if cfg.Store.Backend != config.BackendPostgres {
		logger.Error("cleanup requires the postgres store backend", slog.String("store", cfg.Store.Backend))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	repo := ingredient.New(pool)

	threshold := time.Now().Add(-cfg.Catalog.OrphanRetention)

	deleted, err := repo.DeleteOrphanedPending(ctx, threshold)
	if err != nil {
		logger.Error("orphan cleanup failed",
			slog.String("error", err.Error()),
			slog.Time("threshold", threshold),
		)
		os.Exit(1)
	}

	logger.Info("orphan cleanup completed",
		slog.Int64("deleted", deleted),
		slog.Time("threshold", threshold),
	)
}
