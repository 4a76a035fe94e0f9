// Command promote activates a pending user ingredient after curation, and
// optionally moves it into the shared master catalog.
//
// Usage:
//
//	promote --id=<ingredient uuid> [--master]
//
// Reads the database settings from the regular configuration.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/mealink-backend/internal/adapter/postgres"
	"github.com/heartmarshall/mealink-backend/internal/adapter/postgres/ingredient"
	"github.com/heartmarshall/mealink-backend/internal/config"
	"github.com/heartmarshall/mealink-backend/internal/domain"
)

func main() {
	rawID := flag.String("id", "", "id of the pending ingredient to promote")
	toMaster := flag.Bool("master", false, "move the ingredient into the master catalog")
	flag.Parse()

	id, err := uuid.Parse(*rawID)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Usage: promote --id=<ingredient uuid> [--master]")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg.Database.DSN == "" {
		log.Fatal("database.dsn is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("connect to database: %v", err)
	}
	defer pool.Close()

	err = ingredient.New(pool).Promote(ctx, id, *toMaster)
	if errors.Is(err, domain.ErrNotFound) {
		fmt.Printf("No pending user ingredient with id %s.\n", id)
		os.Exit(1)
	}
	if err != nil {
		log.Fatalf("promote: %v", err)
	}

	if *toMaster {
		fmt.Printf("Ingredient %s moved to the master catalog.\n", id)
		return
	}
	fmt.Printf("Ingredient %s activated.\n", id)
}
