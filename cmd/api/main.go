package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"clusterperm/adapters/memory"
	"clusterperm/adapters/postgres"
	"clusterperm/api"
	"clusterperm/app"
	"clusterperm/internal"
	"clusterperm/internal/config"
	"clusterperm/internal/errors"
	"clusterperm/ports"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	repo, cleanup, err := initRepository(cfg)
	if err != nil {
		log.Fatalf("storage error: %v", err)
	}
	defer cleanup()

	service := app.NewClusterService(repo)
	server := api.NewServer(cfg, service, repo)

	// Graceful shutdown on SIGINT/SIGTERM
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			internal.DefaultLogger.Error("shutdown failed: %v", err)
		}
	}()

	if err := server.Start(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// initRepository picks the run store: PostgreSQL when DATABASE_URL is set,
// process memory otherwise.
func initRepository(cfg *config.Config) (ports.RunRepository, func(), error) {
	if cfg.Database.URL == "" {
		internal.DefaultLogger.Warn("DATABASE_URL not set, storing runs in memory")
		return memory.NewRunRepository(), func() {}, nil
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to connect to database")
	}
	if err := postgres.InitSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, nil, errors.Wrap(err, "schema initialization failed")
	}
	return postgres.NewRunRepository(db), func() { db.Close() }, nil
}
