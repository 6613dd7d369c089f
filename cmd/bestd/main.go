package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"gobest/adapters/kde"
	"gobest/adapters/mcmc"
	"gobest/adapters/postgres"
	"gobest/app"
	"gobest/internal"
	"gobest/internal/config"
	"gobest/ui"
)

func main() {
	// .env is optional; shell environment wins.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading configuration: %v", err)
	}
	logger := internal.NewDefaultLogger()

	estimator := kde.NewGaussian()
	engine := mcmc.NewEngine(logger)
	service := app.NewService(engine, estimator, logger)

	var repo app.ResultsRepository
	if cfg.Database.URL != "" {
		db, err := sqlx.Connect("postgres", cfg.Database.URL)
		if err != nil {
			log.Fatalf("connecting to database: %v", err)
		}
		defer db.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := postgres.Migrate(ctx, db); err != nil {
			log.Fatalf("migrating database: %v", err)
		}
		repo = postgres.NewAnalysisRepository(db, estimator)
		logger.Info("analysis persistence enabled")
	}

	defaults := app.Options{
		Draws:        cfg.Sampler.Draws,
		Tuning:       cfg.Sampler.Tuning,
		Chains:       cfg.Sampler.Chains,
		TargetAccept: cfg.Sampler.TargetAccept,
	}
	server := ui.NewServer(service, repo, defaults, logger)

	addr := ":" + cfg.Server.Port
	logger.Info("listening on %s", addr)
	if err := http.ListenAndServe(addr, server.Router()); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
