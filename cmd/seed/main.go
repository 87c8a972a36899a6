package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/escolalab/gestao-escolar-api/internal/migrations"
	"github.com/escolalab/gestao-escolar-api/internal/seed"
	"github.com/escolalab/gestao-escolar-api/pkg/config"
	"github.com/escolalab/gestao-escolar-api/pkg/database"
	"github.com/escolalab/gestao-escolar-api/pkg/logger"
)

func main() {
	command := "create"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	if err := migrations.Up(db.DB); err != nil {
		logr.Sugar().Fatalw("failed to run migrations", "error", err)
	}

	ctx := context.Background()

	switch command {
	case "create":
		if err := seed.Run(ctx, db, logr); err != nil {
			logr.Sugar().Fatalw("seed failed", "error", err)
		}
		logr.Sugar().Infow("sample data created")
	case "clear":
		if err := seed.Clear(ctx, db); err != nil {
			logr.Sugar().Fatalw("clear failed", "error", err)
		}
		logr.Sugar().Infow("database cleared")
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q (use: create, clear)\n", command)
		os.Exit(1)
	}
}
