// cmd/migrate/main.go
//
// Applies the mint_receipts migrations to DATABASE_URL. The API runs the same
// migrations at startup when RECEIPT_STORE=postgres; this is for CI and
// one-off environments.
package main

import (
	"context"
	"os"
	"time"

	"go.uber.org/zap"

	"pokemint/internal/infra/config"
	"pokemint/internal/infra/database"
	"pokemint/internal/infra/logger"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.AppEnv)
	if err != nil {
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := database.NewConnection(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal("connect", zap.Error(err))
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Fatal("migrate", zap.Error(err))
	}
	log.Info("migrations applied")
}
