// cmd/buypack/main.go
//
// Opens one pack from the command line with the same config as the API
// (payer keypair, RPC endpoint, receipt store) and prints the outcome.
// Useful as a devnet smoke test.
package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"go.uber.org/zap"

	"pokemint/internal/infra/config"
	"pokemint/internal/infra/logger"
	"pokemint/internal/platform/di"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.AppEnv)
	if err != nil {
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	container, err := di.NewContainer(ctx, cfg, log)
	if err != nil {
		log.Fatal("init container", zap.Error(err))
	}
	defer container.Close()

	if container.Payer == nil {
		log.Fatal("payer keypair not loaded; set PAYER_KEYPAIR_FILE or PAYER_KEY_SECRET")
	}

	out, err := container.MintUC.BuyPack(ctx, container.Payer)
	if err != nil {
		log.Fatal("Transaction failed. Try again!", zap.Error(err))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(out)
}
