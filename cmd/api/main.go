// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httpin "pokemint/internal/adapters/in/http"
	"pokemint/internal/infra/config"
	"pokemint/internal/infra/logger"
	"pokemint/internal/platform/di"
)

func main() {
	cfg := config.Load()

	root, err := logger.New(cfg.AppEnv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = root.Sync() }()
	log := root.Named("boot")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ─────────────────────────────────────────────────────────────
	// /healthz answers even when DI fails, so Cloud Run sees the port
	// ─────────────────────────────────────────────────────────────
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	cont, err := di.NewContainer(ctx, cfg, root)
	if err != nil {
		log.Error("di init failed; serving /healthz only", zap.Error(err))
	} else {
		defer cont.Close()
		deps := cont.RouterDeps()
		log.Info("router deps",
			zap.Bool("firebaseAuth", deps.Auth != nil),
			zap.String("receiptStore", cfg.ReceiptStore),
		)
		mux.Handle("/", httpin.NewRouter(deps))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		// buy-pack waits for two confirmations
		WriteTimeout: 3 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown error", zap.Error(err))
		}
	}
	log.Info("server stopped")
}
