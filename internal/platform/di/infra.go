// internal/platform/di/infra.go
package di

import (
	"context"
	"errors"
	"fmt"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"pokemint/internal/infra/config"
	"pokemint/internal/infra/database"
	firestoreinfra "pokemint/internal/infra/firestore"
)

// Infra owns the external clients the container wires.
//
// The receipt store and Firebase Auth (when enabled) are strict: a failure
// aborts startup. GCS and Secret Manager are best-effort (warn + continue).
type Infra struct {
	Config *config.Config

	Firestore     *firestoreinfra.ClientWrapper // RECEIPT_STORE=firestore
	DB            *database.DB                  // RECEIPT_STORE=postgres
	GCS           *storage.Client
	SecretManager *secretmanager.Client
	FirebaseAuth  *firebaseauth.Client

	closers []func() error
}

func NewInfra(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Infra, error) {
	if cfg == nil {
		return nil, errors.New("di.infra: config is nil")
	}
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("infra")
	in := &Infra{Config: cfg}

	var opts []option.ClientOption
	if cfg.GCPCreds != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.GCPCreds))
	}

	// 1. receipts
	switch cfg.ReceiptStore {
	case config.ReceiptStoreFirestore:
		fs, err := firestoreinfra.NewClient(ctx, cfg.GCPProjectID, cfg.GCPCreds, log)
		if err != nil {
			return nil, err
		}
		in.Firestore = fs
		in.closers = append(in.closers, fs.Close)
	case config.ReceiptStorePostgres:
		db, err := database.NewConnection(ctx, cfg.DatabaseURL, log)
		if err != nil {
			return nil, err
		}
		in.closers = append(in.closers, db.Close)
		if err := db.Migrate(ctx); err != nil {
			in.Close()
			return nil, err
		}
		in.DB = db
	case config.ReceiptStoreNone, "":
		log.Info("receipt store disabled")
	default:
		return nil, fmt.Errorf("di.infra: unknown RECEIPT_STORE %q", cfg.ReceiptStore)
	}

	// 2. artwork bucket
	if cfg.ArtworkBucket != "" {
		gcs, err := storage.NewClient(ctx, opts...)
		if err != nil {
			log.Warn("GCS client init failed; artwork existence checks disabled", zap.Error(err))
		} else {
			in.GCS = gcs
			in.closers = append(in.closers, gcs.Close)
		}
	}

	// 3. payer key secret
	if cfg.PayerKeySecret != "" {
		sm, err := secretmanager.NewClient(ctx, opts...)
		if err != nil {
			log.Warn("secret manager init failed", zap.Error(err))
		} else {
			in.SecretManager = sm
			in.closers = append(in.closers, sm.Close)
		}
	}

	// 4. Firebase Auth guard for buy-pack
	if cfg.FirebaseAuthEnabled {
		app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.GCPProjectID}, opts...)
		if err != nil {
			in.Close()
			return nil, fmt.Errorf("di.infra: firebase app: %w", err)
		}
		auth, err := app.Auth(ctx)
		if err != nil {
			in.Close()
			return nil, fmt.Errorf("di.infra: firebase auth: %w", err)
		}
		in.FirebaseAuth = auth
		log.Info("firebase auth initialized", zap.String("project", cfg.GCPProjectID))
	}

	return in, nil
}

// Close releases clients in reverse order of creation.
func (in *Infra) Close() {
	if in == nil {
		return
	}
	for i := len(in.closers) - 1; i >= 0; i-- {
		_ = in.closers[i]()
	}
	in.closers = nil
}
