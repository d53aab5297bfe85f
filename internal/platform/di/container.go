// internal/platform/di/container.go
package di

import (
	"context"
	"fmt"
	"time"

	"github.com/blocto/solana-go-sdk/common"
	"go.uber.org/zap"

	httpin "pokemint/internal/adapters/in/http"
	"pokemint/internal/adapters/in/http/middleware"
	dbout "pokemint/internal/adapters/out/db"
	fsout "pokemint/internal/adapters/out/firestore"
	gcsout "pokemint/internal/adapters/out/gcs"
	httpout "pokemint/internal/adapters/out/http"
	mailout "pokemint/internal/adapters/out/mail"
	usecase "pokemint/internal/application/usecase"
	catalogdom "pokemint/internal/domain/catalog"
	nftdom "pokemint/internal/domain/nft"
	receiptdom "pokemint/internal/domain/receipt"
	sessiondom "pokemint/internal/domain/session"
	"pokemint/internal/infra/arweave"
	"pokemint/internal/infra/config"
	solanainfra "pokemint/internal/infra/solana"
)

// Container is what main.go needs: the router deps plus resources to close.
type Container struct {
	Config *config.Config
	Infra  *Infra

	CollectionUC *usecase.CollectionUsecase
	MintUC       *usecase.MintUsecase
	Payer        *solanainfra.KeypairSession

	deps httpin.RouterDeps
}

func NewContainer(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Container, error) {
	if log == nil {
		log = zap.NewNop()
	}

	// 1. config sanity
	treasury, err := nftdom.ValidateAddress(cfg.TreasuryAddress)
	if err != nil {
		return nil, fmt.Errorf("di: TREASURY_ADDRESS: %w", err)
	}
	programID, err := publicKey("POKEMON_PROGRAM_ID", cfg.PokemonProgramID)
	if err != nil {
		return nil, err
	}
	metadataProgramID, err := publicKey("TOKEN_METADATA_PROGRAM_ID", cfg.TokenMetadataProgramID)
	if err != nil {
		return nil, err
	}

	cat, err := loadCatalog(cfg)
	if err != nil {
		return nil, err
	}
	log.Info("catalog loaded",
		zap.Int("pokemon", len(cat.Pokemon)),
		zap.Int("shining", len(cat.Shining)),
		zap.Int("mappings", len(cat.Mappings)),
	)

	// 2. external clients
	in, err := NewInfra(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	// 3. outbound adapters
	chain := solanainfra.NewChainClient(cfg.RPCEndpoint)
	rpc := solanainfra.NewJSONRPCClient(cfg.RPCEndpoint, cfg.Commitment)
	reader := solanainfra.NewWalletNFTReader(rpc, chain, metadataProgramID, log)
	fetcher := httpout.NewMetadataFetcher(10 * time.Second)

	artwork := gcsout.NewArtworkRepositoryGCS(in.GCS, cfg.ArtworkBucket, cfg.ArtworkBaseURL)

	var uploader usecase.ArweaveUploader
	if up := arweave.NewHTTPUploader(cfg.ArweaveBaseURL, cfg.ArweaveAPIKey, log); up.Configured() {
		uploader = up
	}

	var receipts receiptdom.Repository
	switch {
	case in.Firestore != nil:
		receipts = fsout.NewMintReceiptRepositoryFS(in.Firestore.Client)
	case in.DB != nil:
		receipts = dbout.NewMintReceiptRepositoryPG(in.DB.Client)
	}

	payer, err := solanainfra.LoadPayer(ctx, cfg.PayerKeypairFile, cfg.PayerKeySecret, in.SecretManager, log)
	if err != nil {
		// only the command line buyer signs with this key
		log.Warn("payer keypair unavailable", zap.Error(err))
		payer = nil
	}

	// 4. usecases
	collectionUC := usecase.NewCollectionUsecase(reader, fetcher, log).
		WithBalanceReader(chain).
		WithCatalog(cat, artwork).
		WithSessions(sessiondom.NewStore())

	mintUC := usecase.NewMintUsecase(
		catalogdom.NewPicker(cat, cfg.ShiningChance, nil),
		usecase.NewMetadataResolver(artwork, uploader, cfg.PublicBaseURL),
		solanainfra.NewFeeTransfer(chain, log),
		solanainfra.NewProgramMinter(chain, programID, metadataProgramID, cfg.PrepareMint, log),
		solanainfra.NewTxSubmitter(chain, log),
		solanainfra.NewSignatureConfirmer(chain, cfg.ConfirmPollInterval, log),
		usecase.MintConfig{
			Treasury:    treasury,
			FeeLamports: cfg.PackFeeLamports,
		},
		log,
	).WithNotifier(mailout.NewRefundReviewNotifierWithSendGrid(cfg, log))
	if receipts != nil {
		mintUC = mintUC.WithReceipts(receipts)
	}

	// 5. inbound
	var auth *middleware.AuthMiddleware
	if in.FirebaseAuth != nil {
		auth = &middleware.AuthMiddleware{Verifier: in.FirebaseAuth, Log: log.Named("auth")}
	}

	c := &Container{
		Config:       cfg,
		Infra:        in,
		CollectionUC: collectionUC,
		MintUC:       mintUC,
		Payer:        payer,
	}
	c.deps = httpin.RouterDeps{
		CollectionUC:    collectionUC,
		MintUC:          mintUC,
		PackFeeLamports: cfg.PackFeeLamports,
		Sessions:        middleware.NewSessions(cfg.SessionSecret, cfg.AppEnv != "local", log),
		Auth:            auth,
		AllowedOrigins:  cfg.CORSAllowedOrigins,
		Log:             log,
	}
	return c, nil
}

// RouterDeps returns the dependencies for httpin.NewRouter.
func (c *Container) RouterDeps() httpin.RouterDeps {
	return c.deps
}

func (c *Container) Close() {
	if c == nil {
		return
	}
	c.Infra.Close()
}

func loadCatalog(cfg *config.Config) (*catalogdom.Catalog, error) {
	if cfg.CatalogDir != "" {
		c, err := catalogdom.LoadDir(cfg.CatalogDir)
		if err != nil {
			return nil, fmt.Errorf("di: CATALOG_DIR: %w", err)
		}
		return c, nil
	}
	return catalogdom.LoadBundled()
}

func publicKey(name, value string) (common.PublicKey, error) {
	if _, err := nftdom.ValidateAddress(value); err != nil {
		return common.PublicKey{}, fmt.Errorf("di: %s: %w", name, err)
	}
	return common.PublicKeyFromString(value), nil
}
