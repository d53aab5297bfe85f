// internal/adapters/in/http/router.go
package httpin

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"pokemint/internal/adapters/in/http/handlers"
	"pokemint/internal/adapters/in/http/middleware"
	usecase "pokemint/internal/application/usecase"
	catalogdom "pokemint/internal/domain/catalog"
)

// RouterDeps collects the usecases and middleware wired in main.go.
type RouterDeps struct {
	CollectionUC *usecase.CollectionUsecase
	MintUC       *usecase.MintUsecase

	PackFeeLamports uint64

	Sessions       *middleware.Sessions
	Auth           *middleware.AuthMiddleware // nil = packs need only a connected wallet
	AllowedOrigins []string

	Log *zap.Logger
}

// NewRouter sets up HTTP routing for the collection page and API.
func NewRouter(deps RouterDeps) http.Handler {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	sessions := deps.Sessions
	if sessions == nil {
		sessions = middleware.NewSessions("", false, log)
	}

	collection := handlers.NewCollectionHandler(deps.CollectionUC, log)
	mint := handlers.NewMintHandler(deps.MintUC, deps.CollectionUC, log)
	page := handlers.NewPageHandler(deps.CollectionUC, deps.PackFeeLamports, log)

	r := chi.NewRouter()
	// CORS outermost so even panics answer with CORS headers.
	r.Use(middleware.CORS(deps.AllowedOrigins))
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLog(log.Named("http")))
	r.Use(middleware.Recover(log.Named("http")))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Token metadata referenced by minted NFTs; no session needed.
	r.Get("/metadata/{file}", collection.TokenMetadata(catalogdom.VariantRegular))
	r.Get("/metadata/shiny/{file}", collection.TokenMetadata(catalogdom.VariantShining))

	r.Group(func(r chi.Router) {
		r.Use(sessions.Handler)

		r.Method(http.MethodGet, "/", page)

		r.Route("/api", func(r chi.Router) {
			r.Get("/catalog", collection.Catalog)
			r.Get("/wallets/{address}/nfts", collection.OwnedNFTs)
			r.Get("/wallets/{address}/balance", collection.Balance)
			r.Get("/wallets/{address}/receipts", mint.ListReceipts)
			r.Get("/receipts/{id}", mint.GetReceipt)

			r.Get("/session", collection.GetSession)
			r.Put("/session/tab", collection.SetTab)
			r.Put("/session/wallet", collection.SetWallet)
			r.Post("/session/image-errors/{key}", collection.MarkImageError)

			r.With(deps.Auth.Handler).Post("/packs", mint.PreparePack)
			r.With(deps.Auth.Handler).Post("/packs/{id}", mint.SubmitPack)
		})
	})

	return r
}
