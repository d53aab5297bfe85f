// internal/adapters/in/http/handlers/collection_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"pokemint/internal/adapters/in/http/middleware"
	usecase "pokemint/internal/application/usecase"
	catalogdom "pokemint/internal/domain/catalog"
	nftdom "pokemint/internal/domain/nft"
	sessiondom "pokemint/internal/domain/session"
)

// CollectionHandler serves the catalog, the owned view, balances, the
// per-session view state and the self-hosted token metadata.
type CollectionHandler struct {
	uc  *usecase.CollectionUsecase
	log *zap.Logger
}

func NewCollectionHandler(uc *usecase.CollectionUsecase, log *zap.Logger) *CollectionHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &CollectionHandler{uc: uc, log: log.Named("http.collection")}
}

// GET /api/catalog
func (h *CollectionHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	view, err := h.uc.Available(r.Context(), middleware.SessionID(r))
	if err != nil {
		h.log.Error("catalog", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "catalog unavailable")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// GET /api/wallets/{address}/nfts
func (h *CollectionHandler) OwnedNFTs(w http.ResponseWriter, r *http.Request) {
	addr := chi.URLParam(r, "address")
	items, err := h.uc.ListOwned(r.Context(), addr)
	if err != nil {
		writeCollectionErr(w, h.log, err)
		return
	}
	if items == nil {
		items = []nftdom.OwnedItem{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"wallet": strings.TrimSpace(addr),
		"items":  items,
	})
}

// GET /api/wallets/{address}/balance
func (h *CollectionHandler) Balance(w http.ResponseWriter, r *http.Request) {
	b, err := h.uc.Balance(r.Context(), chi.URLParam(r, "address"))
	if err != nil {
		writeCollectionErr(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// GET /api/session
func (h *CollectionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.uc.Session(middleware.SessionID(r)))
}

// PUT /api/session/tab  {"tab":"owned"}
func (h *CollectionHandler) SetTab(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Tab string `json:"tab"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	st, err := h.uc.SetTab(middleware.SessionID(r), body.Tab)
	if err != nil {
		writeCollectionErr(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// PUT /api/session/wallet  {"wallet":"..."}
func (h *CollectionHandler) SetWallet(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Wallet string `json:"wallet"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	st, err := h.uc.ConnectWallet(middleware.SessionID(r), body.Wallet)
	if err != nil {
		writeCollectionErr(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// POST /api/session/image-errors/{key}
func (h *CollectionHandler) MarkImageError(w http.ResponseWriter, r *http.Request) {
	st, err := h.uc.MarkImageError(middleware.SessionID(r), chi.URLParam(r, "key"))
	if err != nil {
		writeCollectionErr(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// GET /metadata/{name}.json and /metadata/shiny/{name}.json
func (h *CollectionHandler) TokenMetadata(v catalogdom.Variant) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		file := chi.URLParam(r, "file")
		if !strings.HasSuffix(file, ".json") {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}
		name := strings.TrimSuffix(file, ".json")
		if unescaped, err := url.PathUnescape(name); err == nil {
			name = unescaped
		}
		md, err := h.uc.TokenMetadata(name, v)
		if err != nil {
			writeCollectionErr(w, h.log, err)
			return
		}
		writeJSON(w, http.StatusOK, md)
	}
}

func writeCollectionErr(w http.ResponseWriter, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, nftdom.ErrInvalidAddress),
		errors.Is(err, sessiondom.ErrInvalidTab),
		errors.Is(err, sessiondom.ErrEmptyKey):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, usecase.ErrCollectibleNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeInternalError(w, log, err)
	}
}
