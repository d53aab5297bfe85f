// internal/adapters/in/http/handlers/page_handler.go
package handlers

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"pokemint/internal/adapters/in/http/middleware"
	usecase "pokemint/internal/application/usecase"
	nftdom "pokemint/internal/domain/nft"
	sessiondom "pokemint/internal/domain/session"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html.tmpl"))

type pageData struct {
	Tab       string
	Wallet    string
	Available usecase.AvailableView
	Owned     []nftdom.OwnedItem
	Balance   *usecase.Balance
	FeeSOL    float64
	Error     string
}

// PageHandler renders the collection page for the current session.
type PageHandler struct {
	uc          *usecase.CollectionUsecase
	feeLamports uint64
	log         *zap.Logger
}

func NewPageHandler(uc *usecase.CollectionUsecase, feeLamports uint64, log *zap.Logger) *PageHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &PageHandler{uc: uc, feeLamports: feeLamports, log: log.Named("http.page")}
}

// GET /?tab=available|owned&wallet=...
func (h *PageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid := middleware.SessionID(r)
	data := pageData{FeeSOL: float64(h.feeLamports) / usecase.LamportsPerSOL}

	q := r.URL.Query()
	if wallet := strings.TrimSpace(q.Get("wallet")); wallet != "" {
		if _, err := h.uc.ConnectWallet(sid, wallet); err != nil {
			data.Error = "Invalid wallet address"
		}
	}
	if tab := q.Get("tab"); tab != "" {
		if _, err := h.uc.SetTab(sid, tab); errors.Is(err, sessiondom.ErrInvalidTab) {
			data.Error = "Unknown tab " + tab
		}
	}

	st := h.uc.Session(sid)
	data.Tab = string(st.ActiveTab)
	data.Wallet = st.Wallet

	switch st.ActiveTab {
	case sessiondom.TabOwned:
		if data.Wallet != "" {
			items, err := h.uc.ListOwned(ctx, data.Wallet)
			if err != nil {
				h.log.Error("owned view", zap.Error(err))
				data.Error = "Could not load your NFTs"
			}
			data.Owned = items
		}
	default:
		view, err := h.uc.Available(ctx, sid)
		if err != nil {
			h.log.Error("available view", zap.Error(err))
			data.Error = "Catalog unavailable"
		}
		data.Available = view
	}
	if data.Wallet != "" {
		if b, err := h.uc.Balance(ctx, data.Wallet); err == nil {
			data.Balance = &b
		}
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		h.log.Error("render page", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
