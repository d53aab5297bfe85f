// internal/adapters/in/http/handlers/mint_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"pokemint/internal/adapters/in/http/middleware"
	usecase "pokemint/internal/application/usecase"
	nftdom "pokemint/internal/domain/nft"
	receiptdom "pokemint/internal/domain/receipt"
	sessiondom "pokemint/internal/domain/session"
)

// Messages shown to the buyer.
const (
	msgConnectWallet     = "Connect your wallet first"
	msgTransactionFailed = "Transaction failed. Try again!"
)

// WalletSessions tells which wallet a browser session has connected.
// *usecase.CollectionUsecase satisfies it.
type WalletSessions interface {
	Session(sessionID string) sessiondom.ViewState
}

// MintHandler opens packs for the session's connected wallet and exposes
// the receipts operators use to review failed mints. The wallet signs and
// pays for both transactions; the server never spends its own funds here.
type MintHandler struct {
	uc       *usecase.MintUsecase
	sessions WalletSessions
	log      *zap.Logger
}

func NewMintHandler(uc *usecase.MintUsecase, sessions WalletSessions, log *zap.Logger) *MintHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &MintHandler{uc: uc, sessions: sessions, log: log.Named("http.mint")}
}

func (h *MintHandler) sessionWallet(r *http.Request) string {
	if h.sessions == nil {
		return ""
	}
	return h.sessions.Session(middleware.SessionID(r)).Wallet
}

// POST /api/packs
//
// Answers the prepared order: the fee transfer and the mint transaction
// for the connected wallet to sign.
func (h *MintHandler) PreparePack(w http.ResponseWriter, r *http.Request) {
	order, err := h.uc.PreparePack(r.Context(), h.sessionWallet(r))
	if err != nil {
		h.writePackErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

type submitPackRequest struct {
	FeeTransaction  []byte `json:"feeTransaction"`
	MintTransaction []byte `json:"mintTransaction"`
}

// POST /api/packs/{id}
//
// Body: both transactions of the order, signed by the wallet (base64).
func (h *MintHandler) SubmitPack(w http.ResponseWriter, r *http.Request) {
	wallet := h.sessionWallet(r)
	if wallet == "" {
		writeError(w, http.StatusBadRequest, msgConnectWallet)
		return
	}

	var body submitPackRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSignedBody)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if len(body.FeeTransaction) == 0 || len(body.MintTransaction) == 0 {
		writeError(w, http.StatusBadRequest, "feeTransaction and mintTransaction are required")
		return
	}

	out, err := h.uc.SubmitPack(r.Context(), wallet, chi.URLParam(r, "id"), body.FeeTransaction, body.MintTransaction)
	if err != nil {
		h.writePackErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// two legacy transactions of at most 1232 bytes each, base64 encoded
const maxSignedBody = 8 << 10

func (h *MintHandler) writePackErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, usecase.ErrWalletNotConnected), errors.Is(err, nftdom.ErrInvalidAddress):
		writeError(w, http.StatusBadRequest, msgConnectWallet)
		return
	case errors.Is(err, usecase.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, "pack order not found or expired")
		return
	case errors.Is(err, usecase.ErrSignatureRejected):
		writeError(w, http.StatusBadRequest, "signed transaction does not match the order")
		return
	case errors.Is(err, usecase.ErrTooManyOrders):
		writeError(w, http.StatusServiceUnavailable, "too many pending packs, try again later")
		return
	}
	uid, _ := middleware.CurrentUserUID(r)
	h.log.Warn("buy pack", zap.String("uid", uid), zap.Error(err))
	writeError(w, http.StatusBadGateway, msgTransactionFailed)
}

// GET /api/receipts/{id}
func (h *MintHandler) GetReceipt(w http.ResponseWriter, r *http.Request) {
	rec, err := h.uc.GetReceipt(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeReceiptErr(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// GET /api/wallets/{address}/receipts?limit=20
func (h *MintHandler) ListReceipts(w http.ResponseWriter, r *http.Request) {
	list, err := h.uc.ListReceipts(r.Context(), chi.URLParam(r, "address"), parseIntDefault(r.URL.Query().Get("limit"), 20))
	if err != nil {
		writeReceiptErr(w, h.log, err)
		return
	}
	if list == nil {
		list = []receiptdom.MintReceipt{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": list})
}

func writeReceiptErr(w http.ResponseWriter, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, receiptdom.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, nftdom.ErrInvalidAddress):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeInternalError(w, log, err)
	}
}
