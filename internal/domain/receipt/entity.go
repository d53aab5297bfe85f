// internal/domain/receipt/entity.go
package receipt

import (
	"errors"
	"strings"
	"time"
)

// Domain errors
var (
	ErrNotFound          = errors.New("receipt: not found")
	ErrInvalidID         = errors.New("receipt: invalid id")
	ErrInvalidWallet     = errors.New("receipt: invalid wallet")
	ErrInvalidTransition = errors.New("receipt: invalid status transition")
)

// Status of one buy-pack attempt.
type Status string

const (
	StatusPending    Status = "pending"
	StatusFeeCharged Status = "fee_charged"
	StatusMinted     Status = "minted"
	StatusFailed     Status = "failed"
)

// Stage names the step a failed attempt stopped at.
type Stage string

const (
	StageFee  Stage = "fee"
	StageMint Stage = "mint"
)

// MintReceipt records what happened during one buy-pack attempt.
// A receipt in failed/mint with a fee signature means the wallet paid
// and got nothing; it is never refunded automatically.
type MintReceipt struct {
	ID            string    `json:"id"`
	Wallet        string    `json:"wallet"`
	Collectible   string    `json:"collectible"`
	Shining       bool      `json:"shining"`
	MetadataURI   string    `json:"metadataUri"`
	FeeLamports   uint64    `json:"feeLamports"`
	Treasury      string    `json:"treasury"`
	FeeSignature  string    `json:"feeSignature,omitempty"`
	MintAddress   string    `json:"mintAddress,omitempty"`
	MintSignature string    `json:"mintSignature,omitempty"`
	Status        Status    `json:"status"`
	FailureStage  Stage     `json:"failureStage,omitempty"`
	FailureReason string    `json:"failureReason,omitempty"`
	ProgramLogs   []string  `json:"programLogs,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// New starts a pending receipt.
func New(id, wallet, collectible string, shining bool, metadataURI string, feeLamports uint64, treasury string, now time.Time) (MintReceipt, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return MintReceipt{}, ErrInvalidID
	}
	wallet = strings.TrimSpace(wallet)
	if wallet == "" {
		return MintReceipt{}, ErrInvalidWallet
	}
	return MintReceipt{
		ID:          id,
		Wallet:      wallet,
		Collectible: collectible,
		Shining:     shining,
		MetadataURI: metadataURI,
		FeeLamports: feeLamports,
		Treasury:    treasury,
		Status:      StatusPending,
		CreatedAt:   now.UTC(),
		UpdatedAt:   now.UTC(),
	}, nil
}

// MarkFeeCharged records the confirmed fee transfer.
func (r *MintReceipt) MarkFeeCharged(sig string, now time.Time) error {
	if r.Status != StatusPending {
		return ErrInvalidTransition
	}
	r.FeeSignature = sig
	r.Status = StatusFeeCharged
	r.UpdatedAt = now.UTC()
	return nil
}

// MarkMinted records the confirmed program call.
func (r *MintReceipt) MarkMinted(mintAddr, sig string, now time.Time) error {
	if r.Status != StatusFeeCharged {
		return ErrInvalidTransition
	}
	r.MintAddress = mintAddr
	r.MintSignature = sig
	r.Status = StatusMinted
	r.UpdatedAt = now.UTC()
	return nil
}

// MarkFailed closes the receipt. Minted receipts cannot fail.
func (r *MintReceipt) MarkFailed(stage Stage, reason string, logs []string, now time.Time) error {
	if r.Status == StatusMinted || r.Status == StatusFailed {
		return ErrInvalidTransition
	}
	r.Status = StatusFailed
	r.FailureStage = stage
	r.FailureReason = reason
	r.ProgramLogs = logs
	r.UpdatedAt = now.UTC()
	return nil
}

// NeedsRefundReview is true when the fee was charged but no NFT was minted.
func (r MintReceipt) NeedsRefundReview() bool {
	return r.Status == StatusFailed && r.FailureStage == StageMint && r.FeeSignature != ""
}
