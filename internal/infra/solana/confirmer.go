// internal/infra/solana/confirmer.go
package solana

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/blocto/solana-go-sdk/rpc"
	"go.uber.org/zap"

	"pokemint/internal/infra/logger"
)

// SignatureConfirmer polls getSignatureStatuses until a signature reaches
// the requested commitment. It implements usecase.Confirmer.
type SignatureConfirmer struct {
	Chain    ChainClient
	Interval time.Duration
	Log      *zap.Logger
}

func NewSignatureConfirmer(chain ChainClient, interval time.Duration, log *zap.Logger) *SignatureConfirmer {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &SignatureConfirmer{Chain: chain, Interval: interval, Log: log.Named("confirmer")}
}

func commitmentLevel(c rpc.Commitment) int {
	switch c {
	case rpc.CommitmentProcessed:
		return 0
	case rpc.CommitmentConfirmed:
		return 1
	case rpc.CommitmentFinalized:
		return 2
	}
	return -1
}

// reached reports whether status is at least want. A status without
// confirmationStatus and without a confirmation count is rooted.
func reached(status *rpc.SignatureStatus, want rpc.Commitment) bool {
	got := rpc.CommitmentProcessed
	switch {
	case status.ConfirmationStatus != nil:
		got = *status.ConfirmationStatus
	case status.Confirmations == nil:
		got = rpc.CommitmentFinalized
	}
	return commitmentLevel(got) >= commitmentLevel(want)
}

// Confirm blocks until sig reaches commitment, the transaction errors on
// chain, or ctx is done. RPC errors while polling are retried.
func (c *SignatureConfirmer) Confirm(ctx context.Context, sig string, commitment string) error {
	if c == nil || c.Chain == nil {
		return fmt.Errorf("confirmer: %w", ErrNotConfigured)
	}
	want := rpc.Commitment(strings.ToLower(strings.TrimSpace(commitment)))
	if commitmentLevel(want) < 0 {
		want = rpc.CommitmentConfirmed
	}

	ticker := time.NewTicker(c.Interval)
	defer ticker.Stop()

	var lastErr error
	for {
		status, err := c.Chain.GetSignatureStatus(ctx, sig)
		switch {
		case err != nil:
			lastErr = err
			c.Log.Debug("signature status poll failed", zap.String("tx", logger.MaskShort(sig)), zap.Error(err))
		case status == nil:
			// not seen by the node yet
		case status.Err != nil:
			return &TxError{
				Op:  "confirm",
				Err: fmt.Errorf("%w: %v", ErrTransactionFailed, status.Err),
			}
		case reached(status, want):
			return nil
		}

		select {
		case <-ctx.Done():
			if lastErr != nil {
				return fmt.Errorf("confirmer: %s not %s: %w (last rpc error: %v)", logger.MaskShort(sig), want, ctx.Err(), lastErr)
			}
			return fmt.Errorf("confirmer: %s not %s: %w", logger.MaskShort(sig), want, ctx.Err())
		case <-ticker.C:
		}
	}
}
