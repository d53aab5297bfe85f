// internal/infra/solana/submitter.go
package solana

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
	"go.uber.org/zap"

	"pokemint/internal/infra/logger"
)

var (
	ErrTxMismatch       = errors.New("solana: signed transaction differs from the prepared one")
	ErrMissingSignature = errors.New("solana: transaction is missing a valid signature")
)

// TxSubmitter checks transactions signed by a wallet and sends them.
// It implements usecase.TxSubmitter.
type TxSubmitter struct {
	Chain ChainClient
	Log   *zap.Logger
}

func NewTxSubmitter(chain ChainClient, log *zap.Logger) *TxSubmitter {
	if log == nil {
		log = zap.NewNop()
	}
	return &TxSubmitter{Chain: chain, Log: log.Named("tx_submitter")}
}

// Verify accepts signed only when its message is byte-identical to
// prepared, signer is the fee payer and every required signature is valid.
func (s *TxSubmitter) Verify(prepared, signed []byte, signer string) error {
	want, err := types.TransactionDeserialize(prepared)
	if err != nil {
		return fmt.Errorf("deserialize prepared: %w", err)
	}
	got, err := types.TransactionDeserialize(signed)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTxMismatch, err)
	}

	wantMsg, err := want.Message.Serialize()
	if err != nil {
		return fmt.Errorf("serialize prepared message: %w", err)
	}
	gotMsg, err := got.Message.Serialize()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTxMismatch, err)
	}
	if !bytes.Equal(wantMsg, gotMsg) {
		return ErrTxMismatch
	}

	if len(got.Message.Accounts) == 0 || got.Message.Accounts[0] != common.PublicKeyFromString(signer) {
		return fmt.Errorf("%w: fee payer is not %s", ErrTxMismatch, logger.MaskShort(signer))
	}

	n := int(got.Message.Header.NumRequireSignatures)
	if len(got.Signatures) != n {
		return fmt.Errorf("%w: got %d signatures, want %d", ErrMissingSignature, len(got.Signatures), n)
	}
	for i := 0; i < n; i++ {
		key := got.Message.Accounts[i]
		if !ed25519.Verify(ed25519.PublicKey(key.Bytes()), gotMsg, got.Signatures[i]) {
			return fmt.Errorf("%w: %s", ErrMissingSignature, logger.MaskShort(key.ToBase58()))
		}
	}
	return nil
}

// Send submits a signed transaction and returns its signature. It does not
// wait for confirmation.
func (s *TxSubmitter) Send(ctx context.Context, signed []byte) (string, error) {
	if s == nil || s.Chain == nil {
		return "", fmt.Errorf("tx_submitter: %w", ErrNotConfigured)
	}
	tx, err := types.TransactionDeserialize(signed)
	if err != nil {
		return "", fmt.Errorf("tx_submitter: deserialize: %w", err)
	}
	sig, err := s.Chain.SendTransaction(ctx, tx)
	if err != nil {
		return "", wrapTxError("send", err)
	}
	s.Log.Info("transaction submitted", zap.String("tx", logger.MaskShort(sig)))
	return sig, nil
}
