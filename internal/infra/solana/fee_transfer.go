// internal/infra/solana/fee_transfer.go
package solana

import (
	"context"
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/system"
	"github.com/blocto/solana-go-sdk/types"
	"go.uber.org/zap"

	nftdom "pokemint/internal/domain/nft"
	"pokemint/internal/infra/logger"
)

// FeeTransfer builds the pack fee transfer from the buyer's wallet to the
// treasury. It implements usecase.FeeCharger.
type FeeTransfer struct {
	Chain ChainClient
	Log   *zap.Logger
}

func NewFeeTransfer(chain ChainClient, log *zap.Logger) *FeeTransfer {
	if log == nil {
		log = zap.NewNop()
	}
	return &FeeTransfer{Chain: chain, Log: log.Named("fee_transfer")}
}

// BuildFeeTransfer returns a serialized, unsigned system transfer. payer is
// both the source and the fee payer, so only payer's signature is missing.
func (f *FeeTransfer) BuildFeeTransfer(ctx context.Context, payer, treasury string, lamports uint64) ([]byte, error) {
	if f == nil || f.Chain == nil {
		return nil, fmt.Errorf("fee_transfer: %w", ErrNotConfigured)
	}
	if lamports == 0 {
		return nil, fmt.Errorf("fee_transfer: %w", ErrZeroAmount)
	}
	from, err := nftdom.ValidateAddress(payer)
	if err != nil {
		return nil, fmt.Errorf("fee_transfer: payer: %w", ErrInvalidAddress)
	}
	to, err := nftdom.ValidateAddress(treasury)
	if err != nil {
		return nil, fmt.Errorf("fee_transfer: treasury: %w", ErrInvalidAddress)
	}
	fromKey := common.PublicKeyFromString(from)

	latest, err := f.Chain.GetLatestBlockhash(ctx)
	if err != nil {
		return nil, fmt.Errorf("fee_transfer: GetLatestBlockhash: %w", err)
	}

	tx, err := types.NewTransaction(types.NewTransactionParam{
		Message: types.NewMessage(types.NewMessageParam{
			FeePayer:        fromKey,
			RecentBlockhash: latest.Blockhash,
			Instructions: []types.Instruction{
				system.Transfer(system.TransferParam{
					From:   fromKey,
					To:     common.PublicKeyFromString(to),
					Amount: lamports,
				}),
			},
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("fee_transfer: NewTransaction: %w", err)
	}
	raw, err := tx.Serialize()
	if err != nil {
		return nil, fmt.Errorf("fee_transfer: Serialize: %w", err)
	}

	f.Log.Debug("fee transfer prepared",
		zap.String("from", logger.MaskShort(from)),
		zap.String("to", logger.MaskShort(to)),
		zap.Uint64("lamports", lamports),
	)
	return raw, nil
}
