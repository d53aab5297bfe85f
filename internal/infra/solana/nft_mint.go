// internal/infra/solana/nft_mint.go
package solana

import (
	"context"
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/associated_token_account"
	"github.com/blocto/solana-go-sdk/program/system"
	"github.com/blocto/solana-go-sdk/program/token"
	"github.com/blocto/solana-go-sdk/types"
	"go.uber.org/zap"

	usecase "pokemint/internal/application/usecase"
	nftdom "pokemint/internal/domain/nft"
	"pokemint/internal/infra/logger"
)

// ProgramMinter prepares one NFT mint through the Pokémon program's `mint`
// instruction. It implements usecase.Minter.
type ProgramMinter struct {
	Chain             ChainClient
	ProgramID         common.PublicKey
	MetadataProgramID common.PublicKey

	// PrepareMint creates and initializes the mint account, the payer's ATA
	// and mints one token in the same transaction before the program call.
	// The program expects all three to exist already.
	PrepareMint bool

	Log *zap.Logger

	// newMint is swapped in tests for a deterministic keypair.
	newMint func() types.Account
}

func NewProgramMinter(chain ChainClient, programID, metadataProgramID common.PublicKey, prepareMint bool, log *zap.Logger) *ProgramMinter {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProgramMinter{
		Chain:             chain,
		ProgramID:         programID,
		MetadataProgramID: metadataProgramID,
		PrepareMint:       prepareMint,
		Log:               log.Named("program_minter"),
		newMint:           types.NewAccount,
	}
}

// BuildMint generates a fresh mint keypair, derives the metadata PDAs and
// returns the serialized transaction signed by the mint only. payer pays for
// it, owns the token account and is the mint authority; its signature is
// left for the wallet.
func (m *ProgramMinter) BuildMint(ctx context.Context, payer string, args usecase.MintArgs) (usecase.PreparedMint, error) {
	if m == nil || m.Chain == nil {
		return usecase.PreparedMint{}, fmt.Errorf("program_minter: %w", ErrNotConfigured)
	}
	addr, err := nftdom.ValidateAddress(payer)
	if err != nil {
		return usecase.PreparedMint{}, fmt.Errorf("program_minter: payer: %w", ErrInvalidAddress)
	}
	feePayer := common.PublicKeyFromString(addr)

	newMint := m.newMint
	if newMint == nil {
		newMint = types.NewAccount
	}
	mint := newMint()

	pdas, err := DeriveMetadataPDAs(mint.PublicKey, m.MetadataProgramID)
	if err != nil {
		return usecase.PreparedMint{}, err
	}

	var mintRent uint64
	if m.PrepareMint {
		mintRent, err = m.Chain.GetMinimumBalanceForRentExemption(ctx, token.MintAccountSize)
		if err != nil {
			return usecase.PreparedMint{}, fmt.Errorf("program_minter: GetMinimumBalanceForRentExemption: %w", err)
		}
	}

	ins, err := m.instructions(feePayer, mint.PublicKey, pdas, mintRent, args)
	if err != nil {
		return usecase.PreparedMint{}, err
	}

	recent, err := m.Chain.GetLatestBlockhash(ctx)
	if err != nil {
		return usecase.PreparedMint{}, fmt.Errorf("program_minter: GetLatestBlockhash: %w", err)
	}

	tx, err := types.NewTransaction(types.NewTransactionParam{
		Signers: []types.Account{mint},
		Message: types.NewMessage(types.NewMessageParam{
			FeePayer:        feePayer,
			RecentBlockhash: recent.Blockhash,
			Instructions:    ins,
		}),
	})
	if err != nil {
		return usecase.PreparedMint{}, fmt.Errorf("program_minter: NewTransaction: %w", err)
	}
	raw, err := tx.Serialize()
	if err != nil {
		return usecase.PreparedMint{}, fmt.Errorf("program_minter: Serialize: %w", err)
	}

	m.Log.Info("mint prepared",
		zap.String("payer", logger.MaskShort(addr)),
		zap.String("mint", mint.PublicKey.ToBase58()),
		zap.String("metadata", logger.MaskShort(pdas.Metadata.ToBase58())),
		zap.String("name", args.Name),
	)

	return usecase.PreparedMint{
		Tx:            raw,
		MintAddress:   mint.PublicKey.ToBase58(),
		Metadata:      pdas.Metadata.ToBase58(),
		MasterEdition: pdas.MasterEdition.ToBase58(),
	}, nil
}

func (m *ProgramMinter) instructions(payer, mint common.PublicKey, pdas MetadataPDAs, mintRent uint64, args usecase.MintArgs) ([]types.Instruction, error) {
	programIx, err := BuildMintInstruction(m.ProgramID, MintInstructionAccounts{
		Payer:                payer,
		Mint:                 mint,
		Metadata:             pdas.Metadata,
		MasterEdition:        pdas.MasterEdition,
		TokenMetadataProgram: m.MetadataProgramID,
	}, MintInstructionArgs{
		MetadataTitle:  args.Title,
		MetadataSymbol: args.Symbol,
		MetadataURI:    args.URI,
		PokemonName:    args.Name,
	})
	if err != nil {
		return nil, err
	}

	if !m.PrepareMint {
		return []types.Instruction{programIx}, nil
	}

	ata, _, err := common.FindAssociatedTokenAddress(payer, mint)
	if err != nil {
		return nil, fmt.Errorf("program_minter: FindAssociatedTokenAddress: %w", err)
	}

	return []types.Instruction{
		// 1) mint account
		system.CreateAccount(system.CreateAccountParam{
			From:     payer,
			New:      mint,
			Owner:    common.TokenProgramID,
			Lamports: mintRent,
			Space:    token.MintAccountSize,
		}),
		// 2) decimals = 0, payer is mint + freeze authority
		token.InitializeMint(token.InitializeMintParam{
			Decimals:   0,
			Mint:       mint,
			MintAuth:   payer,
			FreezeAuth: &payer,
		}),
		// 3) payer ATA
		associated_token_account.CreateAssociatedTokenAccount(
			associated_token_account.CreateAssociatedTokenAccountParam{
				Funder:                 payer,
				Owner:                  payer,
				Mint:                   mint,
				AssociatedTokenAccount: ata,
			},
		),
		// 4) the single token
		token.MintTo(token.MintToParam{
			Mint:   mint,
			To:     ata,
			Auth:   payer,
			Amount: 1,
		}),
		// 5) metadata + master edition via the program
		programIx,
	}, nil
}
