// internal/infra/solana/wallet_reader.go
package solana

import (
	"context"
	"fmt"
	"strings"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/metaplex/token_metadata"
	"go.uber.org/zap"

	nftdom "pokemint/internal/domain/nft"
	"pokemint/internal/infra/logger"
)

// getMultipleAccounts accepts at most 100 keys per call.
const multipleAccountsLimit = 100

// WalletNFTReader lists the NFTs a wallet holds together with their
// Metaplex metadata. It implements usecase.NFTReader.
type WalletNFTReader struct {
	Accounts        TokenAccountLister
	Chain           ChainClient
	MetadataProgram common.PublicKey
	Log             *zap.Logger
}

func NewWalletNFTReader(accounts TokenAccountLister, chain ChainClient, metadataProgram common.PublicKey, log *zap.Logger) *WalletNFTReader {
	if log == nil {
		log = zap.NewNop()
	}
	return &WalletNFTReader{
		Accounts:        accounts,
		Chain:           chain,
		MetadataProgram: metadataProgram,
		Log:             log.Named("wallet_reader"),
	}
}

// FindAllByOwner returns every NFT in the wallet that has a metadata account,
// in token-account order. Tokens with an amount other than 1 or with
// decimals are skipped. Any RPC failure aborts the whole listing.
func (r *WalletNFTReader) FindAllByOwner(ctx context.Context, walletAddress string) ([]nftdom.OnchainNFT, error) {
	if r == nil || r.Accounts == nil || r.Chain == nil {
		return nil, fmt.Errorf("solana wallet reader: %w", ErrNotConfigured)
	}
	addr := strings.TrimSpace(walletAddress)
	if addr == "" {
		return nil, fmt.Errorf("solana wallet reader: walletAddress is empty")
	}

	res, err := r.Accounts.GetTokenAccountsByOwner(ctx, addr, TokenProgramID)
	if err != nil {
		return nil, err
	}

	// Extract + dedup while keeping stable order
	seen := make(map[string]struct{}, len(res.Value))
	mints := make([]string, 0, len(res.Value))
	for _, v := range res.Value {
		mint := strings.TrimSpace(v.Account.Data.Parsed.Info.Mint)
		if mint == "" || !v.IsNFT() {
			continue
		}
		if _, ok := seen[mint]; ok {
			continue
		}
		seen[mint] = struct{}{}
		mints = append(mints, mint)
	}
	if len(mints) == 0 {
		return []nftdom.OnchainNFT{}, nil
	}

	pdas := make([]string, len(mints))
	for i, m := range mints {
		derived, err := DeriveMetadataPDAs(common.PublicKeyFromString(m), r.MetadataProgram)
		if err != nil {
			return nil, err
		}
		pdas[i] = derived.Metadata.ToBase58()
	}

	out := make([]nftdom.OnchainNFT, 0, len(mints))
	for start := 0; start < len(pdas); start += multipleAccountsLimit {
		end := start + multipleAccountsLimit
		if end > len(pdas) {
			end = len(pdas)
		}

		infos, err := r.Chain.GetMultipleAccounts(ctx, pdas[start:end])
		if err != nil {
			return nil, fmt.Errorf("solana wallet reader: GetMultipleAccounts: %w", err)
		}

		for i, info := range infos {
			mint := mints[start+i]
			if len(info.Data) == 0 {
				// fungible token or a mint without Metaplex metadata
				continue
			}
			md, err := token_metadata.MetadataDeserialize(info.Data)
			if err != nil {
				r.Log.Debug("skip undecodable metadata account",
					zap.String("mint", logger.MaskShort(mint)),
					zap.Error(err),
				)
				continue
			}
			out = append(out, nftdom.OnchainNFT{
				Mint:   mint,
				Name:   nftdom.TrimPadding(md.Data.Name),
				Symbol: nftdom.TrimPadding(md.Data.Symbol),
				URI:    nftdom.TrimPadding(md.Data.Uri),
			})
		}
	}

	r.Log.Debug("listed wallet nfts",
		zap.String("wallet", logger.MaskShort(addr)),
		zap.Int("tokenAccounts", len(res.Value)),
		zap.Int("nfts", len(out)),
	)
	return out, nil
}
