package solana

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/blocto/solana-go-sdk/client"
	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/metaplex/token_metadata"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/near/borsh-go"
)

func metadataAccount(t *testing.T, mint common.PublicKey, name, symbol, uri string) client.AccountInfo {
	t.Helper()
	md := token_metadata.Metadata{
		Key:  token_metadata.KeyMetadataV1,
		Mint: mint,
		Data: token_metadata.Data{
			Name:   name,
			Symbol: symbol,
			Uri:    uri,
		},
	}
	b, err := borsh.Serialize(md)
	if err != nil {
		t.Fatalf("serialize metadata: %v", err)
	}
	return client.AccountInfo{Data: b}
}

func metadataAddr(t *testing.T, mint common.PublicKey) string {
	t.Helper()
	pdas, err := DeriveMetadataPDAs(mint, TokenMetadataProgramID)
	if err != nil {
		t.Fatal(err)
	}
	return pdas.Metadata.ToBase58()
}

func TestWalletNFTReader_FindAllByOwner(t *testing.T) {
	nftA := types.NewAccount().PublicKey
	nftB := types.NewAccount().PublicKey
	bare := types.NewAccount().PublicKey
	fungible := types.NewAccount().PublicKey

	lister := fakeLister{res: GetTokenAccountsByOwnerResult{Value: []TokenAccount{
		tokenAccount(nftA.ToBase58(), "1", 0),
		tokenAccount(fungible.ToBase58(), "250", 6),
		tokenAccount(nftB.ToBase58(), "1", 0),
		tokenAccount(nftA.ToBase58(), "1", 0),
		tokenAccount(bare.ToBase58(), "1", 0),
	}}}
	chain := &fakeChain{accounts: map[string]client.AccountInfo{
		metadataAddr(t, nftA): metadataAccount(t, nftA, "Pikachu Card\x00\x00\x00", "PKMN\x00\x00", "https://a/p.json\x00\x00"),
		metadataAddr(t, nftB): metadataAccount(t, nftB, "Other", "ART", "https://a/o.json"),
	}}

	r := NewWalletNFTReader(lister, chain, TokenMetadataProgramID, nil)
	got, err := r.FindAllByOwner(context.Background(), testTreasury)
	if err != nil {
		t.Fatalf("FindAllByOwner: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d nfts: %+v", len(got), got)
	}
	if got[0].Mint != nftA.ToBase58() || got[0].Name != "Pikachu Card" || got[0].Symbol != "PKMN" || got[0].URI != "https://a/p.json" {
		t.Errorf("first = %+v", got[0])
	}
	if got[1].Mint != nftB.ToBase58() || got[1].Symbol != "ART" {
		t.Errorf("second = %+v", got[1])
	}
	if len(chain.batches) != 1 || len(chain.batches[0]) != 3 {
		t.Errorf("metadata batches = %v", chain.batches)
	}
}

func TestWalletNFTReader_Batches(t *testing.T) {
	var accounts []TokenAccount
	for i := 0; i < 150; i++ {
		accounts = append(accounts, tokenAccount(types.NewAccount().PublicKey.ToBase58(), "1", 0))
	}
	chain := &fakeChain{}
	r := NewWalletNFTReader(fakeLister{res: GetTokenAccountsByOwnerResult{Value: accounts}}, chain, TokenMetadataProgramID, nil)

	got, err := r.FindAllByOwner(context.Background(), testTreasury)
	if err != nil {
		t.Fatalf("FindAllByOwner: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("accounts without metadata should be skipped, got %d", len(got))
	}
	if len(chain.batches) != 2 || len(chain.batches[0]) != 100 || len(chain.batches[1]) != 50 {
		t.Errorf("batch sizes wrong: %d batches", len(chain.batches))
	}
}

func TestWalletNFTReader_EnumerationError(t *testing.T) {
	boom := errors.New("rpc down")
	r := NewWalletNFTReader(fakeLister{err: fmt.Errorf("wrapped: %w", boom)}, &fakeChain{}, TokenMetadataProgramID, nil)
	if _, err := r.FindAllByOwner(context.Background(), testTreasury); !errors.Is(err, boom) {
		t.Fatalf("expected rpc error, got %v", err)
	}
}

func TestWalletNFTReader_NotConfigured(t *testing.T) {
	var r *WalletNFTReader
	if _, err := r.FindAllByOwner(context.Background(), testTreasury); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
