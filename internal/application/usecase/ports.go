// internal/application/usecase/ports.go
package usecase

import (
	"context"

	nftdom "pokemint/internal/domain/nft"
	receiptdom "pokemint/internal/domain/receipt"
)

// ============================================================
// Ports the usecases depend on. Implementations live in infra/ and adapters/out.
// ============================================================

// WalletSession is the connected wallet a pack is bought with.
// An empty Address means "not connected".
//
// The wallet pays for and signs both pack transactions; the server never
// holds its key. SignTransactions receives wire-format transactions and
// returns them with the wallet's signature added, in the same order.
type WalletSession interface {
	Address() string
	SignTransactions(ctx context.Context, txs [][]byte) ([][]byte, error)
}

// NFTReader enumerates the NFTs a wallet holds, with on-chain metadata.
type NFTReader interface {
	FindAllByOwner(ctx context.Context, walletAddress string) ([]nftdom.OnchainNFT, error)
}

// MetadataFetcher loads the off-chain JSON an NFT's URI points to.
type MetadataFetcher interface {
	Fetch(ctx context.Context, uri string) (nftdom.OffchainMetadata, error)
}

// BalanceReader returns a wallet's SOL balance in lamports.
type BalanceReader interface {
	GetBalance(ctx context.Context, walletAddress string) (uint64, error)
}

// ArtworkRepository resolves catalog image paths to public URLs.
type ArtworkRepository interface {
	PublicURL(path string) string
	Exists(ctx context.Context, path string) (bool, error)
}

// ArweaveUploader uploads metadata JSON and returns its public URI.
type ArweaveUploader interface {
	UploadJSON(ctx context.Context, metadataJSON []byte) (string, error)
}

// FeeCharger builds the unsigned pack-fee transfer from payer to treasury,
// with payer as fee payer.
type FeeCharger interface {
	BuildFeeTransfer(ctx context.Context, payer, treasury string, lamports uint64) ([]byte, error)
}

// MintArgs are the four string arguments of the program's `mint` instruction.
type MintArgs struct {
	Title  string
	Symbol string
	URI    string
	Name   string
}

// PreparedMint is a program `mint` transaction for payer, already signed
// by a fresh mint keypair. Only payer's signature is missing.
type PreparedMint struct {
	Tx            []byte
	MintAddress   string
	Metadata      string
	MasterEdition string
}

// Minter builds the program `mint` call. The NFT lands in payer's
// associated token account.
type Minter interface {
	BuildMint(ctx context.Context, payer string, args MintArgs) (PreparedMint, error)
}

// TxSubmitter checks wallet-signed transactions and sends them.
type TxSubmitter interface {
	// Verify reports whether signed is prepared with every required
	// signature present and valid, and signer as fee payer.
	Verify(prepared, signed []byte, signer string) error
	// Send submits a signed transaction and returns its signature.
	// It does not wait for confirmation.
	Send(ctx context.Context, signed []byte) (string, error)
}

// Confirmer waits until a signature reaches the given commitment.
type Confirmer interface {
	Confirm(ctx context.Context, signature string, commitment string) error
}

// RefundReviewNotifier tells an operator a fee was charged without a mint.
type RefundReviewNotifier interface {
	NotifyRefundReview(ctx context.Context, r receiptdom.MintReceipt) error
}

// programLogCarrier is implemented by transaction errors that carry
// the program's log lines.
type programLogCarrier interface {
	ProgramLogs() []string
}
