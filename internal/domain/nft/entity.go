// internal/domain/nft/entity.go
package nft

import (
	"errors"
	"fmt"
	"strings"

	solanago "github.com/gagliardetto/solana-go"
)

// Domain errors
var (
	ErrInvalidAddress = errors.New("nft: invalid wallet address")
	ErrEmptyURI       = errors.New("nft: metadata uri is empty")
)

// CollectibleSymbol is the on-chain symbol every Pokémon NFT is minted with.
const CollectibleSymbol = "PKMN"

// OnchainNFT is what the chain tells us about a token the wallet holds:
// the mint plus the Metaplex metadata account fields.
type OnchainNFT struct {
	Mint   string
	Name   string
	Symbol string
	URI    string
}

// OffchainMetadata is the JSON document stored at OnchainNFT.URI.
// Both fields may be empty; the view shows a placeholder for a missing image.
type OffchainMetadata struct {
	Image       string `json:"image"`
	Description string `json:"description,omitempty"`
}

// OwnedItem is the flattened row shown in the "owned" view.
// It is derived on every query and never stored.
type OwnedItem struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Image       string `json:"image"`
	Description string `json:"description"`
	Mint        string `json:"mint"`
}

// TrimPadding strips the NUL padding Metaplex stores in fixed-width
// name/symbol/uri fields.
func TrimPadding(s string) string {
	return strings.TrimSpace(strings.TrimRight(s, "\x00"))
}

// MatchesSymbol reports whether an on-chain symbol belongs to the collection.
func MatchesSymbol(symbol string) bool {
	return strings.EqualFold(TrimPadding(symbol), CollectibleSymbol)
}

// NewOwnedItem merges the on-chain fields with the off-chain document.
func NewOwnedItem(n OnchainNFT, m OffchainMetadata) OwnedItem {
	return OwnedItem{
		Name:        TrimPadding(n.Name),
		Symbol:      TrimPadding(n.Symbol),
		Image:       strings.TrimSpace(m.Image),
		Description: m.Description,
		Mint:        n.Mint,
	}
}

// ValidateAddress normalizes a base58 wallet address and rejects anything
// that does not decode to a 32-byte public key.
func ValidateAddress(addr string) (string, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return "", ErrInvalidAddress
	}
	pk, err := solanago.PublicKeyFromBase58(addr)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	return pk.String(), nil
}
