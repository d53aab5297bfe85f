// internal/infra/solana/constants.go
package solana

import (
	"errors"

	"github.com/blocto/solana-go-sdk/common"
)

// Solana Devnet RPC endpoint (default)
const DevnetEndpoint = "https://api.devnet.solana.com"

// SPL Token Program ID (Tokenkeg...)
const TokenProgramID = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"

var (
	// PokemonProgramID is the Anchor program that wraps the Metaplex CPI calls.
	PokemonProgramID = common.PublicKeyFromString("6X7Dmx74WDrQtTRqaGZykdRvLh9LTCwR9WPQKtoJpNSE")
	// TokenMetadataProgramID is the Metaplex Token Metadata program.
	TokenMetadataProgramID = common.PublicKeyFromString("metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s")
)

// Anchor sighash of "global:mint".
var mintDiscriminator = [8]byte{51, 57, 225, 47, 182, 146, 137, 166}

// Metaplex DataV2 field limits.
const (
	maxNameLength   = 32
	maxSymbolLength = 10
	maxURILength    = 200
)

var (
	ErrNotConfigured     = errors.New("solana: not configured")
	ErrInvalidSigner     = errors.New("solana: invalid signer")
	ErrInvalidAddress    = errors.New("solana: invalid address")
	ErrMetadataTooLong   = errors.New("solana: metadata field too long")
	ErrTransactionFailed = errors.New("solana: transaction failed on chain")
	ErrZeroAmount        = errors.New("solana: amount is zero")
)
