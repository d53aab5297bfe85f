// internal/infra/solana/mint_authority.go
package solana

import (
	"context"
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	secretspb "cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/blocto/solana-go-sdk/types"
	"go.uber.org/zap"
)

// LoadPayer restores the payer keypair. A local keypair file (solana-keygen
// output) wins over a Secret Manager version path such as
//
//	"projects/<PROJECT_ID>/secrets/<SECRET_ID>/versions/latest"
func LoadPayer(ctx context.Context, keypairFile, secretName string, sm *secretmanager.Client, log *zap.Logger) (*KeypairSession, error) {
	if log == nil {
		log = zap.NewNop()
	}
	keypairFile = strings.TrimSpace(keypairFile)
	secretName = strings.TrimSpace(secretName)

	var (
		acc    types.Account
		err    error
		source string
	)
	switch {
	case keypairFile != "":
		acc, err = LoadKeypairFile(keypairFile)
		source = "file"
	case secretName != "":
		acc, err = LoadKeypairSecret(ctx, sm, secretName)
		source = "secretmanager"
	default:
		return nil, fmt.Errorf("payer: neither PAYER_KEYPAIR_FILE nor PAYER_KEY_SECRET is set")
	}
	if err != nil {
		return nil, err
	}

	log.Info("loaded payer keypair",
		zap.String("source", source),
		zap.String("pubkey", acc.PublicKey.ToBase58()),
	)
	return NewKeypairSession(acc), nil
}

// LoadKeypairFile reads a solana-keygen JSON keypair from disk.
func LoadKeypairFile(path string) (types.Account, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Account{}, fmt.Errorf("payer: read keypair file: %w", err)
	}
	return accountFromKeypairJSON(data)
}

// LoadKeypairSecret reads the keypair JSON from a Secret Manager version.
func LoadKeypairSecret(ctx context.Context, sm *secretmanager.Client, name string) (types.Account, error) {
	if sm == nil {
		return types.Account{}, fmt.Errorf("payer: secret manager client is nil")
	}
	resp, err := sm.AccessSecretVersion(ctx, &secretspb.AccessSecretVersionRequest{
		Name: name,
	})
	if err != nil {
		return types.Account{}, fmt.Errorf("payer: AccessSecretVersion: %w", err)
	}
	return accountFromKeypairJSON(resp.GetPayload().GetData())
}

func accountFromKeypairJSON(data []byte) (types.Account, error) {
	keyBytes, err := decodeKeypairJSON(data)
	if err != nil {
		return types.Account{}, err
	}
	acc, err := types.AccountFromBytes(keyBytes)
	if err != nil {
		return types.Account{}, fmt.Errorf("payer: AccountFromBytes: %w", err)
	}
	return acc, nil
}

// decodeKeypairJSON restores the 64 key bytes from keypair JSON.
// solana-keygen writes [u8;64] as a JSON number array, which
// encoding/json cannot decode into []byte directly, so it goes through []int.
func decodeKeypairJSON(data []byte) ([]byte, error) {
	var ints []int
	if err := json.Unmarshal(data, &ints); err != nil {
		return nil, fmt.Errorf("payer: unmarshal keypair json: %w", err)
	}
	if len(ints) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("payer: unexpected secret key length: got %d, want %d", len(ints), ed25519.PrivateKeySize)
	}

	keyBytes := make([]byte, len(ints))
	for i, v := range ints {
		if v < 0 || v > 255 {
			return nil, fmt.Errorf("payer: keypair byte %d out of range: %d", i, v)
		}
		keyBytes[i] = byte(v)
	}
	return keyBytes, nil
}

// WriteKeypairFile stores acc in the solana-keygen format LoadKeypairFile
// reads. It refuses to overwrite an existing file.
func WriteKeypairFile(path string, acc types.Account) error {
	if len(acc.PrivateKey) != ed25519.PrivateKeySize {
		return fmt.Errorf("payer: unexpected secret key length: %d", len(acc.PrivateKey))
	}
	secret := make([]int, len(acc.PrivateKey))
	for i, b := range acc.PrivateKey {
		secret[i] = int(b)
	}
	data, err := json.Marshal(secret)
	if err != nil {
		return fmt.Errorf("payer: marshal keypair: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("payer: create keypair file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("payer: write keypair file: %w", err)
	}
	return f.Close()
}
