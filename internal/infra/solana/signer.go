// internal/infra/solana/signer.go
package solana

import (
	"context"
	"crypto/ed25519"
	"fmt"

	"github.com/blocto/solana-go-sdk/types"
)

// KeypairSession is a wallet session backed by a local keypair, used by
// the command line buyer. It satisfies usecase.WalletSession.
type KeypairSession struct {
	account types.Account
}

func NewKeypairSession(acc types.Account) *KeypairSession {
	return &KeypairSession{account: acc}
}

// Address returns the base58 public key ("" when the session holds no key).
func (s *KeypairSession) Address() string {
	if s == nil || len(s.account.PrivateKey) != ed25519.PrivateKeySize {
		return ""
	}
	return s.account.PublicKey.ToBase58()
}

func (s *KeypairSession) Account() types.Account {
	if s == nil {
		return types.Account{}
	}
	return s.account
}

// SignTransactions adds the keypair's signature to each serialized
// transaction, keeping the signatures already present.
func (s *KeypairSession) SignTransactions(ctx context.Context, txs [][]byte) ([][]byte, error) {
	if s.Address() == "" {
		return nil, ErrInvalidSigner
	}
	out := make([][]byte, 0, len(txs))
	for i, raw := range txs {
		signed, err := s.sign(raw)
		if err != nil {
			return nil, fmt.Errorf("sign transaction %d: %w", i, err)
		}
		out = append(out, signed)
	}
	return out, nil
}

func (s *KeypairSession) sign(raw []byte) ([]byte, error) {
	tx, err := types.TransactionDeserialize(raw)
	if err != nil {
		return nil, err
	}
	msg, err := tx.Message.Serialize()
	if err != nil {
		return nil, err
	}

	n := int(tx.Message.Header.NumRequireSignatures)
	idx := -1
	for i := 0; i < n && i < len(tx.Message.Accounts); i++ {
		if tx.Message.Accounts[i] == s.account.PublicKey {
			idx = i
			break
		}
	}
	if idx < 0 || idx >= len(tx.Signatures) {
		return nil, fmt.Errorf("%w: %s is not a required signer", ErrInvalidSigner, s.account.PublicKey.ToBase58())
	}

	tx.Signatures[idx] = s.account.Sign(msg)
	return tx.Serialize()
}
