// internal/infra/solana/chain_client.go
package solana

import (
	"context"
	"strings"

	"github.com/blocto/solana-go-sdk/client"
	"github.com/blocto/solana-go-sdk/rpc"
	"github.com/blocto/solana-go-sdk/types"
)

// ChainClient is the part of the blocto client this package calls.
// *client.Client satisfies it; tests use an in-memory fake.
type ChainClient interface {
	GetLatestBlockhash(ctx context.Context) (rpc.GetLatestBlockhashValue, error)
	SendTransaction(ctx context.Context, tx types.Transaction) (string, error)
	GetSignatureStatus(ctx context.Context, signature string) (*rpc.SignatureStatus, error)
	GetMultipleAccounts(ctx context.Context, addrs []string) ([]client.AccountInfo, error)
	GetMinimumBalanceForRentExemption(ctx context.Context, dataLen uint64) (uint64, error)
	GetBalance(ctx context.Context, base58Addr string) (uint64, error)
}

var _ ChainClient = (*client.Client)(nil)

// NewChainClient returns a blocto client for endpoint (devnet when empty).
func NewChainClient(endpoint string) *client.Client {
	ep := strings.TrimSpace(endpoint)
	if ep == "" {
		ep = DevnetEndpoint
	}
	return client.NewClient(ep)
}
