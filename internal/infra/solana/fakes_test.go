package solana

import (
	"context"
	"sync"

	"github.com/blocto/solana-go-sdk/client"
	"github.com/blocto/solana-go-sdk/rpc"
	"github.com/blocto/solana-go-sdk/types"
)

const testTreasury = "8rrF7VycfSHR48iQ7HXTRwHaNJNf2p2MkA5fHf5KDSJ"

// any valid base58 32-byte value works as a blockhash for signing
const testBlockhash = testTreasury

type fakeChain struct {
	mu sync.Mutex

	sent    []types.Transaction
	sendSig string
	sendErr error

	statuses []*rpc.SignatureStatus
	statErrs []error
	polls    int

	accounts map[string]client.AccountInfo
	batches  [][]string

	rent    uint64
	balance uint64
}

func (f *fakeChain) GetLatestBlockhash(ctx context.Context) (rpc.GetLatestBlockhashValue, error) {
	return rpc.GetLatestBlockhashValue{Blockhash: testBlockhash, LatestValidBlockHeight: 100}, nil
}

func (f *fakeChain) SendTransaction(ctx context.Context, tx types.Transaction) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, tx)
	return f.sendSig, f.sendErr
}

// GetSignatureStatus replays statuses/statErrs in order and repeats the last entry.
func (f *fakeChain) GetSignatureStatus(ctx context.Context, signature string) (*rpc.SignatureStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.polls
	f.polls++

	var (
		st  *rpc.SignatureStatus
		err error
	)
	if n := len(f.statuses); n > 0 {
		st = f.statuses[min(i, n-1)]
	}
	if n := len(f.statErrs); n > 0 {
		err = f.statErrs[min(i, n-1)]
	}
	return st, err
}

func (f *fakeChain) GetMultipleAccounts(ctx context.Context, addrs []string) ([]client.AccountInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, append([]string(nil), addrs...))
	out := make([]client.AccountInfo, len(addrs))
	for i, a := range addrs {
		out[i] = f.accounts[a]
	}
	return out, nil
}

func (f *fakeChain) GetMinimumBalanceForRentExemption(ctx context.Context, dataLen uint64) (uint64, error) {
	return f.rent, nil
}

func (f *fakeChain) GetBalance(ctx context.Context, base58Addr string) (uint64, error) {
	return f.balance, nil
}

type fakeLister struct {
	res GetTokenAccountsByOwnerResult
	err error
}

func (f fakeLister) GetTokenAccountsByOwner(ctx context.Context, owner, programID string) (GetTokenAccountsByOwnerResult, error) {
	return f.res, f.err
}

func tokenAccount(mint, amount string, decimals int) TokenAccount {
	var a TokenAccount
	a.Account.Data.Parsed.Info.Mint = mint
	a.Account.Data.Parsed.Info.TokenAmount.Amount = amount
	a.Account.Data.Parsed.Info.TokenAmount.Decimals = decimals
	return a
}
