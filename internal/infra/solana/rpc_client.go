// internal/infra/solana/rpc_client.go
package solana

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
)

// TokenAccountLister enumerates SPL token accounts held by an owner.
type TokenAccountLister interface {
	// GetTokenAccountsByOwner calls `getTokenAccountsByOwner` with:
	// params: [owner, {"programId": programID}, {"encoding":"jsonParsed","commitment":...}]
	GetTokenAccountsByOwner(ctx context.Context, owner string, programID string) (GetTokenAccountsByOwnerResult, error)
}

// JSONRPCClient is a small JSON-RPC client for the jsonParsed calls the
// blocto client does not expose.
type JSONRPCClient struct {
	Endpoint   string
	Commitment string

	http *resty.Client
	seq  atomic.Int64
}

// NewJSONRPCClient creates a Solana JSON-RPC client. Empty endpoint means devnet.
func NewJSONRPCClient(endpoint, commitment string) *JSONRPCClient {
	ep := strings.TrimSpace(endpoint)
	if ep == "" {
		ep = DevnetEndpoint
	}
	if strings.TrimSpace(commitment) == "" {
		commitment = "confirmed"
	}
	return &JSONRPCClient{
		Endpoint:   ep,
		Commitment: commitment,
		http: resty.New().
			SetTimeout(12*time.Second).
			SetHeader("Content-Type", "application/json"),
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

// RPCError is the `error` member of a JSON-RPC response.
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("solana rpc: error code=%d message=%s", e.Code, e.Message)
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

func (c *JSONRPCClient) call(ctx context.Context, method string, params any, out any) error {
	if c == nil || c.Endpoint == "" || c.http == nil {
		return fmt.Errorf("solana rpc: %w", ErrNotConfigured)
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(rpcRequest{
			JSONRPC: "2.0",
			ID:      c.seq.Add(1),
			Method:  method,
			Params:  params,
		}).
		Post(c.Endpoint)
	if err != nil {
		return fmt.Errorf("solana rpc: %s: %w", method, err)
	}
	if resp.IsError() {
		return fmt.Errorf("solana rpc: %s: http status=%d", method, resp.StatusCode())
	}

	var rr rpcResponse
	if err := json.Unmarshal(resp.Body(), &rr); err != nil {
		return fmt.Errorf("solana rpc: decode response: %w", err)
	}
	if rr.Error != nil {
		return rr.Error
	}

	if out != nil {
		if err := json.Unmarshal(rr.Result, out); err != nil {
			return fmt.Errorf("solana rpc: unmarshal result: %w", err)
		}
	}
	return nil
}

// GetTokenAccountsByOwnerResult is the decoded `result` object for getTokenAccountsByOwner (jsonParsed).
type GetTokenAccountsByOwnerResult struct {
	Context struct {
		Slot uint64 `json:"slot"`
	} `json:"context"`
	Value []TokenAccount `json:"value"`
}

type TokenAccount struct {
	Pubkey  string `json:"pubkey"`
	Account struct {
		Data struct {
			Program string `json:"program"`
			Parsed  struct {
				Info struct {
					Mint        string `json:"mint"`
					Owner       string `json:"owner"`
					TokenAmount struct {
						Amount   string `json:"amount"` // string integer
						Decimals int    `json:"decimals"`
					} `json:"tokenAmount"`
				} `json:"info"`
				Type string `json:"type"`
			} `json:"parsed"`
			Space uint64 `json:"space"`
		} `json:"data"`
		Owner string `json:"owner"`
	} `json:"account"`
}

// IsNFT reports whether the account holds exactly one indivisible token.
func (a TokenAccount) IsNFT() bool {
	amt := a.Account.Data.Parsed.Info.TokenAmount
	return strings.TrimSpace(amt.Amount) == "1" && amt.Decimals == 0
}

func (c *JSONRPCClient) GetTokenAccountsByOwner(ctx context.Context, owner string, programID string) (GetTokenAccountsByOwnerResult, error) {
	var out GetTokenAccountsByOwnerResult

	owner = strings.TrimSpace(owner)
	if owner == "" {
		return out, fmt.Errorf("solana rpc: owner is empty")
	}
	if programID == "" {
		programID = TokenProgramID
	}

	params := []any{
		owner,
		map[string]any{
			"programId": programID,
		},
		map[string]any{
			"commitment": c.Commitment,
			"encoding":   "jsonParsed",
		},
	}

	if err := c.call(ctx, "getTokenAccountsByOwner", params, &out); err != nil {
		return GetTokenAccountsByOwnerResult{}, err
	}
	return out, nil
}
