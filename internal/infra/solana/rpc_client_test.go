package solana

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetTokenAccountsByOwner(t *testing.T) {
	var req struct {
		Method string            `json:"method"`
		Params []json.RawMessage `json:"params"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &req)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"jsonrpc":"2.0","id":1,"result":{"context":{"slot":42},"value":[
			{"pubkey":"acc1","account":{"owner":"TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA","data":{"program":"spl-token","parsed":{"type":"account","info":{"mint":"mintA","owner":"w","tokenAmount":{"amount":"1","decimals":0}}}}}},
			{"pubkey":"acc2","account":{"data":{"parsed":{"info":{"mint":"mintB","tokenAmount":{"amount":"5","decimals":2}}}}}}
		]}}`)
	}))
	defer srv.Close()

	c := NewJSONRPCClient(srv.URL, "")
	res, err := c.GetTokenAccountsByOwner(context.Background(), "owner1", "")
	if err != nil {
		t.Fatalf("GetTokenAccountsByOwner: %v", err)
	}

	if req.Method != "getTokenAccountsByOwner" || len(req.Params) != 3 {
		t.Fatalf("request = %+v", req)
	}
	var filter map[string]string
	_ = json.Unmarshal(req.Params[1], &filter)
	if filter["programId"] != TokenProgramID {
		t.Errorf("programId = %q", filter["programId"])
	}
	var opts map[string]string
	_ = json.Unmarshal(req.Params[2], &opts)
	if opts["encoding"] != "jsonParsed" || opts["commitment"] != "confirmed" {
		t.Errorf("options = %v", opts)
	}

	if res.Context.Slot != 42 || len(res.Value) != 2 {
		t.Fatalf("result = %+v", res)
	}
	if !res.Value[0].IsNFT() || res.Value[1].IsNFT() {
		t.Error("IsNFT classification wrong")
	}
	if res.Value[0].Account.Data.Parsed.Info.Mint != "mintA" {
		t.Errorf("mint = %q", res.Value[0].Account.Data.Parsed.Info.Mint)
	}
}

func TestGetTokenAccountsByOwner_RPCError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"jsonrpc":"2.0","id":1,"error":{"code":-32602,"message":"Invalid param: WrongSize"}}`)
	}))
	defer srv.Close()

	_, err := NewJSONRPCClient(srv.URL, "finalized").GetTokenAccountsByOwner(context.Background(), "bad", "")
	var rpcErr *RPCError
	if !errors.As(err, &rpcErr) || rpcErr.Code != -32602 {
		t.Fatalf("expected RPCError, got %v", err)
	}
}

func TestGetTokenAccountsByOwner_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	if _, err := NewJSONRPCClient(srv.URL, "").GetTokenAccountsByOwner(context.Background(), "o", ""); err == nil {
		t.Fatal("expected error on 429")
	}
}

func TestGetTokenAccountsByOwner_EmptyOwner(t *testing.T) {
	if _, err := NewJSONRPCClient("http://127.0.0.1:1", "").GetTokenAccountsByOwner(context.Background(), " ", ""); err == nil {
		t.Fatal("expected error for empty owner")
	}
}
