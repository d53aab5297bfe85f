// internal/infra/solana/tx_error.go
package solana

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/blocto/solana-go-sdk/rpc"
)

// TxError wraps a failed send/confirm together with the program log lines
// the node returned (preflight simulation logs).
type TxError struct {
	Op   string
	Err  error
	Logs []string
}

func (e *TxError) Error() string {
	return fmt.Sprintf("solana %s: %v", e.Op, e.Err)
}

func (e *TxError) Unwrap() error { return e.Err }

// ProgramLogs implements the log carrier the usecase layer looks for.
func (e *TxError) ProgramLogs() []string { return e.Logs }

func wrapTxError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &TxError{Op: op, Err: err, Logs: ProgramLogs(err)}
}

// ProgramLogs pulls `data.logs` out of a JSON-RPC error, if present.
func ProgramLogs(err error) []string {
	var txErr *TxError
	if errors.As(err, &txErr) && len(txErr.Logs) > 0 {
		return txErr.Logs
	}

	var rpcErr *rpc.JsonRpcError
	if !errors.As(err, &rpcErr) || rpcErr == nil {
		return nil
	}

	raw, mErr := json.Marshal(rpcErr.Data)
	if mErr != nil {
		return nil
	}
	var data struct {
		Logs []string `json:"logs"`
	}
	if json.Unmarshal(raw, &data) != nil {
		return nil
	}
	return data.Logs
}
