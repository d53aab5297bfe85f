package solana

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/blocto/solana-go-sdk/rpc"
)

func commitment(c rpc.Commitment) *rpc.Commitment { return &c }

func TestConfirm_WaitsForCommitment(t *testing.T) {
	chain := &fakeChain{
		statuses: []*rpc.SignatureStatus{
			nil,
			{ConfirmationStatus: commitment(rpc.CommitmentProcessed)},
			{ConfirmationStatus: commitment(rpc.CommitmentConfirmed)},
		},
	}
	c := NewSignatureConfirmer(chain, time.Millisecond, nil)

	if err := c.Confirm(context.Background(), "sig", "confirmed"); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if chain.polls != 3 {
		t.Errorf("polled %d times, want 3", chain.polls)
	}
}

func TestConfirm_ProcessedIsEnoughForProcessed(t *testing.T) {
	chain := &fakeChain{statuses: []*rpc.SignatureStatus{
		{ConfirmationStatus: commitment(rpc.CommitmentProcessed)},
	}}
	if err := NewSignatureConfirmer(chain, time.Millisecond, nil).Confirm(context.Background(), "sig", "processed"); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if chain.polls != 1 {
		t.Errorf("polled %d times", chain.polls)
	}
}

func TestConfirm_RetriesRPCErrors(t *testing.T) {
	chain := &fakeChain{
		statuses: []*rpc.SignatureStatus{nil, {ConfirmationStatus: commitment(rpc.CommitmentFinalized)}},
		statErrs: []error{errors.New("429 too many requests"), nil},
	}
	if err := NewSignatureConfirmer(chain, time.Millisecond, nil).Confirm(context.Background(), "sig", "confirmed"); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
}

func TestConfirm_OnChainError(t *testing.T) {
	chain := &fakeChain{statuses: []*rpc.SignatureStatus{
		{Err: map[string]any{"InstructionError": []any{4, map[string]any{"Custom": 1}}}},
	}}
	err := NewSignatureConfirmer(chain, time.Millisecond, nil).Confirm(context.Background(), "sig", "confirmed")
	if !errors.Is(err, ErrTransactionFailed) {
		t.Fatalf("expected ErrTransactionFailed, got %v", err)
	}
	var txErr *TxError
	if !errors.As(err, &txErr) || txErr.Op != "confirm" {
		t.Errorf("expected confirm TxError, got %#v", err)
	}
}

func TestConfirm_Timeout(t *testing.T) {
	chain := &fakeChain{statuses: []*rpc.SignatureStatus{nil}}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := NewSignatureConfirmer(chain, time.Millisecond, nil).Confirm(ctx, "sig", "confirmed")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestReached(t *testing.T) {
	one := uint64(1)
	cases := []struct {
		name   string
		status rpc.SignatureStatus
		want   rpc.Commitment
		ok     bool
	}{
		{"processed<confirmed", rpc.SignatureStatus{ConfirmationStatus: commitment(rpc.CommitmentProcessed)}, rpc.CommitmentConfirmed, false},
		{"finalized>=confirmed", rpc.SignatureStatus{ConfirmationStatus: commitment(rpc.CommitmentFinalized)}, rpc.CommitmentConfirmed, true},
		{"rooted", rpc.SignatureStatus{}, rpc.CommitmentFinalized, true},
		{"count only", rpc.SignatureStatus{Confirmations: &one}, rpc.CommitmentConfirmed, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := reached(&c.status, c.want); got != c.ok {
				t.Errorf("reached = %v, want %v", got, c.ok)
			}
		})
	}
}
