package solana

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/blocto/solana-go-sdk/types"
)

func keypairJSON(t *testing.T, acc types.Account) []byte {
	t.Helper()
	ints := make([]int, len(acc.PrivateKey))
	for i, b := range acc.PrivateKey {
		ints[i] = int(b)
	}
	b, err := json.Marshal(ints)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestLoadKeypairFile(t *testing.T) {
	acc := types.NewAccount()
	path := filepath.Join(t.TempDir(), "payer.json")
	if err := os.WriteFile(path, keypairJSON(t, acc), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := LoadKeypairFile(path)
	if err != nil {
		t.Fatalf("LoadKeypairFile: %v", err)
	}
	if got.PublicKey != acc.PublicKey {
		t.Errorf("pubkey = %s, want %s", got.PublicKey.ToBase58(), acc.PublicKey.ToBase58())
	}

	s, err := LoadPayer(context.Background(), path, "projects/p/secrets/s/versions/latest", nil, nil)
	if err != nil {
		t.Fatalf("LoadPayer: %v", err)
	}
	if s.Address() != acc.PublicKey.ToBase58() {
		t.Errorf("file should win over secret, got %s", s.Address())
	}
}

func TestDecodeKeypairJSON_Errors(t *testing.T) {
	cases := map[string]string{
		"not json":     `nope`,
		"short":        `[1,2,3]`,
		"out of range": "[" + strings.Repeat("0,", 63) + "256]",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := decodeKeypairJSON([]byte(in)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadPayer_NothingConfigured(t *testing.T) {
	if _, err := LoadPayer(context.Background(), "", "", nil, nil); err == nil {
		t.Fatal("expected error")
	}
	if _, err := LoadPayer(context.Background(), "", "projects/p/secrets/s/versions/1", nil, nil); err == nil {
		t.Fatal("expected error without a secret manager client")
	}
}

func TestWriteKeypairFile(t *testing.T) {
	acc := types.NewAccount()
	path := filepath.Join(t.TempDir(), "payer.json")

	if err := WriteKeypairFile(path, acc); err != nil {
		t.Fatalf("WriteKeypairFile: %v", err)
	}
	got, err := LoadKeypairFile(path)
	if err != nil {
		t.Fatalf("LoadKeypairFile: %v", err)
	}
	if got.PublicKey != acc.PublicKey {
		t.Errorf("pubkey = %s, want %s", got.PublicKey.ToBase58(), acc.PublicKey.ToBase58())
	}
	if err := WriteKeypairFile(path, types.NewAccount()); err == nil {
		t.Error("existing keypair file was overwritten")
	}
	if info, err := os.Stat(path); err != nil || info.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v, %v", info.Mode(), err)
	}
}
