// internal/adapters/out/db/mint_receipt_repository_pg.go
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	receiptdom "pokemint/internal/domain/receipt"
)

// MintReceiptRepositoryPG implements receipt.Repository on the
// mint_receipts table (see infra/database/migrations).
type MintReceiptRepositoryPG struct {
	DB *sql.DB
}

func NewMintReceiptRepositoryPG(db *sql.DB) *MintReceiptRepositoryPG {
	return &MintReceiptRepositoryPG{DB: db}
}

var _ receiptdom.Repository = (*MintReceiptRepositoryPG)(nil)

const receiptColumns = `
  id, wallet, collectible, shining, metadata_uri, fee_lamports, treasury,
  fee_signature, mint_address, mint_signature,
  status, failure_stage, failure_reason, program_logs,
  created_at, updated_at`

func (r *MintReceiptRepositoryPG) Create(ctx context.Context, rec receiptdom.MintReceipt) (receiptdom.MintReceipt, error) {
	if strings.TrimSpace(rec.ID) == "" {
		return receiptdom.MintReceipt{}, receiptdom.ErrInvalidID
	}
	const q = `
INSERT INTO mint_receipts (` + receiptColumns + `
) VALUES (
  $1, $2, $3, $4, $5, $6, $7,
  $8, $9, $10,
  $11, $12, $13, $14,
  $15, $16
)`
	_, err := r.DB.ExecContext(ctx, q,
		rec.ID, rec.Wallet, rec.Collectible, rec.Shining, rec.MetadataURI, int64(rec.FeeLamports), rec.Treasury,
		rec.FeeSignature, rec.MintAddress, rec.MintSignature,
		string(rec.Status), string(rec.FailureStage), rec.FailureReason, pq.Array(nonNilLogs(rec.ProgramLogs)),
		rec.CreatedAt.UTC(), rec.UpdatedAt.UTC(),
	)
	if err != nil {
		return receiptdom.MintReceipt{}, fmt.Errorf("insert mint receipt %s: %w", rec.ID, err)
	}
	return rec, nil
}

func (r *MintReceiptRepositoryPG) Update(ctx context.Context, rec receiptdom.MintReceipt) (receiptdom.MintReceipt, error) {
	const q = `
UPDATE mint_receipts SET
  metadata_uri   = $2,
  fee_signature  = $3,
  mint_address   = $4,
  mint_signature = $5,
  status         = $6,
  failure_stage  = $7,
  failure_reason = $8,
  program_logs   = $9,
  updated_at     = $10
WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, q,
		strings.TrimSpace(rec.ID),
		rec.MetadataURI,
		rec.FeeSignature,
		rec.MintAddress,
		rec.MintSignature,
		string(rec.Status),
		string(rec.FailureStage),
		rec.FailureReason,
		pq.Array(nonNilLogs(rec.ProgramLogs)),
		rec.UpdatedAt.UTC(),
	)
	if err != nil {
		return receiptdom.MintReceipt{}, fmt.Errorf("update mint receipt %s: %w", rec.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return receiptdom.MintReceipt{}, err
	}
	if n == 0 {
		return receiptdom.MintReceipt{}, receiptdom.ErrNotFound
	}
	return rec, nil
}

func (r *MintReceiptRepositoryPG) GetByID(ctx context.Context, id string) (receiptdom.MintReceipt, error) {
	q := `SELECT` + receiptColumns + `
FROM mint_receipts
WHERE id = $1`
	rec, err := scanReceipt(r.DB.QueryRowContext(ctx, q, strings.TrimSpace(id)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return receiptdom.MintReceipt{}, receiptdom.ErrNotFound
		}
		return receiptdom.MintReceipt{}, err
	}
	return rec, nil
}

func (r *MintReceiptRepositoryPG) ListByWallet(ctx context.Context, wallet string, limit int) ([]receiptdom.MintReceipt, error) {
	q := `SELECT` + receiptColumns + `
FROM mint_receipts
WHERE wallet = $1
ORDER BY created_at DESC, id DESC
LIMIT $2`
	rows, err := r.DB.QueryContext(ctx, q, strings.TrimSpace(wallet), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]receiptdom.MintReceipt, 0, limit)
	for rows.Next() {
		rec, err := scanReceipt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReceipt(s rowScanner) (receiptdom.MintReceipt, error) {
	var (
		rec           receiptdom.MintReceipt
		fee           int64
		status, stage string
		logs          pq.StringArray
	)
	err := s.Scan(
		&rec.ID, &rec.Wallet, &rec.Collectible, &rec.Shining, &rec.MetadataURI, &fee, &rec.Treasury,
		&rec.FeeSignature, &rec.MintAddress, &rec.MintSignature,
		&status, &stage, &rec.FailureReason, &logs,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return receiptdom.MintReceipt{}, err
	}
	rec.FeeLamports = uint64(fee)
	rec.Status = receiptdom.Status(status)
	rec.FailureStage = receiptdom.Stage(stage)
	if len(logs) > 0 {
		rec.ProgramLogs = []string(logs)
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	rec.UpdatedAt = rec.UpdatedAt.UTC()
	return rec, nil
}

func nonNilLogs(logs []string) []string {
	if logs == nil {
		return []string{}
	}
	return logs
}
