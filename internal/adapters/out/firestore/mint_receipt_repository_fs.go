// internal/adapters/out/firestore/mint_receipt_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	receiptdom "pokemint/internal/domain/receipt"
)

const mintReceiptsCollection = "mintReceipts"

// MintReceiptRepositoryFS implements receipt.Repository on the
// "mintReceipts" collection. The document ID is the receipt ID.
type MintReceiptRepositoryFS struct {
	Client *firestore.Client
}

func NewMintReceiptRepositoryFS(client *firestore.Client) *MintReceiptRepositoryFS {
	return &MintReceiptRepositoryFS{Client: client}
}

var _ receiptdom.Repository = (*MintReceiptRepositoryFS)(nil)

type receiptDoc struct {
	Wallet        string    `firestore:"wallet"`
	Collectible   string    `firestore:"collectible"`
	Shining       bool      `firestore:"shining"`
	MetadataURI   string    `firestore:"metadataUri"`
	FeeLamports   int64     `firestore:"feeLamports"`
	Treasury      string    `firestore:"treasury"`
	FeeSignature  string    `firestore:"feeSignature"`
	MintAddress   string    `firestore:"mintAddress"`
	MintSignature string    `firestore:"mintSignature"`
	Status        string    `firestore:"status"`
	FailureStage  string    `firestore:"failureStage"`
	FailureReason string    `firestore:"failureReason"`
	ProgramLogs   []string  `firestore:"programLogs"`
	CreatedAt     time.Time `firestore:"createdAt"`
	UpdatedAt     time.Time `firestore:"updatedAt"`
}

func toReceiptDoc(r receiptdom.MintReceipt) receiptDoc {
	logs := r.ProgramLogs
	if logs == nil {
		logs = []string{}
	}
	return receiptDoc{
		Wallet:        r.Wallet,
		Collectible:   r.Collectible,
		Shining:       r.Shining,
		MetadataURI:   r.MetadataURI,
		FeeLamports:   int64(r.FeeLamports), // Firestore has no unsigned ints
		Treasury:      r.Treasury,
		FeeSignature:  r.FeeSignature,
		MintAddress:   r.MintAddress,
		MintSignature: r.MintSignature,
		Status:        string(r.Status),
		FailureStage:  string(r.FailureStage),
		FailureReason: r.FailureReason,
		ProgramLogs:   logs,
		CreatedAt:     r.CreatedAt.UTC(),
		UpdatedAt:     r.UpdatedAt.UTC(),
	}
}

func (d receiptDoc) toDomain(id string) receiptdom.MintReceipt {
	var logs []string
	if len(d.ProgramLogs) > 0 {
		logs = d.ProgramLogs
	}
	return receiptdom.MintReceipt{
		ID:            id,
		Wallet:        d.Wallet,
		Collectible:   d.Collectible,
		Shining:       d.Shining,
		MetadataURI:   d.MetadataURI,
		FeeLamports:   uint64(d.FeeLamports),
		Treasury:      d.Treasury,
		FeeSignature:  d.FeeSignature,
		MintAddress:   d.MintAddress,
		MintSignature: d.MintSignature,
		Status:        receiptdom.Status(d.Status),
		FailureStage:  receiptdom.Stage(d.FailureStage),
		FailureReason: d.FailureReason,
		ProgramLogs:   logs,
		CreatedAt:     d.CreatedAt.UTC(),
		UpdatedAt:     d.UpdatedAt.UTC(),
	}
}

func (r *MintReceiptRepositoryFS) col() (*firestore.CollectionRef, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("firestore client is nil")
	}
	return r.Client.Collection(mintReceiptsCollection), nil
}

// Create stores a new receipt and fails if the ID is taken.
func (r *MintReceiptRepositoryFS) Create(ctx context.Context, rec receiptdom.MintReceipt) (receiptdom.MintReceipt, error) {
	col, err := r.col()
	if err != nil {
		return receiptdom.MintReceipt{}, err
	}
	id := strings.TrimSpace(rec.ID)
	if id == "" {
		return receiptdom.MintReceipt{}, receiptdom.ErrInvalidID
	}
	if _, err := col.Doc(id).Create(ctx, toReceiptDoc(rec)); err != nil {
		return receiptdom.MintReceipt{}, err
	}
	return rec, nil
}

// Update overwrites an existing receipt.
func (r *MintReceiptRepositoryFS) Update(ctx context.Context, rec receiptdom.MintReceipt) (receiptdom.MintReceipt, error) {
	col, err := r.col()
	if err != nil {
		return receiptdom.MintReceipt{}, err
	}
	id := strings.TrimSpace(rec.ID)
	if id == "" {
		return receiptdom.MintReceipt{}, receiptdom.ErrInvalidID
	}

	ref := col.Doc(id)
	err = r.Client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(ref); err != nil {
			return err
		}
		return tx.Set(ref, toReceiptDoc(rec))
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return receiptdom.MintReceipt{}, receiptdom.ErrNotFound
		}
		return receiptdom.MintReceipt{}, err
	}
	return rec, nil
}

func (r *MintReceiptRepositoryFS) GetByID(ctx context.Context, id string) (receiptdom.MintReceipt, error) {
	col, err := r.col()
	if err != nil {
		return receiptdom.MintReceipt{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return receiptdom.MintReceipt{}, receiptdom.ErrNotFound
	}

	snap, err := col.Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return receiptdom.MintReceipt{}, receiptdom.ErrNotFound
		}
		return receiptdom.MintReceipt{}, err
	}

	var d receiptDoc
	if err := snap.DataTo(&d); err != nil {
		return receiptdom.MintReceipt{}, err
	}
	return d.toDomain(snap.Ref.ID), nil
}

// ListByWallet returns the newest receipts for wallet first.
func (r *MintReceiptRepositoryFS) ListByWallet(ctx context.Context, wallet string, limit int) ([]receiptdom.MintReceipt, error) {
	col, err := r.col()
	if err != nil {
		return nil, err
	}

	iter := col.
		Where("wallet", "==", strings.TrimSpace(wallet)).
		OrderBy("createdAt", firestore.Desc).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	out := make([]receiptdom.MintReceipt, 0, limit)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var d receiptDoc
		if err := snap.DataTo(&d); err != nil {
			continue
		}
		out = append(out, d.toDomain(snap.Ref.ID))
	}
	return out, nil
}
