// internal/domain/receipt/repository_port.go
package receipt

import "context"

// Repository persists mint receipts.
type Repository interface {
	Create(ctx context.Context, r MintReceipt) (MintReceipt, error)
	Update(ctx context.Context, r MintReceipt) (MintReceipt, error)
	GetByID(ctx context.Context, id string) (MintReceipt, error)
	// ListByWallet returns receipts newest first.
	ListByWallet(ctx context.Context, wallet string, limit int) ([]MintReceipt, error)
}
