// internal/application/usecase/pack_order.go
package usecase

import (
	"sync"
	"time"

	catalogdom "pokemint/internal/domain/catalog"
)

// PackOrder is a pack prepared for a wallet: the fee transfer and the mint
// transaction, both waiting for the wallet's signature. The byte slices
// are wire-format transactions (base64 in JSON).
type PackOrder struct {
	ID              string    `json:"orderId"`
	Wallet          string    `json:"wallet"`
	FeeLamports     uint64    `json:"feeLamports"`
	FeeTransaction  []byte    `json:"feeTransaction"`
	MintTransaction []byte    `json:"mintTransaction"`
	MintAddress     string    `json:"mintAddress"`
	ExpiresAt       time.Time `json:"expiresAt"`

	pick catalogdom.Pick
	uri  string
}

// orderBook holds prepared orders until they are submitted or expire.
type orderBook struct {
	mu     sync.Mutex
	orders map[string]*PackOrder
	max    int
}

func newOrderBook(max int) *orderBook {
	return &orderBook{orders: map[string]*PackOrder{}, max: max}
}

func (b *orderBook) put(o *PackOrder, now time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, existing := range b.orders {
		if now.After(existing.ExpiresAt) {
			delete(b.orders, id)
		}
	}
	if len(b.orders) >= b.max {
		return ErrTooManyOrders
	}
	b.orders[o.ID] = o
	return nil
}

// take removes and returns the order. An order belonging to another
// wallet is reported as missing and left in place.
func (b *orderBook) take(id, wallet string, now time.Time) (*PackOrder, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	o, ok := b.orders[id]
	if !ok || o.Wallet != wallet {
		return nil, ErrOrderNotFound
	}
	delete(b.orders, id)
	if now.After(o.ExpiresAt) {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

func (b *orderBook) drop(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.orders, id)
}

func (b *orderBook) len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.orders)
}
