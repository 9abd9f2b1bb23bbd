// Package memory implements an in-memory receipt repository.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"campuseats/pkg/order"
)

// Repository provides an in-memory implementation of order.ReceiptRepository.
// Receipts live only as long as the process.
type Repository struct {
	mu       sync.RWMutex
	receipts map[uuid.UUID]order.Receipt
	limit    int
}

// New creates a new in-memory repository keeping at most limit receipts;
// the oldest are evicted first. A limit <= 0 keeps everything.
func New(limit int) *Repository {
	return &Repository{receipts: make(map[uuid.UUID]order.Receipt), limit: limit}
}

// Create stores the receipt.
func (r *Repository) Create(ctx context.Context, rc order.Receipt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.receipts[rc.ID] = rc
	if r.limit > 0 && len(r.receipts) > r.limit {
		r.evictOldestLocked()
	}
	return nil
}

// Get retrieves a receipt by ID.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (order.Receipt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rc, ok := r.receipts[id]
	if !ok {
		return order.Receipt{}, order.ErrNotFound
	}
	return rc, nil
}

// List returns all receipts, newest first.
func (r *Repository) List(ctx context.Context) ([]order.Receipt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]order.Receipt, 0, len(r.receipts))
	for _, rc := range r.receipts {
		out = append(out, rc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlacedAt.After(out[j].PlacedAt) })
	return out, nil
}

func (r *Repository) evictOldestLocked() {
	var oldest uuid.UUID
	first := true
	for id, rc := range r.receipts {
		if first || rc.PlacedAt.Before(r.receipts[oldest].PlacedAt) {
			oldest = id
			first = false
		}
	}
	delete(r.receipts, oldest)
}
