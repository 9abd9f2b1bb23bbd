package order

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// StartingCredits is the balance every session starts with and returns to on reset.
const StartingCredits = 100

// Item is a fixed menu entry.
type Item struct {
	Name  string `json:"name"`
	Price int    `json:"price"`
}

var catalog = []Item{
	{Name: "Veg Sandwich", Price: 20},
	{Name: "Idli", Price: 15},
	{Name: "Pasta", Price: 30},
	{Name: "Fried Rice", Price: 40},
	{Name: "Lassi", Price: 15},
}

// Catalog returns a copy of the menu in display order.
func Catalog() []Item {
	out := make([]Item, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup finds a menu item by name.
func Lookup(name string) (Item, error) {
	for _, it := range catalog {
		if it.Name == name {
			return it, nil
		}
	}
	return Item{}, ErrUnknownItem
}

// Line is one ordered item with its quantity.
type Line struct {
	Item     string `json:"item"`
	Price    int    `json:"price"`
	Quantity int    `json:"quantity"`
	Subtotal int    `json:"subtotal"`
}

// Receipt records a confirmed order.
type Receipt struct {
	ID       uuid.UUID `json:"id"`
	Lines    []Line    `json:"lines"`
	Total    int       `json:"total"`
	PlacedAt time.Time `json:"placed_at"`
}

// ReceiptRepository stores receipts of confirmed orders.
type ReceiptRepository interface {
	Create(ctx context.Context, r Receipt) error
	Get(ctx context.Context, id uuid.UUID) (Receipt, error)
	List(ctx context.Context) ([]Receipt, error)
}

var (
	// ErrNotFound indicates the requested receipt does not exist.
	ErrNotFound = errors.New("receipt not found")
	// ErrUnknownItem indicates a name that is not on the menu.
	ErrUnknownItem = errors.New("unknown menu item")
	// ErrInvalidDelta indicates a quantity adjustment other than +1 or -1.
	ErrInvalidDelta = errors.New("delta must be +1 or -1")
	// ErrInvalidTransition indicates a screen change requested from the wrong screen.
	ErrInvalidTransition = errors.New("invalid screen transition")
)
