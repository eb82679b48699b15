package cart

import (
	"context"
	"errors"
)

var (
	ErrQuantity        = errors.New("quantity must be positive")
	ErrProductNotFound = errors.New("product not found in catalog")
	ErrNotInCart       = errors.New("product not in cart")
)

// Line is one requested mutation: add or remove this many units of a
// product.
type Line struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Item is a cart entry joined with the catalog display name.
type Item struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
}

// Snapshot is the full cart state returned after every operation. Items
// are sorted by product id.
type Snapshot struct {
	UserID     string `json:"user_id"`
	Items      []Item `json:"items"`
	TotalItems int    `json:"total_items"`
}

// Store holds per-user carts. Batches are all-or-nothing: a failing line
// leaves the cart untouched. Stored quantities are always >= 1; an
// operation driving a quantity to zero or below deletes the entry.
type Store interface {
	Add(ctx context.Context, userID string, lines []Line) (Snapshot, error)
	Remove(ctx context.Context, userID string, lines []Line) (Snapshot, error)
	Get(ctx context.Context, userID string) (Snapshot, bool)
	Create(ctx context.Context, userID string) Snapshot
}
