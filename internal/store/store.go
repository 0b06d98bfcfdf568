// Package store provides keyed storage of product records with no
// business rules.
package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the stored representation of a catalog item.
type Product struct {
	ID          uuid.UUID
	Name        string
	Description string
	Price       decimal.Decimal
	Available   bool
	Category    Category
}

// ProductStore is an interface for product storage operations.
// It abstracts the underlying data store, allowing for different implementations (e.g., in-memory, database).
type ProductStore interface {
	// Put inserts or overwrites the record at p.ID.
	// It never fails for a well-formed record except on unrecoverable storage failure.
	Put(ctx context.Context, p Product) error

	// Get retrieves the live record for the given ID.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Get(ctx context.Context, id uuid.UUID) (*Product, error)

	// Delete removes the live record for the given ID.
	// Returns ErrProductNotFound if no product exists with the given ID,
	// including a repeated delete of the same ID.
	Delete(ctx context.Context, id uuid.UUID) error

	// All returns every live record in insertion order.
	// Each call yields a fresh snapshot; the result may be empty.
	All(ctx context.Context) ([]Product, error)
}
