package store

import (
	"context"
	"errors"
	"fmt"

	cerrors "github.com/abgdnv/gocatalog/internal/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	upsertProductSQL = `INSERT INTO products (id, name, description, price, available, category)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
		    description = EXCLUDED.description,
		    price = EXCLUDED.price,
		    available = EXCLUDED.available,
		    category = EXCLUDED.category`

	getProductSQL = `SELECT id, name, description, price, available, category
		FROM products WHERE id = $1`

	deleteProductSQL = `DELETE FROM products WHERE id = $1`

	allProductsSQL = `SELECT id, name, description, price, available, category
		FROM products ORDER BY seq`
)

var _ ProductStore = (*PgStore)(nil)

// PgStore implements ProductStore using PostgreSQL as the data store.
// Insertion order is preserved through the products.seq column.
type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a new instance of ProductStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{db: dbp}
}

// Put inserts or overwrites the record at p.ID. An overwrite keeps the
// row's original seq, so listing order stays stable.
func (s *PgStore) Put(ctx context.Context, p Product) error {
	_, err := s.db.Exec(ctx, upsertProductSQL,
		p.ID, p.Name, p.Description, p.Price, p.Available, string(p.Category))
	if err != nil {
		return fmt.Errorf("failed to put product %s: %w", p.ID, err)
	}
	return nil
}

// Get retrieves a product by its unique identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *PgStore) Get(ctx context.Context, id uuid.UUID) (*Product, error) {
	rows, err := s.db.Query(ctx, getProductSQL, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product %s: %w", id, err)
	}
	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cerrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product %s: %w", id, err)
	}
	return &p, nil
}

// Delete removes a product by its unique identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *PgStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, deleteProductSQL, id)
	if err != nil {
		return fmt.Errorf("failed to delete product %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return cerrors.ErrProductNotFound
	}
	return nil
}

// All retrieves every live product in insertion order.
// It returns a slice of products, which may be empty if no products exist.
func (s *PgStore) All(ctx context.Context) ([]Product, error) {
	rows, err := s.db.Query(ctx, allProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	products, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

func scanProduct(row pgx.CollectableRow) (Product, error) {
	var (
		p        Product
		category string
	)
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Available, &category)
	p.Category = Category(category)
	return p, err
}
