package inventory

import "context"

// Store is the persistence backend of a Catalog. Save replaces the whole
// stored catalog with products, in order.
type Store interface {
	Load(ctx context.Context) ([]Product, error)
	Save(ctx context.Context, products []Product) error
	Ping(ctx context.Context) error
}
