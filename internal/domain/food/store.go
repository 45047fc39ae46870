package food

import "context"

// Store is the document collection behind the catalog. Implementations must
// enforce name and slug uniqueness and reject out-of-range values on write.
type Store interface {
	Count(ctx context.Context) (int64, error)
	Find(ctx context.Context, q Query) ([]FoodItem, error)
	// FindOne returns (nil, nil) when nothing matches.
	FindOne(ctx context.Context, q Query) (*FoodItem, error)
	DistinctTypes(ctx context.Context) ([]string, error)
	// Insert fills in ID, CreatedAt and UpdatedAt on success.
	Insert(ctx context.Context, item *FoodItem) error
	// UpdatePrice returns ErrNotFound when id matches no record.
	UpdatePrice(ctx context.Context, id string, price int) (*FoodItem, error)
	// Delete returns ErrNotFound when id matches no record.
	Delete(ctx context.Context, id string) error
}
