package storage

import (
	"context"
	"errors"

	"github.com/urbanthread/storefront/internal/app/domain/catalog"
	"github.com/urbanthread/storefront/internal/app/domain/identity"
	"github.com/urbanthread/storefront/internal/app/domain/order"
)

// ErrNotFound is returned by stores when the addressed record does not exist.
var ErrNotFound = errors.New("record not found")

// ProductStore persists catalog products. Create assigns the identifier;
// concurrent creators must never observe a duplicate id.
type ProductStore interface {
	CreateProduct(ctx context.Context, p catalog.Product) (catalog.Product, error)
	UpdateProduct(ctx context.Context, p catalog.Product) (catalog.Product, error)
	GetProduct(ctx context.Context, id int64) (catalog.Product, error)
	// ListProducts returns products newest first, optionally filtered by
	// category (case-insensitive match).
	ListProducts(ctx context.Context, category string) ([]catalog.Product, error)
	// ListNewArrivals returns the limit newest products.
	ListNewArrivals(ctx context.Context, limit int) ([]catalog.Product, error)
	// ListBestSellers returns the limit products with the highest sales
	// count, ties broken by recency.
	ListBestSellers(ctx context.Context, limit int) ([]catalog.Product, error)
	DeleteProduct(ctx context.Context, id int64) (catalog.Product, error)
}

// OrderStore persists checkout orders. RecordCheckout must apply the order
// insert and every per-item sales-counter increment as one atomic unit:
// either the order row and all counter deltas become visible together, or
// none of them do. Items without a usable product id contribute no counter
// delta but still appear in the stored item snapshot.
type OrderStore interface {
	RecordCheckout(ctx context.Context, ord order.Order) (order.Order, error)
}

// UserStore persists administrative principals.
type UserStore interface {
	CreateUser(ctx context.Context, u identity.User) (identity.User, error)
	GetUserByEmail(ctx context.Context, email string) (identity.User, error)
}
