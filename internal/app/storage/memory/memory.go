// Package memory provides a thread-safe in-memory implementation of the
// storage interfaces. It backs tests and runs the server without a database.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/urbanthread/storefront/internal/app/domain/catalog"
	"github.com/urbanthread/storefront/internal/app/domain/identity"
	"github.com/urbanthread/storefront/internal/app/domain/order"
	"github.com/urbanthread/storefront/internal/app/storage"
)

// Store is an in-memory persistence layer implementing the storage
// interfaces. All operations are safe for concurrent use.
type Store struct {
	mu            sync.RWMutex
	nextProductID int64
	nextOrderID   int64
	nextUserID    int64
	products      map[int64]catalog.Product
	orders        map[int64]order.Order
	users         map[int64]identity.User
}

var _ storage.ProductStore = (*Store)(nil)
var _ storage.OrderStore = (*Store)(nil)
var _ storage.UserStore = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		nextProductID: 1,
		nextOrderID:   1,
		nextUserID:    1,
		products:      make(map[int64]catalog.Product),
		orders:        make(map[int64]order.Order),
		users:         make(map[int64]identity.User),
	}
}

// ProductStore implementation -------------------------------------------------

func (s *Store) CreateProduct(_ context.Context, p catalog.Product) (catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Mirrors the database behavior: the next id is one past the highest
	// ever assigned, held stable under the store lock.
	p.ID = s.nextProductID
	s.nextProductID++
	p.CreatedAt = time.Now().UTC()
	p.SalesCount = 0

	s.products[p.ID] = p
	return p, nil
}

func (s *Store) UpdateProduct(_ context.Context, p catalog.Product) (catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.products[p.ID]
	if !ok {
		return catalog.Product{}, storage.ErrNotFound
	}

	p.CreatedAt = original.CreatedAt
	p.SalesCount = original.SalesCount

	s.products[p.ID] = p
	return p, nil
}

func (s *Store) GetProduct(_ context.Context, id int64) (catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return catalog.Product{}, storage.ErrNotFound
	}
	return p, nil
}

func (s *Store) ListProducts(_ context.Context, category string) ([]catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]catalog.Product, 0, len(s.products))
	for _, p := range s.products {
		if category == "" || strings.EqualFold(p.Category, category) {
			result = append(result, p)
		}
	}
	sortNewestFirst(result)
	return result, nil
}

func (s *Store) ListNewArrivals(ctx context.Context, limit int) ([]catalog.Product, error) {
	result, err := s.ListProducts(ctx, "")
	if err != nil {
		return nil, err
	}
	return truncate(result, limit), nil
}

func (s *Store) ListBestSellers(_ context.Context, limit int) ([]catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]catalog.Product, 0, len(s.products))
	for _, p := range s.products {
		result = append(result, p)
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].SalesCount != result[j].SalesCount {
			return result[i].SalesCount > result[j].SalesCount
		}
		return newerFirst(result[i], result[j])
	})
	return truncate(result, limit), nil
}

func (s *Store) DeleteProduct(_ context.Context, id int64) (catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return catalog.Product{}, storage.ErrNotFound
	}
	delete(s.products, id)
	return p, nil
}

// OrderStore implementation ---------------------------------------------------

func (s *Store) RecordCheckout(_ context.Context, ord order.Order) (order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ord.ID = s.nextOrderID
	s.nextOrderID++
	ord.CreatedAt = time.Now().UTC()
	ord.Items = append([]order.LineItem(nil), ord.Items...)

	s.orders[ord.ID] = ord

	// Counter updates are best-effort per item: an unknown product id is a
	// soft reference and does not invalidate the order.
	for _, item := range ord.Items {
		if item.ProductID <= 0 {
			continue
		}
		p, ok := s.products[item.ProductID]
		if !ok {
			continue
		}
		qty := item.Quantity
		if qty < 1 {
			qty = 1
		}
		p.SalesCount += qty
		s.products[item.ProductID] = p
	}

	return ord, nil
}

// Orders returns a snapshot of all recorded orders, newest first.
func (s *Store) Orders() []order.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]order.Order, 0, len(s.orders))
	for _, ord := range s.orders {
		ord.Items = append([]order.LineItem(nil), ord.Items...)
		result = append(result, ord)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return result
}

// UserStore implementation ----------------------------------------------------

func (s *Store) CreateUser(_ context.Context, u identity.User) (identity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u.ID = s.nextUserID
	s.nextUserID++
	s.users[u.ID] = u
	return u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (identity.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return identity.User{}, storage.ErrNotFound
}

// Helpers ---------------------------------------------------------------------

func sortNewestFirst(products []catalog.Product) {
	sort.SliceStable(products, func(i, j int) bool {
		return newerFirst(products[i], products[j])
	})
}

func newerFirst(a, b catalog.Product) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

func truncate(products []catalog.Product, limit int) []catalog.Product {
	if limit > 0 && len(products) > limit {
		return products[:limit]
	}
	return products
}
