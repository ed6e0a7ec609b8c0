// Package catalog provides read and administrative write access to the
// product catalog.
package catalog

import (
	"context"
	"fmt"
	"strings"

	domain "github.com/urbanthread/storefront/internal/app/domain/catalog"
	"github.com/urbanthread/storefront/internal/app/storage"
	"github.com/urbanthread/storefront/pkg/logger"
)

// DefaultSectionLimit caps the new-arrivals and best-sellers sections when
// the caller does not ask for a specific size.
const DefaultSectionLimit = 4

// Fields carries the writable attributes of a product.
type Fields struct {
	Name        string
	Category    string
	Rate        float64
	Price       float64
	ImageURL    string
	Description string
}

// Service implements the product catalog accessor.
type Service struct {
	products storage.ProductStore
	log      *logger.Logger
}

// New creates a configured catalog service.
func New(products storage.ProductStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("catalog")
	}
	return &Service{products: products, log: log}
}

// List returns all products newest first, optionally filtered by category.
// The category match ignores case.
func (s *Service) List(ctx context.Context, category string) ([]domain.Product, error) {
	return s.products.ListProducts(ctx, strings.TrimSpace(category))
}

// NewArrivals returns the most recently created products.
func (s *Service) NewArrivals(ctx context.Context, limit int) ([]domain.Product, error) {
	if limit <= 0 {
		limit = DefaultSectionLimit
	}
	return s.products.ListNewArrivals(ctx, limit)
}

// BestSellers returns products ranked by sales counter, recency breaking
// ties.
func (s *Service) BestSellers(ctx context.Context, limit int) ([]domain.Product, error) {
	if limit <= 0 {
		limit = DefaultSectionLimit
	}
	return s.products.ListBestSellers(ctx, limit)
}

// Get fetches a single product by id.
func (s *Service) Get(ctx context.Context, id int64) (domain.Product, error) {
	return s.products.GetProduct(ctx, id)
}

// Create validates the fields and persists a new product. The store assigns
// the identifier under its creation lock.
func (s *Service) Create(ctx context.Context, fields Fields) (domain.Product, error) {
	if err := validateFields(fields); err != nil {
		return domain.Product{}, err
	}

	created, err := s.products.CreateProduct(ctx, productFromFields(fields))
	if err != nil {
		return domain.Product{}, fmt.Errorf("create product: %w", err)
	}

	s.log.WithField("product_id", created.ID).
		WithField("category", created.Category).
		Info("product created")
	return created, nil
}

// Update replaces the writable attributes of an existing product. The sales
// counter and creation timestamp are owned by the store and untouched here.
func (s *Service) Update(ctx context.Context, id int64, fields Fields) (domain.Product, error) {
	if err := validateFields(fields); err != nil {
		return domain.Product{}, err
	}

	p := productFromFields(fields)
	p.ID = id
	updated, err := s.products.UpdateProduct(ctx, p)
	if err != nil {
		return domain.Product{}, err
	}

	s.log.WithField("product_id", updated.ID).Info("product updated")
	return updated, nil
}

// Delete removes a product and returns the deleted record.
func (s *Service) Delete(ctx context.Context, id int64) (domain.Product, error) {
	deleted, err := s.products.DeleteProduct(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}

	s.log.WithField("product_id", deleted.ID).Info("product deleted")
	return deleted, nil
}

func validateFields(fields Fields) error {
	if strings.TrimSpace(fields.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if strings.TrimSpace(fields.Category) == "" {
		return fmt.Errorf("category is required")
	}
	if fields.Price < 0 {
		return fmt.Errorf("price must be non-negative")
	}
	if fields.Rate < 0 || fields.Rate > 5 {
		return fmt.Errorf("rate must be between 0 and 5")
	}
	return nil
}

func productFromFields(fields Fields) domain.Product {
	return domain.Product{
		Name:        strings.TrimSpace(fields.Name),
		Category:    strings.TrimSpace(fields.Category),
		Rate:        fields.Rate,
		Price:       fields.Price,
		ImageURL:    strings.TrimSpace(fields.ImageURL),
		Description: strings.TrimSpace(fields.Description),
	}
}
