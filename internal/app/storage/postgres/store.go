// Package postgres implements the storage interfaces backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/urbanthread/storefront/internal/app/domain/catalog"
	"github.com/urbanthread/storefront/internal/app/domain/identity"
	"github.com/urbanthread/storefront/internal/app/domain/order"
	"github.com/urbanthread/storefront/internal/app/storage"
)

// Store implements the storage interfaces backed by PostgreSQL.
type Store struct {
	db *sql.DB
}

var _ storage.ProductStore = (*Store)(nil)
var _ storage.OrderStore = (*Store)(nil)
var _ storage.UserStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const productColumns = `id, name, category, rate, price, image_url, description, created_at, sales_count`

// --- ProductStore -----------------------------------------------------------

func (s *Store) CreateProduct(ctx context.Context, p catalog.Product) (catalog.Product, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return catalog.Product{}, fmt.Errorf("begin create product: %w", err)
	}
	defer tx.Rollback()

	// Id assignment is max(id)+1 computed under an exclusive table lock so
	// concurrent creators cannot race to the same id. The serial sequence is
	// then resynced so plain-insert paths stay consistent.
	if _, err = tx.ExecContext(ctx, `LOCK TABLE products IN EXCLUSIVE MODE`); err != nil {
		return catalog.Product{}, fmt.Errorf("lock products: %w", err)
	}

	var nextID int64
	if err = tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(id), 0) + 1 FROM products`).Scan(&nextID); err != nil {
		return catalog.Product{}, fmt.Errorf("next product id: %w", err)
	}

	row := tx.QueryRowContext(ctx, `
		INSERT INTO products (id, name, category, rate, price, image_url, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, sales_count
	`, nextID, p.Name, p.Category, p.Rate, p.Price, nullString(p.ImageURL), nullString(p.Description))
	if err = row.Scan(&p.CreatedAt, &p.SalesCount); err != nil {
		return catalog.Product{}, fmt.Errorf("insert product: %w", err)
	}
	p.ID = nextID

	if _, err = tx.ExecContext(ctx,
		`SELECT setval(pg_get_serial_sequence('products', 'id'), $1, true)`, nextID); err != nil {
		return catalog.Product{}, fmt.Errorf("sync product sequence: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return catalog.Product{}, fmt.Errorf("commit create product: %w", err)
	}
	return p, nil
}

func (s *Store) UpdateProduct(ctx context.Context, p catalog.Product) (catalog.Product, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE products
		SET name = $2, category = $3, rate = $4, price = $5, image_url = $6, description = $7
		WHERE id = $1
		RETURNING `+productColumns+`
	`, p.ID, p.Name, p.Category, p.Rate, p.Price, nullString(p.ImageURL), nullString(p.Description))

	updated, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Product{}, storage.ErrNotFound
	}
	if err != nil {
		return catalog.Product{}, fmt.Errorf("update product: %w", err)
	}
	return updated, nil
}

func (s *Store) GetProduct(ctx context.Context, id int64) (catalog.Product, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = $1
	`, id)

	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Product{}, storage.ErrNotFound
	}
	if err != nil {
		return catalog.Product{}, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (s *Store) ListProducts(ctx context.Context, category string) ([]catalog.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	args := []any{}
	if category != "" {
		query += ` WHERE LOWER(category) = LOWER($1)`
		args = append(args, category)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	return s.queryProducts(ctx, query, args...)
}

func (s *Store) ListNewArrivals(ctx context.Context, limit int) ([]catalog.Product, error) {
	return s.queryProducts(ctx, `
		SELECT `+productColumns+`
		FROM products
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`, limit)
}

func (s *Store) ListBestSellers(ctx context.Context, limit int) ([]catalog.Product, error) {
	return s.queryProducts(ctx, `
		SELECT `+productColumns+`
		FROM products
		ORDER BY sales_count DESC, created_at DESC, id DESC
		LIMIT $1
	`, limit)
}

func (s *Store) DeleteProduct(ctx context.Context, id int64) (catalog.Product, error) {
	row := s.db.QueryRowContext(ctx, `
		DELETE FROM products
		WHERE id = $1
		RETURNING `+productColumns+`
	`, id)

	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Product{}, storage.ErrNotFound
	}
	if err != nil {
		return catalog.Product{}, fmt.Errorf("delete product: %w", err)
	}
	return p, nil
}

func (s *Store) queryProducts(ctx context.Context, query string, args ...any) ([]catalog.Product, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	result := make([]catalog.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// --- OrderStore -------------------------------------------------------------

func (s *Store) RecordCheckout(ctx context.Context, ord order.Order) (order.Order, error) {
	itemList, err := json.Marshal(ord.Items)
	if err != nil {
		return order.Order{}, fmt.Errorf("marshal item list: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return order.Order{}, fmt.Errorf("begin checkout: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		INSERT INTO transactions (product_id, total_amount, payment_method, shipping_address, email, item_list)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, ord.ProductID, ord.TotalAmount, ord.PaymentMethod, ord.ShippingAddress, ord.Email, itemList)
	if err = row.Scan(&ord.ID, &ord.CreatedAt); err != nil {
		return order.Order{}, fmt.Errorf("insert order: %w", err)
	}

	// A single arithmetic UPDATE keeps concurrent checkouts on the same
	// product from losing increments. An unknown product id simply matches
	// zero rows; the order itself is still recorded.
	for _, item := range ord.Items {
		if item.ProductID <= 0 {
			continue
		}
		qty := item.Quantity
		if qty < 1 {
			qty = 1
		}
		if _, err = tx.ExecContext(ctx, `
			UPDATE products
			SET sales_count = COALESCE(sales_count, 0) + $1
			WHERE id = $2
		`, qty, item.ProductID); err != nil {
			return order.Order{}, fmt.Errorf("update sales count for product %d: %w", item.ProductID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return order.Order{}, fmt.Errorf("commit checkout: %w", err)
	}
	return ord, nil
}

// --- UserStore --------------------------------------------------------------

func (s *Store) CreateUser(ctx context.Context, u identity.User) (identity.User, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO admins (name, email, password)
		VALUES ($1, $2, $3)
		RETURNING id
	`, u.Name, u.Email, u.PasswordHash)
	if err := row.Scan(&u.ID); err != nil {
		return identity.User{}, fmt.Errorf("insert admin: %w", err)
	}
	return u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (identity.User, error) {
	var u identity.User
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, password
		FROM admins
		WHERE LOWER(email) = LOWER($1)
	`, email)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return identity.User{}, storage.ErrNotFound
		}
		return identity.User{}, fmt.Errorf("get admin: %w", err)
	}
	return u, nil
}

// Helpers ---------------------------------------------------------------------

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (catalog.Product, error) {
	var (
		p           catalog.Product
		imageURL    sql.NullString
		description sql.NullString
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Category, &p.Rate, &p.Price,
		&imageURL, &description, &p.CreatedAt, &p.SalesCount); err != nil {
		return catalog.Product{}, err
	}
	p.ImageURL = imageURL.String
	p.Description = description.String
	return p, nil
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}
