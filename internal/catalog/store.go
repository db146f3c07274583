package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-pos/internal/discount"
)

// ErrNotFound indicates the requested catalog record does not exist.
var ErrNotFound = errors.New("catalog record not found")

// Store provides read-only access to catalog data. The engine never writes
// through this interface; catalog management belongs to an external system.
type Store interface {
	GetProduct(ctx context.Context, id string) (Product, error)
	ListProducts(ctx context.Context, storeID string) ([]Product, error)
	ListCategories(ctx context.Context, storeID string) ([]Category, error)
	ListOrderDiscounts(ctx context.Context, storeID string) ([]discount.Discount, error)
}

// PGStore reads catalog records from Postgres.
type PGStore struct {
	Pool *pgxpool.Pool
}

const productColumns = `id, name, COALESCE(category_id::text, ''), unit_price, stock, modifier_groups, discounts`

// GetProduct loads a single product with its modifier groups and discounts.
func (s *PGStore) GetProduct(ctx context.Context, id string) (Product, error) {
	if s == nil || s.Pool == nil {
		return Product{}, errors.New("catalog store not configured")
	}
	row := s.Pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// ListProducts returns the products available to a store ordered by name.
func (s *PGStore) ListProducts(ctx context.Context, storeID string) ([]Product, error) {
	if s == nil || s.Pool == nil {
		return nil, errors.New("catalog store not configured")
	}
	rows, err := s.Pool.Query(ctx,
		`SELECT `+productColumns+` FROM products WHERE store_id = $1 ORDER BY name`, storeID)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListCategories returns the categories defined for a store.
func (s *PGStore) ListCategories(ctx context.Context, storeID string) ([]Category, error) {
	if s == nil || s.Pool == nil {
		return nil, errors.New("catalog store not configured")
	}
	rows, err := s.Pool.Query(ctx,
		`SELECT id, name FROM categories WHERE store_id = $1 ORDER BY name`, storeID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()
	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListOrderDiscounts returns the order-level discounts a cashier may apply.
func (s *PGStore) ListOrderDiscounts(ctx context.Context, storeID string) ([]discount.Discount, error) {
	if s == nil || s.Pool == nil {
		return nil, errors.New("catalog store not configured")
	}
	rows, err := s.Pool.Query(ctx,
		`SELECT name, kind, value, max_discount FROM order_discounts WHERE store_id = $1 ORDER BY name`, storeID)
	if err != nil {
		return nil, fmt.Errorf("list order discounts: %w", err)
	}
	defer rows.Close()
	var out []discount.Discount
	for rows.Next() {
		var (
			d    discount.Discount
			kind string
			max  *decimal.Decimal
		)
		if err := rows.Scan(&d.Name, &kind, &d.Value, &max); err != nil {
			return nil, fmt.Errorf("scan order discount: %w", err)
		}
		d.Kind = discount.Kind(kind)
		d.MaxDiscount = max
		out = append(out, d)
	}
	return out, rows.Err()
}

func scanProduct(row pgx.Row) (Product, error) {
	var (
		p             Product
		groupsJSON    []byte
		discountsJSON []byte
	)
	if err := row.Scan(&p.ID, &p.Name, &p.CategoryID, &p.UnitPrice, &p.Stock, &groupsJSON, &discountsJSON); err != nil {
		return Product{}, err
	}
	if len(groupsJSON) > 0 {
		if err := json.Unmarshal(groupsJSON, &p.ModifierGroups); err != nil {
			return Product{}, fmt.Errorf("decode modifier groups: %w", err)
		}
	}
	if len(discountsJSON) > 0 {
		if err := json.Unmarshal(discountsJSON, &p.Discounts); err != nil {
			return Product{}, fmt.Errorf("decode discounts: %w", err)
		}
	}
	return p, nil
}
