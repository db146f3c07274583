package catalog

import (
	"context"
	"errors"

	"github.com/noah-isme/backend-pos/internal/discount"
)

// Service orchestrates catalog reads with cache-aside semantics.
type Service struct {
	Store Store
	Cache *Cache
}

// Products returns the store's product list, served from cache when possible.
func (s *Service) Products(ctx context.Context, storeID string) ([]Product, error) {
	if s == nil || s.Store == nil {
		return nil, errors.New("catalog service not configured")
	}
	var cached []Product
	if ok, err := s.Cache.GetJSON(ctx, productsKey(storeID), &cached); err == nil && ok {
		return cached, nil
	}
	products, err := s.Store.ListProducts(ctx, storeID)
	if err != nil {
		return nil, err
	}
	_ = s.Cache.SetJSON(ctx, productsKey(storeID), products)
	return products, nil
}

// Categories returns the store's categories, served from cache when possible.
func (s *Service) Categories(ctx context.Context, storeID string) ([]Category, error) {
	if s == nil || s.Store == nil {
		return nil, errors.New("catalog service not configured")
	}
	var cached []Category
	if ok, err := s.Cache.GetJSON(ctx, categoriesKey(storeID), &cached); err == nil && ok {
		return cached, nil
	}
	categories, err := s.Store.ListCategories(ctx, storeID)
	if err != nil {
		return nil, err
	}
	_ = s.Cache.SetJSON(ctx, categoriesKey(storeID), categories)
	return categories, nil
}

// OrderDiscounts returns the order-level discounts available to cashiers.
func (s *Service) OrderDiscounts(ctx context.Context, storeID string) ([]discount.Discount, error) {
	if s == nil || s.Store == nil {
		return nil, errors.New("catalog service not configured")
	}
	var cached []discount.Discount
	if ok, err := s.Cache.GetJSON(ctx, discountsKey(storeID), &cached); err == nil && ok {
		return cached, nil
	}
	discounts, err := s.Store.ListOrderDiscounts(ctx, storeID)
	if err != nil {
		return nil, err
	}
	_ = s.Cache.SetJSON(ctx, discountsKey(storeID), discounts)
	return discounts, nil
}

// Product looks up a single product by id. Lookups bypass the cache since
// add-to-cart must observe the freshest unit price.
func (s *Service) Product(ctx context.Context, id string) (Product, error) {
	if s == nil || s.Store == nil {
		return Product{}, errors.New("catalog service not configured")
	}
	return s.Store.GetProduct(ctx, id)
}
