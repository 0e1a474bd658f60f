package sweetshop

import (
	"context"
	"fmt"
	"net/http"
)

// CatalogService wraps the sweets endpoints of the remote API. Every call
// carries the stored bearer token.
type CatalogService struct {
	client *Client
}

// NewCatalogService returns a CatalogService issuing requests through c.
func NewCatalogService(c *Client) *CatalogService {
	return &CatalogService{client: c}
}

// List returns the whole catalog.
func (s *CatalogService) List(ctx context.Context) ([]Item, error) {
	items := []Item{}
	if err := s.client.do(ctx, call{
		op:     "catalog.list",
		method: http.MethodGet,
		path:   "/api/sweets",
		result: &items,
	}); err != nil {
		return nil, err
	}
	return items, nil
}

// Search returns the items matching every present criterion. An empty
// filter is the same as List.
func (s *CatalogService) Search(ctx context.Context, filter Filter) ([]Item, error) {
	if filter.IsEmpty() {
		return s.List(ctx)
	}
	items := []Item{}
	if err := s.client.do(ctx, call{
		op:     "catalog.search",
		method: http.MethodGet,
		path:   "/api/sweets/search",
		query:  filter.Query(),
		result: &items,
	}); err != nil {
		return nil, err
	}
	return items, nil
}

// Fetch is the single entry point views use to (re)load the catalog.
func (s *CatalogService) Fetch(ctx context.Context, filter Filter) ([]Item, error) {
	return s.Search(ctx, filter)
}

// Create adds an item. Administrator only.
func (s *CatalogService) Create(ctx context.Context, in ItemInput) (*Item, error) {
	item := &Item{}
	if err := s.client.do(ctx, call{
		op:     "catalog.create",
		method: http.MethodPost,
		path:   "/api/sweets",
		body:   in,
		result: item,
	}); err != nil {
		return nil, err
	}
	return item, nil
}

// Update replaces the writable fields of an item. Administrator only.
func (s *CatalogService) Update(ctx context.Context, id int, in ItemInput) (*Item, error) {
	item := &Item{}
	if err := s.client.do(ctx, call{
		op:     "catalog.update",
		method: http.MethodPut,
		path:   itemPath(id, ""),
		body:   in,
		result: item,
	}); err != nil {
		return nil, err
	}
	return item, nil
}

// Delete removes an item. Administrator only.
func (s *CatalogService) Delete(ctx context.Context, id int) error {
	return s.client.do(ctx, call{
		op:     "catalog.delete",
		method: http.MethodDelete,
		path:   itemPath(id, ""),
	})
}

type purchaseRequest struct {
	Quantity int    `json:"quantity_to_purchase"`
	Coupon   string `json:"coupon,omitempty"`
}

// Purchase decrements stock by qty. The stock check happens server side, a
// request over the available quantity fails with the server message intact.
func (s *CatalogService) Purchase(ctx context.Context, id, qty int, coupon string) (*PurchaseReceipt, error) {
	receipt := &PurchaseReceipt{}
	if err := s.client.do(ctx, call{
		op:     "catalog.purchase",
		method: http.MethodPost,
		path:   itemPath(id, "purchase"),
		body:   purchaseRequest{Quantity: qty, Coupon: coupon},
		result: receipt,
	}); err != nil {
		return nil, err
	}
	return receipt, nil
}

type restockRequest struct {
	Quantity int `json:"quantity_to_add"`
}

// Restock increments stock by qty. Administrator only.
func (s *CatalogService) Restock(ctx context.Context, id, qty int) (*RestockReceipt, error) {
	receipt := &RestockReceipt{}
	if err := s.client.do(ctx, call{
		op:     "catalog.restock",
		method: http.MethodPost,
		path:   itemPath(id, "restock"),
		body:   restockRequest{Quantity: qty},
		result: receipt,
	}); err != nil {
		return nil, err
	}
	return receipt, nil
}

func itemPath(id int, action string) string {
	if action == "" {
		return fmt.Sprintf("/api/sweets/%d", id)
	}
	return fmt.Sprintf("/api/sweets/%d/%s", id, action)
}
