package web

import (
	"context"
	"fmt"
	"net/url"

	"github.com/goliatone/go-sweetshop"
)

const (
	msgLoadFailed     = "Failed to load sweets"
	msgPurchaseFailed = "Purchase failed"
	msgRestockFailed  = "Restock failed"
	msgCreateFailed   = "Failed to create sweet"
	msgUpdateFailed   = "Failed to update sweet"
	msgDeleteFailed   = "Failed to delete sweet"
	msgItemNotFound   = "Sweet not found"
)

// DashboardPage is the view model of the inventory dashboard.
type DashboardPage struct {
	Items    []sweetshop.Item     `json:"items"`
	Stats    sweetshop.Stats      `json:"stats"`
	Search   sweetshop.SearchForm `json:"search"`
	Filtered bool                 `json:"filtered"`
	Error    string               `json:"error,omitempty"`
	ReturnTo string               `json:"return_to"`
}

// LoadDashboard fetches the catalog for form. An empty form lists
// everything. A failed fetch yields an empty page carrying the message.
func LoadDashboard(ctx context.Context, catalog *sweetshop.CatalogService, dashboard string, form sweetshop.SearchForm) DashboardPage {
	filter := sweetshop.BuildFilter(form)
	page := DashboardPage{
		Items:    []sweetshop.Item{},
		Search:   filter.Form(),
		Filtered: !filter.IsEmpty(),
		ReturnTo: dashboardURL(dashboard, filter),
	}

	items, err := catalog.Fetch(ctx, filter)
	if err != nil {
		page.Error = sweetshop.Message(err, msgLoadFailed)
		return page
	}

	page.Items = items
	page.Stats = sweetshop.Summarize(items)
	return page
}

// dashboardURL is the dashboard path with the active search in the query,
// so a redirect after a mutation re-runs the same search.
func dashboardURL(dashboard string, filter sweetshop.Filter) string {
	q := url.Values{}
	for k, v := range filter.Query() {
		q.Set(k, v)
	}
	if len(q) == 0 {
		return dashboard
	}
	return dashboard + "?" + q.Encode()
}

// FindItem looks id up in the full catalog. The API has no single item
// endpoint.
func FindItem(ctx context.Context, catalog *sweetshop.CatalogService, id int) (*sweetshop.Item, error) {
	items, err := catalog.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if item.ID == id {
			return &item, nil
		}
	}
	return nil, sweetshop.ErrNotFound.Clone().WithMetadata(map[string]any{
		"detail":   msgItemNotFound,
		"sweet_id": id,
	})
}

// Purchase forwards a purchase and returns the message to flash.
func Purchase(ctx context.Context, catalog *sweetshop.CatalogService, id int, req PurchaseRequest) (string, error) {
	receipt, err := catalog.Purchase(ctx, id, req.Quantity, req.Coupon)
	if err != nil {
		return sweetshop.Message(err, msgPurchaseFailed), err
	}
	total := receipt.DiscountedPrice
	if total <= 0 {
		total = receipt.TotalPrice
	}
	return fmt.Sprintf("Purchased %d x %s for %s", receipt.QuantityPurchased, receipt.ItemName, FormatPrice(total)), nil
}

// Restock forwards a restock and returns the message to flash.
func Restock(ctx context.Context, catalog *sweetshop.CatalogService, id int, req RestockRequest) (string, error) {
	receipt, err := catalog.Restock(ctx, id, req.Quantity)
	if err != nil {
		return sweetshop.Message(err, msgRestockFailed), err
	}
	return fmt.Sprintf("Restocked %s: %d in stock", receipt.ItemName, receipt.NewQuantity), nil
}

// CreateItem forwards a create and returns the message to flash.
func CreateItem(ctx context.Context, catalog *sweetshop.CatalogService, req ItemRequest) (string, error) {
	item, err := catalog.Create(ctx, req.Input())
	if err != nil {
		return sweetshop.Message(err, msgCreateFailed), err
	}
	return fmt.Sprintf("Added %s", item.Name), nil
}

// UpdateItem forwards an update and returns the message to flash.
func UpdateItem(ctx context.Context, catalog *sweetshop.CatalogService, id int, req ItemRequest) (string, error) {
	item, err := catalog.Update(ctx, id, req.Input())
	if err != nil {
		return sweetshop.Message(err, msgUpdateFailed), err
	}
	return fmt.Sprintf("Updated %s", item.Name), nil
}

// DeleteItem forwards a delete and returns the message to flash.
func DeleteItem(ctx context.Context, catalog *sweetshop.CatalogService, id int) (string, error) {
	if err := catalog.Delete(ctx, id); err != nil {
		return sweetshop.Message(err, msgDeleteFailed), err
	}
	return "Sweet deleted", nil
}
