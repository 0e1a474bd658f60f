package web

import (
	"fmt"
	"maps"
	"sync"

	"github.com/flosch/pongo2/v6"
	"github.com/goliatone/go-router"
	"github.com/goliatone/go-sweetshop"
	"github.com/goliatone/go-sweetshop/middleware/csrf"
)

// TemplateUserKey is the view key holding the current identity.
var TemplateUserKey = "current_user"

// TemplateFlashKey is the view key holding the flash of the previous request.
var TemplateFlashKey = "flash"

// TemplateHelpers returns the data every view receives regardless of the
// request.
//
// In templates:
//
//	{% if is_admin %}
//	{{ current_user.initial }}
//	{{ item.sweet_price|price }}
//	<span class="badge {{ item.stock_status }}">{{ item.quantity_in_stock|stock_label }}</span>
//	{{ csrf_field|safe }}
func TemplateHelpers() map[string]any {
	helpers := map[string]any{
		"low_stock_threshold": sweetshop.LowStockThreshold,
		"stock": map[string]string{
			"out": sweetshop.StockOut,
			"low": sweetshop.StockLow,
			"ok":  sweetshop.StockOK,
		},
	}
	maps.Copy(helpers, csrf.CSRFTemplateHelpers())
	return helpers
}

// MergeTemplateData adds the session snapshot, flash and CSRF helpers of
// the request to data. Keys in data win.
func MergeTemplateData(ctx router.Context, data router.ViewContext) router.ViewContext {
	out := router.ViewContext{}
	maps.Copy(out, TemplateHelpers())

	snap := sweetshop.Snapshot{State: sweetshop.StateBootstrapping, Loading: true}
	if session, ok := SessionFrom(ctx); ok {
		snap = session.Snapshot()
	}

	if snap.Identity != nil {
		out[TemplateUserKey] = NewUserView(*snap.Identity)
	}
	switch f := ctx.Locals(TemplateFlashKey).(type) {
	case router.ViewContext:
		out[TemplateFlashKey] = map[string]any(f)
	case map[string]any:
		out[TemplateFlashKey] = f
	}
	out["is_authenticated"] = snap.Authenticated()
	out["is_admin"] = snap.IsAdmin()
	out["session_state"] = snap.State.String()

	maps.Copy(out, csrf.CSRFTemplateHelpersWithRouter(ctx, csrf.DefaultContextKey))
	maps.Copy(out, data)
	return out
}

var (
	filtersOnce sync.Once
	filtersErr  error
)

// RegisterFilters installs the pongo2 filters used by the views. It is safe
// to call more than once.
func RegisterFilters() error {
	filtersOnce.Do(func() {
		for name, fn := range map[string]pongo2.FilterFunction{
			"price":       filterPrice,
			"stock_label": filterStockLabel,
		} {
			if pongo2.FilterExists(name) {
				continue
			}
			if err := pongo2.RegisterFilter(name, fn); err != nil {
				filtersErr = err
				return
			}
		}
	})
	return filtersErr
}

func filterPrice(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsValue(FormatPrice(in.Float())), nil
}

func filterStockLabel(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsValue(StockLabel(in.Integer())), nil
}

// FormatPrice renders a unit price.
func FormatPrice(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

// StockLabel is the human readable stock badge.
func StockLabel(qty int) string {
	switch (sweetshop.Item{Quantity: qty}).StockStatus() {
	case sweetshop.StockOut:
		return "Out of stock"
	case sweetshop.StockLow:
		return fmt.Sprintf("Low stock: %d", qty)
	default:
		return fmt.Sprintf("In stock: %d", qty)
	}
}
