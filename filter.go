package sweetshop

import (
	"math"
	"strconv"
	"strings"
)

// SearchForm holds the raw search input as typed by the user.
type SearchForm struct {
	Name     string `json:"name" query:"name" form:"name"`
	Category string `json:"category" query:"category" form:"category"`
	MinPrice string `json:"min_price" query:"min_price" form:"min_price"`
	MaxPrice string `json:"max_price" query:"max_price" form:"max_price"`
}

// Filter is the outgoing search criteria. Nil or empty fields are absent.
type Filter struct {
	Name     string
	Category string
	MinPrice *float64
	MaxPrice *float64
}

// BuildFilter assembles a Filter from form input. A field contributes only
// when it is non-empty after trimming; prices must parse to a finite number.
func BuildFilter(form SearchForm) Filter {
	return Filter{
		Name:     strings.TrimSpace(form.Name),
		Category: strings.TrimSpace(form.Category),
		MinPrice: parsePrice(form.MinPrice),
		MaxPrice: parsePrice(form.MaxPrice),
	}
}

func parsePrice(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// IsEmpty reports whether the filter selects the whole catalog.
func (f Filter) IsEmpty() bool {
	return f.Name == "" && f.Category == "" && f.MinPrice == nil && f.MaxPrice == nil
}

// Query encodes the present fields as query parameters.
func (f Filter) Query() map[string]string {
	q := map[string]string{}
	if f.Name != "" {
		q["name"] = f.Name
	}
	if f.Category != "" {
		q["category"] = f.Category
	}
	if f.MinPrice != nil {
		q["min_price"] = formatPrice(*f.MinPrice)
	}
	if f.MaxPrice != nil {
		q["max_price"] = formatPrice(*f.MaxPrice)
	}
	return q
}

// Form returns the filter in the shape of the search form, used to keep the
// inputs filled after a search.
func (f Filter) Form() SearchForm {
	form := SearchForm{Name: f.Name, Category: f.Category}
	if f.MinPrice != nil {
		form.MinPrice = formatPrice(*f.MinPrice)
	}
	if f.MaxPrice != nil {
		form.MaxPrice = formatPrice(*f.MaxPrice)
	}
	return form
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Stats summarizes a fetched catalog page.
type Stats struct {
	Items      int     `json:"items"`
	TotalValue float64 `json:"total_value"`
	TotalUnits int     `json:"total_units"`
	OutOfStock int     `json:"out_of_stock"`
	LowStock   int     `json:"low_stock"`
}

// Summarize computes the dashboard stats for items.
func Summarize(items []Item) Stats {
	stats := Stats{Items: len(items)}
	for _, item := range items {
		stats.TotalValue += item.Price * float64(item.Quantity)
		stats.TotalUnits += item.Quantity
		switch item.StockStatus() {
		case StockOut:
			stats.OutOfStock++
		case StockLow:
			stats.LowStock++
		}
	}
	return stats
}
