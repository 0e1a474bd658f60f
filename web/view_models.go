package web

import (
	"strconv"

	"github.com/goliatone/go-sweetshop"
)

// Render serializes view data through JSON before it reaches the template
// engine, so templates only see json keys: methods are lost and numbers
// come back as float64. The models below carry the keys the views use and
// precompute every derived value.

// ItemCard is one product card of the dashboard.
type ItemCard struct {
	ID          string  `json:"sweet_id"`
	Name        string  `json:"sweet_name"`
	Category    string  `json:"sweet_category"`
	Description string  `json:"sweet_description"`
	Price       float64 `json:"sweet_price"`
	Quantity    int     `json:"quantity_in_stock"`
	StockStatus string  `json:"stock_status"`
	OutOfStock  bool    `json:"out_of_stock"`
}

// NewItemCard builds the card of item.
func NewItemCard(item sweetshop.Item) ItemCard {
	return ItemCard{
		ID:          strconv.Itoa(item.ID),
		Name:        item.Name,
		Category:    item.Category,
		Description: item.Description,
		Price:       item.Price,
		Quantity:    item.Quantity,
		StockStatus: item.StockStatus(),
		OutOfStock:  item.OutOfStock(),
	}
}

// StatsView holds the dashboard counters as display strings.
type StatsView struct {
	Items      string  `json:"items"`
	TotalUnits string  `json:"total_units"`
	TotalValue float64 `json:"total_value"`
	OutOfStock string  `json:"out_of_stock"`
	LowStock   string  `json:"low_stock"`
}

// NewStatsView formats stats for the dashboard header.
func NewStatsView(stats sweetshop.Stats) StatsView {
	return StatsView{
		Items:      strconv.Itoa(stats.Items),
		TotalUnits: strconv.Itoa(stats.TotalUnits),
		TotalValue: stats.TotalValue,
		OutOfStock: strconv.Itoa(stats.OutOfStock),
		LowStock:   strconv.Itoa(stats.LowStock),
	}
}

// DashboardView is what the dashboard template renders.
type DashboardView struct {
	Items    []ItemCard           `json:"items"`
	Stats    StatsView            `json:"stats"`
	Search   sweetshop.SearchForm `json:"search"`
	Filtered bool                 `json:"filtered"`
	Error    string               `json:"error,omitempty"`
	ReturnTo string               `json:"return_to"`
}

// View returns the template model of the page.
func (p DashboardPage) View() DashboardView {
	cards := make([]ItemCard, 0, len(p.Items))
	for _, item := range p.Items {
		cards = append(cards, NewItemCard(item))
	}
	return DashboardView{
		Items:    cards,
		Stats:    NewStatsView(p.Stats),
		Search:   p.Search,
		Filtered: p.Filtered,
		Error:    p.Error,
		ReturnTo: p.ReturnTo,
	}
}

// ItemFormView pre-fills the create and edit form. Numbers are kept as
// strings so an empty new form renders empty inputs.
type ItemFormView struct {
	Name        string `json:"sweet_name"`
	Category    string `json:"sweet_category"`
	Price       string `json:"sweet_price"`
	Quantity    string `json:"quantity_in_stock"`
	Description string `json:"sweet_description"`
	ReturnTo    string `json:"return_to"`
}

// View returns the form model of r.
func (r ItemRequest) View() ItemFormView {
	v := ItemFormView{
		Name:        r.Name,
		Category:    r.Category,
		Quantity:    strconv.Itoa(r.Quantity),
		Description: r.Description,
		ReturnTo:    r.ReturnTo,
	}
	if r.Price != 0 {
		v.Price = strconv.FormatFloat(r.Price, 'f', -1, 64)
	}
	return v
}

// UserView is the navbar model of the signed in identity.
type UserView struct {
	ID              string `json:"user_id"`
	Name            string `json:"full_name"`
	Email           string `json:"email_address"`
	IsAdministrator bool   `json:"is_administrator"`
	Initial         string `json:"initial"`
}

// NewUserView builds the navbar model of identity.
func NewUserView(identity sweetshop.Identity) UserView {
	return UserView{
		ID:              strconv.Itoa(identity.ID),
		Name:            identity.Name,
		Email:           identity.Email,
		IsAdministrator: identity.IsAdministrator,
		Initial:         identity.Initial(),
	}
}
