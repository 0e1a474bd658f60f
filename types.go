package sweetshop

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Logger is the structured logger used across the package. Arguments after
// the message are key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Storage is the persistent client-side key/value store that holds the
// bearer token and the last known identity snapshot.
type Storage interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
}

const (
	// TokenKey is the storage key holding the bearer token
	TokenKey = "access_token"
	// IdentityKey is the storage key holding the identity snapshot
	IdentityKey = "user"
)

// Identity is the authenticated user profile as asserted by the remote API.
type Identity struct {
	ID              int        `json:"user_id" yaml:"user_id"`
	Email           string     `json:"email_address" yaml:"email_address"`
	Name            string     `json:"full_name" yaml:"full_name"`
	IsAdministrator bool       `json:"is_administrator" yaml:"is_administrator"`
	CreatedAt       *time.Time `json:"account_created_at,omitempty" yaml:"account_created_at,omitempty"`
}

// Initial returns the upper cased first letter of the display name.
func (i Identity) Initial() string {
	name := strings.TrimSpace(i.Name)
	if name == "" {
		return ""
	}
	return strings.ToUpper(string([]rune(name)[0]))
}

// Registration is the payload used to create a new account.
type Registration struct {
	Email           string `json:"email_address"`
	Name            string `json:"full_name"`
	Password        string `json:"password"`
	IsAdministrator bool   `json:"is_administrator"`
}

// AccessToken is returned by a successful credential exchange.
type AccessToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Item is a catalog item. Copies held by the client are read only and
// possibly stale; they are replaced by re-fetching after every mutation.
type Item struct {
	ID          int     `json:"sweet_id"`
	Name        string  `json:"sweet_name"`
	Category    string  `json:"sweet_category"`
	Price       float64 `json:"sweet_price"`
	Quantity    int     `json:"quantity_in_stock"`
	Description string  `json:"sweet_description,omitempty"`
}

// LowStockThreshold is the quantity under which an item is flagged as low stock
const LowStockThreshold = 10

// StockStatus values
const (
	StockOut = "out"
	StockLow = "low"
	StockOK  = "ok"
)

// StockStatus classifies the remaining quantity.
func (i Item) StockStatus() string {
	switch {
	case i.Quantity <= 0:
		return StockOut
	case i.Quantity < LowStockThreshold:
		return StockLow
	default:
		return StockOK
	}
}

// OutOfStock reports whether purchase controls should be disabled.
func (i Item) OutOfStock() bool {
	return i.Quantity <= 0
}

// Input returns the writable fields of the item.
func (i Item) Input() ItemInput {
	return ItemInput{
		Name:        i.Name,
		Category:    i.Category,
		Price:       i.Price,
		Quantity:    i.Quantity,
		Description: i.Description,
	}
}

// ItemInput is the create/update payload, an Item without its id.
type ItemInput struct {
	Name        string  `json:"sweet_name"`
	Category    string  `json:"sweet_category"`
	Price       float64 `json:"sweet_price"`
	Quantity    int     `json:"quantity_in_stock"`
	Description string  `json:"sweet_description,omitempty"`
}

// PurchaseReceipt is returned after stock was decremented.
type PurchaseReceipt struct {
	Message           string  `json:"message"`
	ItemID            int     `json:"sweet_id"`
	ItemName          string  `json:"sweet_name"`
	PreviousQuantity  int     `json:"previous_quantity"`
	NewQuantity       int     `json:"new_quantity"`
	QuantityPurchased int     `json:"quantity_purchased"`
	TotalPrice        float64 `json:"total_price"`
	DiscountedPrice   float64 `json:"discounted_price"`
}

// RestockReceipt is returned after stock was incremented.
type RestockReceipt struct {
	Message          string `json:"message"`
	ItemID           int    `json:"sweet_id"`
	ItemName         string `json:"sweet_name"`
	PreviousQuantity int    `json:"previous_quantity"`
	NewQuantity      int    `json:"new_quantity"`
	QuantityAdded    int    `json:"quantity_added"`
}

// AuthGateway is the subset of the Auth Service the session depends on.
type AuthGateway interface {
	Login(ctx context.Context, email, password string) (*AccessToken, error)
	CurrentUser(ctx context.Context) (*Identity, error)
	Register(ctx context.Context, reg Registration) (*Identity, error)
}

type defLogger struct{}

func (d defLogger) Debug(msg string, args ...any) { d.log("DBG", msg, args...) }
func (d defLogger) Info(msg string, args ...any)  { d.log("INF", msg, args...) }
func (d defLogger) Warn(msg string, args ...any)  { d.log("WRN", msg, args...) }
func (d defLogger) Error(msg string, args ...any) { d.log("ERR", msg, args...) }

func (d defLogger) log(level, msg string, args ...any) {
	var b strings.Builder
	b.WriteString("[" + level + "] SWEETSHOP " + msg)
	for i := 0; i < len(args); i += 2 {
		if i+1 < len(args) {
			fmt.Fprintf(&b, " %v=%v", args[i], args[i+1])
		} else {
			fmt.Fprintf(&b, " %v", args[i])
		}
	}
	fmt.Println(b.String())
}

// DefaultLogger returns the stdout logger used when none is configured.
func DefaultLogger() Logger {
	return defLogger{}
}
