package web

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-sweetshop"
)

// MinPasswordLength is enforced by the register form before calling the API.
const MinPasswordLength = 8

// LoginRequest payload
type LoginRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

// RegisterRequest is the registration form payload
type RegisterRequest struct {
	Name            string `form:"full_name" json:"full_name"`
	Email           string `form:"email" json:"email"`
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
}

// Validate will validate the payload
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Length(0, 200)),
		validation.Field(&r.Email, validation.Required, validation.Length(3, 254), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(MinPasswordLength, 128)),
		validation.Field(
			&r.ConfirmPassword,
			validation.Required,
			validation.By(ValidateStringEquals(r.Password)),
		),
	)
}

// Registration returns the API payload for the form.
func (r RegisterRequest) Registration() sweetshop.Registration {
	return sweetshop.Registration{
		Email:    strings.TrimSpace(r.Email),
		Name:     strings.TrimSpace(r.Name),
		Password: r.Password,
	}
}

// ItemRequest is the create and edit form payload
type ItemRequest struct {
	Name        string  `form:"sweet_name" json:"sweet_name"`
	Category    string  `form:"sweet_category" json:"sweet_category"`
	Price       float64 `form:"sweet_price" json:"sweet_price"`
	Quantity    int     `form:"quantity_in_stock" json:"quantity_in_stock"`
	Description string  `form:"sweet_description" json:"sweet_description"`
	ReturnTo    string  `form:"return_to" json:"return_to"`
}

// Validate will validate the payload
func (r ItemRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Category, validation.Required, validation.Length(1, 50)),
		validation.Field(&r.Price, validation.Required, validation.Min(0.01)),
		validation.Field(&r.Quantity, validation.Min(0)),
		validation.Field(&r.Description, validation.Length(0, 500)),
	)
}

// Input returns the API payload for the form.
func (r ItemRequest) Input() sweetshop.ItemInput {
	return sweetshop.ItemInput{
		Name:        strings.TrimSpace(r.Name),
		Category:    strings.TrimSpace(r.Category),
		Price:       r.Price,
		Quantity:    r.Quantity,
		Description: strings.TrimSpace(r.Description),
	}
}

// NewItemRequest pre-fills the edit form from item.
func NewItemRequest(item sweetshop.Item) ItemRequest {
	return ItemRequest{
		Name:        item.Name,
		Category:    item.Category,
		Price:       item.Price,
		Quantity:    item.Quantity,
		Description: item.Description,
	}
}

// PurchaseRequest is posted by the purchase control of a card
type PurchaseRequest struct {
	Quantity int    `form:"quantity" json:"quantity"`
	Coupon   string `form:"coupon" json:"coupon"`
	ReturnTo string `form:"return_to" json:"return_to"`
}

// Validate will validate the payload
func (r PurchaseRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Quantity, validation.Required, validation.Min(1)),
		validation.Field(&r.Coupon, validation.Length(0, 32)),
	)
}

// RestockRequest is posted by the admin restock control of a card
type RestockRequest struct {
	Quantity int    `form:"quantity" json:"quantity"`
	ReturnTo string `form:"return_to" json:"return_to"`
}

// Validate will validate the payload
func (r RestockRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Quantity, validation.Required, validation.Min(1)),
	)
}

// ReturnRequest carries only the return path, used by delete.
type ReturnRequest struct {
	ReturnTo string `form:"return_to" json:"return_to"`
}

// ValidateStringEquals checks that a field matches str.
func ValidateStringEquals(str string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != str {
			return fmt.Errorf("passwords do not match")
		}
		return nil
	}
}

// FormatValidationErrorToMap flattens ozzo errors into field -> message.
func FormatValidationErrorToMap(err error) map[string]string {
	out := map[string]string{}
	if err == nil {
		return out
	}

	var fields validation.Errors
	if errors.As(err, &fields) {
		for name, fieldErr := range fields {
			if fieldErr != nil {
				out[name] = fieldErr.Error()
			}
		}
		return out
	}

	out["form"] = err.Error()
	return out
}

// validationSummary is the flash message for a rejected form.
func validationSummary(err error) string {
	fields := FormatValidationErrorToMap(err)
	if msg, ok := fields["form"]; ok && len(fields) == 1 {
		return msg
	}
	return "Please correct the highlighted fields"
}
