// Package quote records contact requests for priced server configurations.
package quote

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrQuoteNotFound is returned when no quote has the requested id.
	ErrQuoteNotFound = errors.New("quote not found")

	// ErrInvalidRequest wraps request field validation failures.
	ErrInvalidRequest = errors.New("invalid quote request")

	// ErrInvalidConfiguration wraps configurations the configurator rejects.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// Quote is a persisted, priced configuration with contact details.
type Quote struct {
	ID            string            `json:"id"`
	Configuration map[string]string `json:"configuration"`
	ContactName   string            `json:"contact_name"`
	ContactEmail  string            `json:"contact_email"`
	Company       *string           `json:"company,omitempty"`
	TotalPrice    decimal.Decimal   `json:"total_price"`
	TotalDiscount *decimal.Decimal  `json:"total_discount,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}

// MarshalJSON renders money amounts with exactly two decimal places.
func (q Quote) MarshalJSON() ([]byte, error) {
	type plain Quote
	var discount *string
	if q.TotalDiscount != nil {
		d := q.TotalDiscount.StringFixed(2)
		discount = &d
	}
	return json.Marshal(struct {
		plain
		TotalPrice    string  `json:"total_price"`
		TotalDiscount *string `json:"total_discount,omitempty"`
	}{plain(q), q.TotalPrice.StringFixed(2), discount})
}

// Request is the client input for a new quote.
type Request struct {
	Configuration map[string]string `json:"configuration" validate:"required"`
	ContactName   string            `json:"contact_name" validate:"required,max=200"`
	ContactEmail  string            `json:"contact_email" validate:"required,email"`
	Company       *string           `json:"company,omitempty" validate:"omitempty,max=200"`
}

// Response acknowledges a created quote.
type Response struct {
	ID         string          `json:"id"`
	TotalPrice decimal.Decimal `json:"total_price"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Repository persists quotes in append order.
type Repository interface {
	Append(ctx context.Context, q *Quote) error
	Get(ctx context.Context, id string) (*Quote, error)
	List(ctx context.Context) ([]Quote, error)
}

// MarshalJSON renders the total with exactly two decimal places.
func (r Response) MarshalJSON() ([]byte, error) {
	type plain Response
	return json.Marshal(struct {
		plain
		TotalPrice string `json:"total_price"`
	}{plain(r), r.TotalPrice.StringFixed(2)})
}
