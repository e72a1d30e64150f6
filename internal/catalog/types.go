// Package catalog loads the read-only product catalog (categories, options,
// rules and settings) and serves lookups over it.
//
// The catalog is built once at startup and never mutated afterwards, so a
// *Store can be shared by any number of goroutines without locking.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Well known rule types.
const (
	RuleTypeValidation   = "validation"
	RuleTypeDiscount     = "discount"
	RuleTypeAvailability = "availability"
	RuleTypePricing      = "pricing"
)

// BasePricingRuleID identifies the pricing rule that carries the base price.
const BasePricingRuleID = "base_pricing"

// Category is a configuration dimension (CPU, RAM, storage...).
type Category struct {
	ID          string `json:"id" validate:"required"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Order       int    `json:"order"`
}

// Option is a selectable, priced choice within a category.
type Option struct {
	ID          string          `json:"id" validate:"required"`
	CategoryID  string          `json:"category_id" validate:"required"`
	DisplayName string          `json:"display_name"`
	Price       decimal.Decimal `json:"price"`
	Available   bool            `json:"available"`
	Order       int             `json:"order"`
}

// UnmarshalJSON rejects records without a price; a zero value would
// otherwise make the option silently free.
func (o *Option) UnmarshalJSON(data []byte) error {
	type plain Option
	var aux struct {
		plain
		Price *decimal.Decimal `json:"price"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Price == nil {
		return fmt.Errorf("option: missing required field \"price\"")
	}

	*o = Option(aux.plain)
	o.Price = *aux.Price
	return nil
}

// Setting is a free-form key/value entry shipped with the catalog.
type Setting struct {
	Key         string `json:"key" validate:"required"`
	Value       string `json:"value"`
	Description string `json:"description"`
}

// Rule is a declarative condition/action pair.
type Rule struct {
	ID         string     `json:"id" validate:"required"`
	Name       string     `json:"name"`
	Type       string     `json:"type" validate:"required"`
	Conditions Conditions `json:"conditions"`
	Actions    Action     `json:"actions"`
	// Priority orders evaluation; lower runs first.
	Priority int  `json:"priority"`
	Active   bool `json:"active"`
}

// Condition lists the accepted values for a single field.
type Condition struct {
	Field  string
	Values []string
}

// Accepts reports whether v is one of the accepted values.
func (c Condition) Accepts(v string) bool {
	for _, accepted := range c.Values {
		if accepted == v {
			return true
		}
	}
	return false
}

// Conditions is the ordered set of field conditions of a rule.
// The JSON form is an object; field order is kept as written in the source.
type Conditions []Condition

// UnmarshalJSON decodes a JSON object of field -> []string keeping key order.
func (c *Conditions) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*c = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("conditions must be a JSON object")
	}

	var out Conditions
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		field := keyTok.(string)

		var values []string
		if err := dec.Decode(&values); err != nil {
			return fmt.Errorf("condition %q must be a list of strings: %w", field, err)
		}
		out = append(out, Condition{Field: field, Values: values})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	*c = out
	return nil
}

// MarshalJSON encodes the conditions back into an ordered JSON object.
func (c Conditions) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, cond := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(cond.Field)
		if err != nil {
			return nil, err
		}
		values := cond.Values
		if values == nil {
			values = []string{}
		}
		val, err := json.Marshal(values)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
