package catalog

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// ActionKind is the parsed discriminator of a rule action.
type ActionKind int

const (
	// ActionUnrecognized is any discriminator the handlers do not know.
	// It is kept so new action types can ship in data before code.
	ActionUnrecognized ActionKind = iota
	ActionAddError
	ActionPercentageDiscount
	ActionSetUnavailable
	ActionBasePrice
)

// Action discriminators as they appear in rules.jsonl.
const (
	ActionTypeAddError           = "add_error"
	ActionTypePercentageDiscount = "percentage_discount"
	ActionTypeSetUnavailable     = "set_unavailable"
	ActionTypeBasePrice          = "base_price"
)

// DefaultValidationMessage is used when an add_error action carries no message.
const DefaultValidationMessage = "Validation error"

var actionKinds = map[string]ActionKind{
	ActionTypeAddError:           ActionAddError,
	ActionTypePercentageDiscount: ActionPercentageDiscount,
	ActionTypeSetUnavailable:     ActionSetUnavailable,
	ActionTypeBasePrice:          ActionBasePrice,
}

// Action is the effect portion of a rule, decoded once at load time.
// Only the fields relevant to Kind are populated.
type Action struct {
	Kind ActionKind
	// Type is the raw discriminator, kept for logging unrecognized actions.
	// It is empty only when the rule has no actions at all.
	Type string `validate:"required"`

	// add_error
	Message string

	// percentage_discount
	Category    string
	Percentage  decimal.Decimal
	Description string

	// Amount is optional on every action; pricing rules rely on it.
	Amount    decimal.Decimal
	HasAmount bool

	raw map[string]json.RawMessage
}

// Field returns the raw JSON of an action field and whether it was present.
func (a Action) Field(name string) (json.RawMessage, bool) {
	v, ok := a.raw[name]
	return v, ok
}

// UnmarshalJSON decodes the action map and its discriminator-specific fields.
func (a *Action) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("actions must be a JSON object: %w", err)
	}

	typeRaw, ok := raw["type"]
	if !ok {
		return fmt.Errorf("actions: missing required field \"type\"")
	}
	var actionType string
	if err := json.Unmarshal(typeRaw, &actionType); err != nil {
		return fmt.Errorf("actions: \"type\" must be a string: %w", err)
	}

	out := Action{
		Kind: actionKinds[actionType],
		Type: actionType,
		raw:  raw,
	}

	if v, ok := raw["amount"]; ok {
		if err := json.Unmarshal(v, &out.Amount); err != nil {
			return fmt.Errorf("actions: invalid amount: %w", err)
		}
		out.HasAmount = true
	}

	switch out.Kind {
	case ActionAddError:
		out.Message = DefaultValidationMessage
		if err := optionalString(raw, "message", &out.Message); err != nil {
			return err
		}
	case ActionPercentageDiscount:
		if err := optionalString(raw, "category", &out.Category); err != nil {
			return err
		}
		if err := optionalString(raw, "description", &out.Description); err != nil {
			return err
		}
		if v, ok := raw["percentage"]; ok {
			if err := json.Unmarshal(v, &out.Percentage); err != nil {
				return fmt.Errorf("actions: invalid percentage: %w", err)
			}
		}
	}

	*a = out
	return nil
}

// MarshalJSON returns the original action map.
func (a Action) MarshalJSON() ([]byte, error) {
	if a.raw != nil {
		return json.Marshal(a.raw)
	}
	return json.Marshal(map[string]string{"type": a.Type})
}

func optionalString(raw map[string]json.RawMessage, key string, dst *string) error {
	v, ok := raw[key]
	if !ok {
		return nil
	}
	if err := json.Unmarshal(v, dst); err != nil {
		return fmt.Errorf("actions: %q must be a string: %w", key, err)
	}
	return nil
}
