// Package ruleengine evaluates declarative catalog rules against a
// configuration. Rules of one type are filtered by their conditions and the
// matches are handed, in priority order, to the Handler registered for that
// type, which aggregates them into a typed Result.
package ruleengine

import (
	"github.com/shopspring/decimal"

	"github.com/rafaeljc/cpq/internal/catalog"
)

// RuleContext is the per-evaluation input. It is built fresh for every call
// and never shared between evaluations.
type RuleContext struct {
	// Configuration maps category id to the selected option id.
	Configuration map[string]string

	// CurrentOption is the candidate option under test (availability checks).
	CurrentOption *catalog.Option
}

// Result is the aggregated outcome of one handler execution.
// The built-in handlers return ValidationResult, DiscountResult and
// AvailabilityResult.
type Result any

// ValidationResult collects every validation message in rule order.
type ValidationResult struct {
	Valid    bool
	Messages []string
}

// DiscountResult is the summed discount and one description per contributing rule.
type DiscountResult struct {
	Total        decimal.Decimal
	Descriptions []string
}

// AvailabilityResult reports whether the candidate option can be selected.
type AvailabilityResult struct {
	Available bool
}
