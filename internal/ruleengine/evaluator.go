package ruleengine

import (
	"github.com/shopspring/decimal"

	"github.com/rafaeljc/cpq/internal/catalog"
)

// Handler aggregates the matched rules of one rule type.
type Handler interface {
	// Supports reports whether the handler owns ruleType.
	Supports(ruleType string) bool

	// Execute receives the rules whose conditions matched, already ordered
	// by ascending priority.
	Execute(rules []catalog.Rule, ctx RuleContext) (Result, error)
}

// RuleSource is the read-only rule data the engine evaluates.
// *catalog.Store satisfies it.
type RuleSource interface {
	RulesByType(ruleType string) []catalog.Rule
}

// PriceLookup resolves option prices for the discount handler.
// *catalog.Store satisfies it.
type PriceLookup interface {
	OptionPrice(optionID string) (decimal.Decimal, error)
}
