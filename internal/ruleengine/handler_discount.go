package ruleengine

import (
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/rafaeljc/cpq/internal/catalog"
	"github.com/rafaeljc/cpq/internal/logger"
	"github.com/rafaeljc/cpq/internal/validation"
)

var oneHundred = decimal.NewFromInt(100)

// DiscountHandler sums percentage discounts over the selected option prices.
type DiscountHandler struct {
	prices PriceLookup
	logger *slog.Logger
}

// NewDiscountHandler creates a DiscountHandler reading prices from prices.
func NewDiscountHandler(prices PriceLookup, log *slog.Logger) *DiscountHandler {
	validation.AssertPresent(prices, "price lookup")
	log = logger.OrDefault(log)
	return &DiscountHandler{prices: prices, logger: log}
}

// Supports implements Handler.
func (h *DiscountHandler) Supports(ruleType string) bool {
	return ruleType == catalog.RuleTypeDiscount
}

// Execute implements Handler.
// Amounts are price * percentage / 100 of the option selected in the action's
// category. Rules whose category has no selection contribute nothing; only
// strictly positive amounts are added and described.
func (h *DiscountHandler) Execute(rules []catalog.Rule, ctx RuleContext) (Result, error) {
	total := decimal.Zero
	descriptions := []string{}

	for _, rule := range rules {
		amount, err := h.amount(rule, ctx)
		if err != nil {
			return nil, fmt.Errorf("discount rule %s: %w", rule.ID, err)
		}
		if amount.IsPositive() {
			total = total.Add(amount)
			descriptions = append(descriptions, rule.Actions.Description)
		}
	}

	return DiscountResult{Total: total, Descriptions: descriptions}, nil
}

func (h *DiscountHandler) amount(rule catalog.Rule, ctx RuleContext) (decimal.Decimal, error) {
	if rule.Actions.Kind != catalog.ActionPercentageDiscount {
		logIgnoredAction(h.logger, rule)
		return decimal.Zero, nil
	}

	optionID := ctx.Configuration[rule.Actions.Category]
	if optionID == "" {
		return decimal.Zero, nil
	}

	price, err := h.prices.OptionPrice(optionID)
	if err != nil {
		return decimal.Zero, err
	}

	return price.Mul(rule.Actions.Percentage).Div(oneHundred), nil
}
