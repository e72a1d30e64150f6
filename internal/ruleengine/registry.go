package ruleengine

import (
	"log/slog"
	"maps"
	"slices"

	"github.com/rafaeljc/cpq/internal/catalog"
	"github.com/rafaeljc/cpq/internal/logger"
	"github.com/rafaeljc/cpq/internal/validation"
)

// Registry maps rule types to their Handler.
// Register is meant for wiring time only; the registry is read without
// locking once evaluations start.
type Registry struct {
	handlers map[string]Handler
}

// NewRegistry creates a Registry with the built-in validation, discount and
// availability handlers. prices backs the discount handler.
func NewRegistry(prices PriceLookup, log *slog.Logger) *Registry {
	log = logger.OrDefault(log)

	r := &Registry{handlers: make(map[string]Handler)}
	r.Register(catalog.RuleTypeValidation, NewValidationHandler(log))
	r.Register(catalog.RuleTypeDiscount, NewDiscountHandler(prices, log))
	r.Register(catalog.RuleTypeAvailability, NewAvailabilityHandler(log))

	log.Debug("handler registry initialized", slog.Any("rule_types", r.SupportedTypes()))
	return r
}

// Register binds h to ruleType, replacing any previous handler.
// It panics if h is nil or does not support ruleType.
func (r *Registry) Register(ruleType string, h Handler) {
	validation.AssertPresent(h, "handler")
	validation.Assert(h.Supports(ruleType), "handler %T does not support rule type %q", h, ruleType)
	r.handlers[ruleType] = h
}

// Handler returns the handler for ruleType.
func (r *Registry) Handler(ruleType string) (Handler, bool) {
	h, ok := r.handlers[ruleType]
	return h, ok
}

// SupportedTypes returns the registered rule types, sorted.
func (r *Registry) SupportedTypes() []string {
	return slices.Sorted(maps.Keys(r.handlers))
}
