package ruleengine

import (
	"log/slog"

	"github.com/rafaeljc/cpq/internal/catalog"
	"github.com/rafaeljc/cpq/internal/logger"
)

// AvailabilityHandler marks the candidate option unavailable as soon as one
// matched rule says so.
type AvailabilityHandler struct {
	logger *slog.Logger
}

// NewAvailabilityHandler creates an AvailabilityHandler.
func NewAvailabilityHandler(log *slog.Logger) *AvailabilityHandler {
	log = logger.OrDefault(log)
	return &AvailabilityHandler{logger: log}
}

// Supports implements Handler.
func (h *AvailabilityHandler) Supports(ruleType string) bool {
	return ruleType == catalog.RuleTypeAvailability
}

// Execute implements Handler. No matched rules means available.
func (h *AvailabilityHandler) Execute(rules []catalog.Rule, _ RuleContext) (Result, error) {
	for _, rule := range rules {
		if rule.Actions.Kind == catalog.ActionSetUnavailable {
			return AvailabilityResult{Available: false}, nil
		}
		logIgnoredAction(h.logger, rule)
	}
	return AvailabilityResult{Available: true}, nil
}
