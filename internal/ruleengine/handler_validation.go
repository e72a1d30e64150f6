package ruleengine

import (
	"log/slog"

	"github.com/rafaeljc/cpq/internal/catalog"
	"github.com/rafaeljc/cpq/internal/logger"
)

// ValidationHandler collects the message of every matched add_error rule.
type ValidationHandler struct {
	logger *slog.Logger
}

// NewValidationHandler creates a ValidationHandler.
func NewValidationHandler(log *slog.Logger) *ValidationHandler {
	log = logger.OrDefault(log)
	return &ValidationHandler{logger: log}
}

// Supports implements Handler.
func (h *ValidationHandler) Supports(ruleType string) bool {
	return ruleType == catalog.RuleTypeValidation
}

// Execute implements Handler. It never fails.
func (h *ValidationHandler) Execute(rules []catalog.Rule, _ RuleContext) (Result, error) {
	messages := []string{}

	for _, rule := range rules {
		switch rule.Actions.Kind {
		case catalog.ActionAddError:
			messages = append(messages, rule.Actions.Message)
		default:
			logIgnoredAction(h.logger, rule)
		}
	}

	return ValidationResult{Valid: len(messages) == 0, Messages: messages}, nil
}

// logIgnoredAction records a matched rule whose action the handler does not act on.
func logIgnoredAction(log *slog.Logger, rule catalog.Rule) {
	log.Debug("ignoring rule action",
		slog.String("rule_id", rule.ID),
		slog.String("rule_type", rule.Type),
		slog.String("action_type", rule.Actions.Type),
	)
}
