package ruleengine

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rafaeljc/cpq/internal/catalog"
	"github.com/rafaeljc/cpq/internal/logger"
	"github.com/rafaeljc/cpq/internal/observability"
	"github.com/rafaeljc/cpq/internal/validation"
)

// ErrUnsupportedRuleType is returned when no handler is registered for a
// rule type. It is a wiring fault, not a client error.
var ErrUnsupportedRuleType = errors.New("no handler registered for rule type")

// Evaluation outcomes recorded in cpq_rule_engine_evaluations_total.
const (
	outcomeSuccess     = "success"
	outcomeUnsupported = "unsupported"
	outcomeError       = "error"
	outcomePanic       = "panic"
)

// Engine filters the active rules of a type and dispatches the matches to
// the registered handler. It holds no per-call state and is safe for
// concurrent use.
type Engine struct {
	source   RuleSource
	registry *Registry
	logger   *slog.Logger // Dedicated logger instance (DI)
}

// New creates a new Engine.
// If log is nil, it defaults to slog.Default().
func New(source RuleSource, registry *Registry, log *slog.Logger) *Engine {
	validation.AssertPresent(source, "rule source")
	validation.AssertNotNil(registry, "handler registry")
	log = logger.OrDefault(log)

	return &Engine{
		source:   source,
		registry: registry,
		logger:   log,
	}
}

// ProcessRules evaluates the active rules of ruleType against ctx.
//
// Handler errors are logged with the rule type, matched rule ids and the
// context, then returned unchanged. A handler panic is logged and re-raised.
func (e *Engine) ProcessRules(ruleType string, ctx RuleContext) (res Result, err error) {
	start := time.Now()
	outcome := outcomeSuccess
	defer func() {
		observability.RuleEvaluationsTotal.WithLabelValues(ruleType, outcome).Inc()
		observability.RuleEvaluationDuration.WithLabelValues(ruleType).Observe(time.Since(start).Seconds())
	}()

	rules := e.source.RulesByType(ruleType)
	matched := rules[:0:0]
	for _, rule := range rules {
		if Matches(rule.Conditions, ctx) {
			matched = append(matched, rule)
		}
	}
	observability.RulesMatchedTotal.WithLabelValues(ruleType).Add(float64(len(matched)))

	e.logger.Debug("processing matching rules",
		slog.String("rule_type", ruleType),
		slog.Int("active", len(rules)),
		slog.Int("matched", len(matched)),
	)

	handler, ok := e.registry.Handler(ruleType)
	if !ok {
		outcome = outcomeUnsupported
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedRuleType, ruleType)
	}

	ids := make([]string, len(matched))
	for i, rule := range matched {
		ids[i] = rule.ID
	}

	defer func() {
		if p := recover(); p != nil {
			outcome = outcomePanic
			e.logger.Error("rule handler panicked",
				slog.String("rule_type", ruleType),
				slog.Any("rule_ids", ids),
				slog.Any("configuration", ctx.Configuration),
				slog.Any("panic", p),
			)
			panic(p)
		}
	}()

	res, err = handler.Execute(matched, ctx)
	if err != nil {
		outcome = outcomeError
		attrs := []any{
			slog.String("rule_type", ruleType),
			slog.Any("rule_ids", ids),
			slog.Any("configuration", ctx.Configuration),
			slog.String("error", err.Error()),
		}
		if ctx.CurrentOption != nil {
			attrs = append(attrs, slog.String("current_option", ctx.CurrentOption.ID))
		}
		e.logger.Error("rule handler execution failed", attrs...)
		return nil, err
	}

	return res, nil
}

// Validate runs the validation rules over configuration.
func (e *Engine) Validate(configuration map[string]string) (ValidationResult, error) {
	res, err := e.ProcessRules(catalog.RuleTypeValidation, RuleContext{Configuration: configuration})
	if err != nil {
		return ValidationResult{}, err
	}
	return assertResult[ValidationResult](res, catalog.RuleTypeValidation)
}

// Discount runs the discount rules over configuration.
func (e *Engine) Discount(configuration map[string]string) (DiscountResult, error) {
	res, err := e.ProcessRules(catalog.RuleTypeDiscount, RuleContext{Configuration: configuration})
	if err != nil {
		return DiscountResult{}, err
	}
	return assertResult[DiscountResult](res, catalog.RuleTypeDiscount)
}

// Availability runs the availability rules for ctx.CurrentOption.
func (e *Engine) Availability(ctx RuleContext) (AvailabilityResult, error) {
	res, err := e.ProcessRules(catalog.RuleTypeAvailability, ctx)
	if err != nil {
		return AvailabilityResult{}, err
	}
	return assertResult[AvailabilityResult](res, catalog.RuleTypeAvailability)
}

// assertResult narrows a handler Result to the type its rule type promises.
// A mismatch means a wrongly registered handler.
func assertResult[T Result](res Result, ruleType string) (T, error) {
	typed, ok := res.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("handler for rule type %s returned %T", ruleType, res)
	}
	return typed, nil
}
