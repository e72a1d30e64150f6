// Package configurator prices and validates server configurations and
// reports which options remain selectable for a partial configuration.
package configurator

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rafaeljc/cpq/internal/catalog"
	"github.com/rafaeljc/cpq/internal/logger"
	"github.com/rafaeljc/cpq/internal/ruleengine"
	"github.com/rafaeljc/cpq/internal/validation"
)

// Catalog is the read-only catalog data the service needs.
// *catalog.Store satisfies it.
type Catalog interface {
	AllCategories() []catalog.Category
	AvailableOptionsByCategory(categoryID string) []catalog.Option
	OptionPrice(optionID string) (decimal.Decimal, error)
	BasePrice() decimal.Decimal
}

// RuleEvaluator runs the typed rule evaluations.
// *ruleengine.Engine satisfies it.
type RuleEvaluator interface {
	Validate(configuration map[string]string) (ruleengine.ValidationResult, error)
	Discount(configuration map[string]string) (ruleengine.DiscountResult, error)
	Availability(ctx ruleengine.RuleContext) (ruleengine.AvailabilityResult, error)
}

// ValidationError reports a configuration rejected by the validation rules.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "; ")
}

// ServerConfiguration is a validated and priced configuration.
type ServerConfiguration struct {
	CurrentSelection map[string]string `json:"current_selection"`
	TotalPrice       decimal.Decimal   `json:"total_price"`
	// TotalDiscount is nil unless a positive discount applies.
	TotalDiscount        *decimal.Decimal `json:"total_discount,omitempty"`
	DiscountDescriptions []string         `json:"discount_descriptions"`
	IsValid              bool             `json:"is_valid"`
}

// ServerOption is an option as offered to the client.
type ServerOption struct {
	ID          string          `json:"id"`
	DisplayName string          `json:"display_name"`
	Price       decimal.Decimal `json:"price"`
	Available   bool            `json:"available"`
}

// MarshalJSON renders money amounts with exactly two decimal places.
func (c ServerConfiguration) MarshalJSON() ([]byte, error) {
	type plain ServerConfiguration
	return json.Marshal(struct {
		plain
		TotalPrice    string  `json:"total_price"`
		TotalDiscount *string `json:"total_discount,omitempty"`
	}{plain(c), c.TotalPrice.StringFixed(2), fixedAmount(c.TotalDiscount)})
}

// MarshalJSON renders the price with exactly two decimal places.
func (o ServerOption) MarshalJSON() ([]byte, error) {
	type plain ServerOption
	return json.Marshal(struct {
		plain
		Price string `json:"price"`
	}{plain(o), o.Price.StringFixed(2)})
}

func fixedAmount(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.StringFixed(2)
	return &s
}

// Service composes the catalog and the rule engine.
type Service struct {
	catalog Catalog
	rules   RuleEvaluator
	logger  *slog.Logger
}

// NewService creates a Service. store and rules are mandatory.
func NewService(store Catalog, rules RuleEvaluator, log *slog.Logger) *Service {
	validation.AssertPresent(store, "catalog")
	validation.AssertPresent(rules, "rule evaluator")
	log = logger.OrDefault(log)
	return &Service{catalog: store, rules: rules, logger: log}
}

// GetServerConfiguration validates selection and prices it.
//
// A selection rejected by the validation rules yields a *ValidationError and
// is never priced. An unknown option id yields the catalog's
// *catalog.UnknownReferenceError.
func (s *Service) GetServerConfiguration(selection map[string]string) (*ServerConfiguration, error) {
	if selection == nil {
		selection = map[string]string{}
	}

	verdict, err := s.rules.Validate(selection)
	if err != nil {
		return nil, err
	}
	if !verdict.Valid {
		return nil, &ValidationError{Messages: verdict.Messages}
	}

	price := s.catalog.BasePrice()
	for _, optionID := range selection {
		if optionID == "" {
			continue
		}
		optionPrice, err := s.catalog.OptionPrice(optionID)
		if err != nil {
			return nil, err
		}
		price = price.Add(optionPrice)
	}

	discount, err := s.rules.Discount(selection)
	if err != nil {
		return nil, err
	}

	result := &ServerConfiguration{
		CurrentSelection:     selection,
		TotalPrice:           price.Sub(discount.Total),
		DiscountDescriptions: discount.Descriptions,
		IsValid:              true,
	}
	if result.DiscountDescriptions == nil {
		result.DiscountDescriptions = []string{}
	}
	if discount.Total.IsPositive() {
		total := discount.Total
		result.TotalDiscount = &total
	}

	s.logger.Debug("configuration priced",
		slog.Int("selected", len(selection)),
		slog.String("total_price", result.TotalPrice.String()),
		slog.String("total_discount", discount.Total.String()),
	)
	return result, nil
}

// GetServerOptions lists the available options of every category.
// With a non-empty current configuration each option's availability comes
// from the availability rules; otherwise it is the catalog's static flag.
func (s *Service) GetServerOptions(current map[string]string) (map[string][]ServerOption, error) {
	out := make(map[string][]ServerOption)

	for _, category := range s.catalog.AllCategories() {
		options := s.catalog.AvailableOptionsByCategory(category.ID)
		categoryOptions := make([]ServerOption, 0, len(options))

		for _, option := range options {
			available := option.Available
			if len(current) > 0 {
				res, err := s.rules.Availability(ruleengine.RuleContext{
					Configuration: current,
					CurrentOption: &option,
				})
				if err != nil {
					return nil, err
				}
				available = res.Available
			}

			categoryOptions = append(categoryOptions, ServerOption{
				ID:          option.ID,
				DisplayName: option.DisplayName,
				Price:       option.Price,
				Available:   available,
			})
		}

		out[category.ID] = categoryOptions
	}

	return out, nil
}

// CategoryOrder returns category ids in display order, for rendering the
// map returned by GetServerOptions.
func (s *Service) CategoryOrder() []string {
	categories := s.catalog.AllCategories()
	ids := make([]string, len(categories))
	for i, c := range categories {
		ids[i] = c.ID
	}
	return ids
}

// Categories returns the catalog categories in display order.
func (s *Service) Categories() []catalog.Category {
	return s.catalog.AllCategories()
}
