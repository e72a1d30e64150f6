package catalog

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/rafaeljc/cpq/internal/logger"
)

// Store is the immutable, indexed catalog.
type Store struct {
	categories []Category // sorted by Order
	options    []Option
	rules      []Rule
	settings   []Setting

	categoriesByID    map[string]Category
	optionsByID       map[string]Option
	optionsByCategory map[string][]Option // sorted by Order
	pricesByOptionID  map[string]decimal.Decimal
	rulesByType       map[string][]Rule
	activeRulesByType map[string][]Rule // sorted by Priority, stable
	settingsByKey     map[string]Setting
}

// Stats summarizes the size of a loaded catalog.
type Stats struct {
	Categories  int
	Options     int
	Rules       int
	ActiveRules int
	Settings    int
}

// Load reads the catalog from dir, builds the indexes and validates them.
func Load(dir string, log *slog.Logger) (*Store, error) {
	log = logger.OrDefault(log)

	c, err := ReadDir(dir)
	if err != nil {
		return nil, err
	}

	s, err := New(c)
	if err != nil {
		return nil, err
	}

	st := s.Stats()
	log.Info("catalog loaded",
		slog.String("dir", dir),
		slog.Int("categories", st.Categories),
		slog.Int("options", st.Options),
		slog.Int("rules", st.Rules),
		slog.Int("active_rules", st.ActiveRules),
		slog.Int("settings", st.Settings),
	)

	return s, nil
}

// New builds a Store from already decoded collections.
// Every integrity violation is collected into a single *DataError.
func New(c *Collections) (*Store, error) {
	if c == nil {
		return nil, &DataError{Problems: []string{"no catalog data"}}
	}

	s := &Store{
		categories: slices.Clone(c.Categories),
		options:    slices.Clone(c.Options),
		rules:      slices.Clone(c.Rules),
		settings:   slices.Clone(c.Settings),
	}

	if problems := validate(c); len(problems) > 0 {
		return nil, &DataError{Problems: problems}
	}

	s.buildIndexes()
	return s, nil
}

func (s *Store) buildIndexes() {
	slices.SortStableFunc(s.categories, func(a, b Category) int {
		return cmp.Compare(a.Order, b.Order)
	})

	s.categoriesByID = make(map[string]Category, len(s.categories))
	for _, cat := range s.categories {
		s.categoriesByID[cat.ID] = cat
	}

	s.optionsByID = make(map[string]Option, len(s.options))
	s.optionsByCategory = make(map[string][]Option)
	s.pricesByOptionID = make(map[string]decimal.Decimal, len(s.options))
	for _, opt := range s.options {
		s.optionsByID[opt.ID] = opt
		s.optionsByCategory[opt.CategoryID] = append(s.optionsByCategory[opt.CategoryID], opt)
		s.pricesByOptionID[opt.ID] = opt.Price
	}
	for _, opts := range s.optionsByCategory {
		slices.SortStableFunc(opts, func(a, b Option) int {
			return cmp.Compare(a.Order, b.Order)
		})
	}

	s.rulesByType = make(map[string][]Rule)
	s.activeRulesByType = make(map[string][]Rule)
	for _, rule := range s.rules {
		s.rulesByType[rule.Type] = append(s.rulesByType[rule.Type], rule)
		if rule.Active {
			s.activeRulesByType[rule.Type] = append(s.activeRulesByType[rule.Type], rule)
		}
	}
	// Equal priorities keep load order.
	for _, rules := range s.activeRulesByType {
		slices.SortStableFunc(rules, func(a, b Rule) int {
			return cmp.Compare(a.Priority, b.Priority)
		})
	}

	s.settingsByKey = make(map[string]Setting, len(s.settings))
	for _, setting := range s.settings {
		s.settingsByKey[setting.Key] = setting
	}
}

// records checks required fields through the struct tags.
var records = newRecordValidator()

func newRecordValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		switch name {
		case "-":
			return ""
		case "":
			return strings.ToLower(fld.Name)
		}
		return name
	})
	return v
}

// requiredFieldProblems reports every required field missing from record,
// the n-th (1-based) of its kind.
func requiredFieldProblems(kind string, n int, record any) []string {
	err := records.Struct(record)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []string{fmt.Sprintf("%s #%d could not be checked: %v", kind, n, err)}
	}

	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		// Namespace is "Type.field.sub"; drop the type name.
		_, field, _ := strings.Cut(fe.Namespace(), ".")
		problems = append(problems, fmt.Sprintf("%s #%d is missing required field '%s'", kind, n, field))
	}
	return problems
}

// validate checks required fields and referential integrity and returns
// every problem found.
func validate(c *Collections) []string {
	var problems []string

	if len(c.Categories) == 0 {
		problems = append(problems, "No categories defined")
	}
	if len(c.Options) == 0 {
		problems = append(problems, "No options defined")
	}

	categoryIDs := make(map[string]struct{}, len(c.Categories))
	for i, cat := range c.Categories {
		problems = append(problems, requiredFieldProblems("Category", i+1, cat)...)
		if cat.ID == "" {
			continue
		}
		if _, dup := categoryIDs[cat.ID]; dup {
			problems = append(problems, fmt.Sprintf("Duplicate category id '%s'", cat.ID))
		}
		categoryIDs[cat.ID] = struct{}{}
	}

	optionIDs := make(map[string]struct{}, len(c.Options))
	for i, opt := range c.Options {
		problems = append(problems, requiredFieldProblems("Option", i+1, opt)...)
		if opt.ID != "" {
			if _, dup := optionIDs[opt.ID]; dup {
				problems = append(problems, fmt.Sprintf("Duplicate option id '%s'", opt.ID))
			}
			optionIDs[opt.ID] = struct{}{}
		}
		if _, ok := categoryIDs[opt.CategoryID]; opt.CategoryID != "" && !ok {
			problems = append(problems, fmt.Sprintf("Option '%s' references unknown category '%s'", opt.ID, opt.CategoryID))
		}
		if opt.Price.IsNegative() {
			problems = append(problems, fmt.Sprintf("Option '%s' has a negative price %s", opt.ID, opt.Price.String()))
		}
	}

	ruleIDs := make(map[string]struct{}, len(c.Rules))
	for i, rule := range c.Rules {
		problems = append(problems, requiredFieldProblems("Rule", i+1, rule)...)
		if rule.ID == "" {
			continue
		}
		if _, dup := ruleIDs[rule.ID]; dup {
			problems = append(problems, fmt.Sprintf("Duplicate rule id '%s'", rule.ID))
		}
		ruleIDs[rule.ID] = struct{}{}
	}

	settingKeys := make(map[string]struct{}, len(c.Settings))
	for i, setting := range c.Settings {
		problems = append(problems, requiredFieldProblems("Setting", i+1, setting)...)
		if setting.Key == "" {
			continue
		}
		if _, dup := settingKeys[setting.Key]; dup {
			problems = append(problems, fmt.Sprintf("Duplicate setting key '%s'", setting.Key))
		}
		settingKeys[setting.Key] = struct{}{}
	}

	return problems
}

// AllCategories returns every category sorted by display order.
func (s *Store) AllCategories() []Category {
	return slices.Clone(s.categories)
}

// Category looks up a category by id.
func (s *Store) Category(id string) (Category, bool) {
	cat, ok := s.categoriesByID[id]
	return cat, ok
}

// Option looks up an option by id.
func (s *Store) Option(id string) (Option, bool) {
	opt, ok := s.optionsByID[id]
	return opt, ok
}

// OptionsByCategory returns the options of a category sorted by display order.
// Unknown categories yield an empty slice.
func (s *Store) OptionsByCategory(categoryID string) []Option {
	return slices.Clone(s.optionsByCategory[categoryID])
}

// AvailableOptionsByCategory is OptionsByCategory restricted to available options.
func (s *Store) AvailableOptionsByCategory(categoryID string) []Option {
	opts := s.optionsByCategory[categoryID]
	out := make([]Option, 0, len(opts))
	for _, opt := range opts {
		if opt.Available {
			out = append(out, opt)
		}
	}
	return out
}

// OptionPrice returns the price of an option or an *UnknownReferenceError.
func (s *Store) OptionPrice(optionID string) (decimal.Decimal, error) {
	price, ok := s.pricesByOptionID[optionID]
	if !ok {
		return decimal.Zero, &UnknownReferenceError{Kind: "option", ID: optionID}
	}
	return price, nil
}

// BasePrice returns the amount of the active base pricing rule, or zero.
func (s *Store) BasePrice() decimal.Decimal {
	for _, rule := range s.activeRulesByType[RuleTypePricing] {
		if rule.ID == BasePricingRuleID {
			return rule.Actions.Amount
		}
	}
	return decimal.Zero
}

// RulesByType returns the active rules of a type ordered by ascending
// priority (load order on ties). Unknown types yield an empty slice.
func (s *Store) RulesByType(ruleType string) []Rule {
	rules := s.activeRulesByType[ruleType]
	if rules == nil {
		return []Rule{}
	}
	return slices.Clone(rules)
}

// AllRulesByType returns every rule of a type, active or not, in load order.
func (s *Store) AllRulesByType(ruleType string) []Rule {
	return slices.Clone(s.rulesByType[ruleType])
}

// Setting looks up a setting by key.
func (s *Store) Setting(key string) (Setting, bool) {
	setting, ok := s.settingsByKey[key]
	return setting, ok
}

// Stats returns collection counts.
func (s *Store) Stats() Stats {
	active := 0
	for _, rules := range s.activeRulesByType {
		active += len(rules)
	}
	return Stats{
		Categories:  len(s.categories),
		Options:     len(s.options),
		Rules:       len(s.rules),
		ActiveRules: active,
		Settings:    len(s.settings),
	}
}
