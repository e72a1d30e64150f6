package ruleengine

import "github.com/rafaeljc/cpq/internal/catalog"

// Reserved condition fields. Any other field name is a category id looked up
// in the configuration.
const (
	FieldMissingCategories = "missing_categories"
	FieldOptionCategory    = "option_category"
	FieldOptionValues      = "option_values"
)

// Matches reports whether every condition holds for ctx.
// Fields are ANDed in source order; the values of one field are ORed.
// An empty condition set always matches.
func Matches(conditions catalog.Conditions, ctx RuleContext) bool {
	for _, cond := range conditions {
		if !matchesField(cond, ctx) {
			return false
		}
	}
	return true
}

func matchesField(cond catalog.Condition, ctx RuleContext) bool {
	switch cond.Field {
	case FieldMissingCategories:
		// A key present with an empty value counts as selected.
		for _, categoryID := range cond.Values {
			if _, ok := ctx.Configuration[categoryID]; !ok {
				return true
			}
		}
		return false

	case FieldOptionCategory:
		return ctx.CurrentOption != nil && cond.Accepts(ctx.CurrentOption.CategoryID)

	case FieldOptionValues:
		return ctx.CurrentOption != nil && cond.Accepts(ctx.CurrentOption.ID)

	default:
		selected, ok := ctx.Configuration[cond.Field]
		return ok && cond.Accepts(selected)
	}
}
