package catalog

import (
	"context"
	"errors"
)

// HealthChecker reports whether the catalog can serve configurations.
// It implements observability.Checker.
type HealthChecker struct {
	store *Store
}

// NewHealthChecker creates a checker over a loaded store.
func NewHealthChecker(store *Store) *HealthChecker {
	return &HealthChecker{store: store}
}

// Name returns the component name.
func (h *HealthChecker) Name() string {
	return "catalog"
}

// Check fails when the store is missing or has nothing to offer.
func (h *HealthChecker) Check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if h.store == nil {
		return errors.New("catalog is not loaded")
	}
	stats := h.store.Stats()
	if stats.Categories == 0 || stats.Options == 0 {
		return errors.New("catalog is empty")
	}
	return nil
}
