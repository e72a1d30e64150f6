package observability

import "context"

// Checker defines the contract for any component that reports its health.
// Implementations must be safe for concurrent use and honor ctx.
type Checker interface {
	// Name returns the unique identifier of the component (e.g., "postgres", "catalog").
	Name() string
	// Check returns nil if healthy.
	Check(ctx context.Context) error
}

// CheckerFunc adapts a function to the Checker interface.
type CheckerFunc struct {
	ComponentName string
	Fn            func(ctx context.Context) error
}

// Name implements Checker.
func (c CheckerFunc) Name() string { return c.ComponentName }

// Check implements Checker.
func (c CheckerFunc) Check(ctx context.Context) error { return c.Fn(ctx) }
