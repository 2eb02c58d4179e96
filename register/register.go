// Package register defines the contract objects satisfy to be persisted
// into an external catalog, and a helper for registering batches of them.
package register

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	slogcontext "github.com/veqryn/slog-context"
)

// Registerable is an object that can reconcile its identity against an
// external catalog and persist itself into it.
type Registerable interface {
	// Name labels the kind of object for reporting.
	Name() string

	// Resolve reconciles the object with the catalog, adopting an existing
	// identity when the catalog already knows the object.
	Resolve(ctx context.Context) error

	// Register persists the object into the catalog.
	Register(ctx context.Context) error
}

// All resolves and then registers every item. Items keep their order;
// a failing item does not stop the ones after it. The returned error joins
// every per-item failure.
func All(ctx context.Context, items ...Registerable) error {
	logger := slogcontext.FromCtx(ctx)

	var errs []error
	for _, item := range items {
		if err := item.Resolve(ctx); err != nil {
			errs = append(errs, fmt.Errorf("resolving %s: %w", item.Name(), err))
			continue
		}
		if err := item.Register(ctx); err != nil {
			errs = append(errs, fmt.Errorf("registering %s: %w", item.Name(), err))
			continue
		}
		logger.Debug("registered", slog.String("name", item.Name()))
	}
	return errors.Join(errs...)
}
