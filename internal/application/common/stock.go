package common

import (
	"context"
	"fmt"

	"github.com/andrescamacho/factory-economy/internal/domain/factory"
	"github.com/andrescamacho/factory-economy/internal/domain/ports"
)

// ConsumeAll takes every amount from a factory's input store. When one of them
// fails the amounts already taken are put back, so the store is either fully
// debited or untouched.
func ConsumeAll(ctx context.Context, storage ports.StorageService, factoryID string, amounts []factory.ResourceAmount) error {
	for i, a := range amounts {
		if err := storage.ConsumeInput(ctx, factoryID, a.ResourceID, a.Quantity); err != nil {
			RestoreAll(ctx, storage, factoryID, amounts[:i])
			return fmt.Errorf("failed to consume %s for factory %s: %w", a.ResourceID, factoryID, err)
		}
	}
	return nil
}

// RestoreAll puts amounts back into a factory's input store. Failures are logged.
func RestoreAll(ctx context.Context, storage ports.StorageService, factoryID string, amounts []factory.ResourceAmount) {
	for _, a := range amounts {
		if err := storage.RestoreInput(ctx, factoryID, a.ResourceID, a.Quantity); err != nil {
			LoggerFromContext(ctx).ErrorContext(ctx, "failed to restore consumed input",
				"factory_id", factoryID, "resource", a.ResourceID, "quantity", a.Quantity, "error", err)
		}
	}
}
