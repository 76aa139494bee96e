// Package errors provides structured errors for the loadout subsystem.
//
// Every rejection in the inventory, slot and ability layers is an *Error
// carrying a Code, so callers can branch on the failure class without string
// matching:
//
//   - InvalidArgument: bad input such as a non-positive count or level
//   - ResourceExhausted: the inventory has no room left for a new stack
//   - NotFound: unknown item id, slot key or save record
//   - FailedPrecondition: a save record written by a newer schema
//   - Unavailable / Internal: storage failures, safe to retry
//
// # Basic Usage
//
//	err := errors.InvalidArgumentf("count must be positive, got %d", count)
//	err := errors.NotFound("item not found").WithMeta("item_id", id)
//
// Wrapping keeps the original code:
//
//	if err := repo.Save(ctx, input); err != nil {
//	    return errors.Wrap(err, "failed to flush save record")
//	}
//
// # Validation Errors
//
//	vb := errors.NewValidationBuilder()
//	if cfg.Catalog == nil {
//	    vb.RequiredField("Catalog")
//	}
//	return vb.Build()
package errors
