// Package errors provides structured error handling for the engine.
//
// Every engine operation returns a typed *Error carrying a Code from the
// engine's taxonomy, a message, optional metadata, and an optional cause.
// No code in this module treats a failure as fatal: callers branch on the
// code with the Is* helpers and recover.
//
// Creating errors:
//
//	err := errors.NotFound("item not found")
//	err := errors.InsufficientResourcef("need %d %s, have %d", want, itemID, have)
//
// Adding metadata:
//
//	err := errors.CapacityExceeded("stack full").
//	    WithMeta("item_id", itemID).
//	    WithMeta("overflow", overflow)
//
// Wrapping errors:
//
//	if err := repo.Get(ctx, input); err != nil {
//	    return errors.Wrap(err, "failed to load snapshot")
//	}
//
// Checking errors:
//
//	if errors.IsInsufficientResource(err) {
//	    // refuse the craft, ledger untouched
//	}
package errors
