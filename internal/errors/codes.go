package errors

// Code represents an error code
type Code string

// Error codes
const (
	CodeOK Code = "OK"

	// CodeInvalidArgument covers nil inputs, non-positive quantities, and
	// malformed identifiers.
	CodeInvalidArgument Code = "INVALID_ARGUMENT"

	// CodeNotFound covers missing catalog entries and persisted items that
	// are no longer present in the catalog.
	CodeNotFound Code = "NOT_FOUND"

	// CodeInsufficientResource covers removals and crafts attempted with
	// less stock than required.
	CodeInsufficientResource Code = "INSUFFICIENT_RESOURCE"

	// CodeCapacityExceeded covers full stacks, full consumable slot lists,
	// and equipment category mismatches.
	CodeCapacityExceeded Code = "CAPACITY_EXCEEDED"

	// CodeLocked covers crafts attempted against a recipe that has not been
	// unlocked.
	CodeLocked Code = "LOCKED"

	CodeAlreadyExists      Code = "ALREADY_EXISTS"
	CodeFailedPrecondition Code = "FAILED_PRECONDITION"
	CodeDataLoss           Code = "DATA_LOSS"
	CodeInternal           Code = "INTERNAL"
)

// String returns the string representation of the code
func (c Code) String() string {
	return string(c)
}
