package shared

// DomainError represents a business-rule rejection. It is never a crash:
// every DomainError unwinds the enclosing transaction and is surfaced to the
// caller verbatim.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound      = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput  = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrUnauthorized  = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden     = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
)

// Settlement-engine domain errors
var (
	ErrInsufficientStock      = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available")
	ErrBatchRequired          = NewDomainError("BATCH_REQUIRED", "Product is batch tracked and requires a batch")
	ErrCrossBranchViolation   = NewDomainError("CROSS_BRANCH_VIOLATION", "Warehouse belongs to another branch")
	ErrInvalidStateTransition = NewDomainError("INVALID_STATE_TRANSITION", "Operation not allowed in current state")
	ErrMissingControlNumber   = NewDomainError("MISSING_CONTROL_NUMBER", "Purchase invoices require a control number")
	ErrDuplicateReference     = NewDomainError("DUPLICATE_REFERENCE", "Payment reference already registered")
	ErrInvalidSourceState     = NewDomainError("INVALID_SOURCE_STATE", "Source invoice cannot be credited in its current state")
	ErrOverReturn             = NewDomainError("OVER_RETURN", "Returned quantity exceeds invoiced quantity")
)
