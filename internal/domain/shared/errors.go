package shared

// DomainError is an error with a stable machine-readable code. The
// HTTP layer maps codes to status codes; messages are safe to return
// to API clients.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a domain error with an arbitrary code.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// NewValidationError creates a domain error for malformed input.
// Validation errors are always raised before any write happens.
func NewValidationError(message string) *DomainError {
	return &DomainError{Code: "VALIDATION", Message: message}
}

// NewConflictError creates a domain error for guard violations
// such as cancelling an order in a non-cancellable status.
func NewConflictError(message string) *DomainError {
	return &DomainError{Code: "CONFLICT", Message: message}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrInsufficientStock   = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available")
)
