package errors

// Code represents an error code
type Code string

// Error codes
const (
	CodeOK                 Code = "OK"
	CodeInvalidArgument    Code = "INVALID_ARGUMENT"
	CodeNotFound           Code = "NOT_FOUND"
	CodeAlreadyExists      Code = "ALREADY_EXISTS"
	CodeResourceExhausted  Code = "RESOURCE_EXHAUSTED"
	CodeFailedPrecondition Code = "FAILED_PRECONDITION"
	CodeInternal           Code = "INTERNAL"
	CodeUnavailable        Code = "UNAVAILABLE"
	CodeDataLoss           Code = "DATA_LOSS"
)

// String returns the string representation of the code
func (c Code) String() string {
	return string(c)
}

// Retryable reports whether a caller may reasonably retry an operation that
// failed with this code. Rejections caused by the caller's own input never are.
func (c Code) Retryable() bool {
	switch c {
	case CodeUnavailable, CodeInternal:
		return true
	default:
		return false
	}
}
