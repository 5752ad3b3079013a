package models

// AppError is a structured application error with HTTP status code.
type AppError struct {
	Code    string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string { return e.Message }

func (e *AppError) Unwrap() error { return e.Err }

// Wrap records cause as the underlying error and returns e.
func (e *AppError) Wrap(cause error) *AppError {
	e.Err = cause
	return e
}

// Error codes.
const (
	CodeUnsupported     = "UNSUPPORTED"
	CodeInvalidArgument = "INVALID_ARGUMENT"
)

// Error constructors.
var (
	// ErrUnsupported reports a missing capability or a failed device
	// operation.
	ErrUnsupported = func(msg string) *AppError {
		return &AppError{Code: CodeUnsupported, Message: msg, Status: 501}
	}
	ErrInvalidArgument = func(field, msg string) *AppError {
		return &AppError{Code: CodeInvalidArgument, Message: msg, Field: field, Status: 400}
	}
	ErrBadRequest = func(msg string) *AppError {
		return &AppError{Code: "BAD_REQUEST", Message: msg, Status: 400}
	}
	ErrUnauthorized = &AppError{Code: "UNAUTHORIZED", Message: "authentication required", Status: 401}
	ErrInternal     = func(msg string) *AppError {
		return &AppError{Code: "INTERNAL", Message: msg, Status: 500}
	}
)
