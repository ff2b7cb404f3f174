package forms

import "errors"

type ErrorCode string

const (
	ErrorInvalid    ErrorCode = "invalid"
	ErrorNotFound   ErrorCode = "not_found"
	ErrorConflict   ErrorCode = "conflict"
	ErrorLocked     ErrorCode = "locked"
	ErrorBadGateway ErrorCode = "bad_gateway"
)

type ServiceError struct {
	Code    ErrorCode
	Message string
}

func (e *ServiceError) Error() string { return e.Message }

func NewInvalidError(msg string) error  { return &ServiceError{Code: ErrorInvalid, Message: msg} }
func NewNotFoundError(msg string) error { return &ServiceError{Code: ErrorNotFound, Message: msg} }
func NewConflictError(msg string) error { return &ServiceError{Code: ErrorConflict, Message: msg} }
func NewLockedError(msg string) error   { return &ServiceError{Code: ErrorLocked, Message: msg} }

func NewBadGatewayError(msg string) error { return &ServiceError{Code: ErrorBadGateway, Message: msg} }

func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// ErrSubmitInFlight rejects navigation and duplicate submits while a network
// submission is outstanding.
var ErrSubmitInFlight = errors.New("submission already in progress")
