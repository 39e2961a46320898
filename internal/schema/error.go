package schema

type ErrorCode string

const (
	BackendRejected   ErrorCode = "backend_rejected"
	TimeoutError      ErrorCode = "timeout"
	ConnectionError   ErrorCode = "connection_error"
	MalformedResponse ErrorCode = "malformed_response"
)

// CheckoutError describes why a reservation did not reach a confirmation.
// Message is what the visitor sees.
type CheckoutError struct {
	Code       ErrorCode
	Message    string
	StatusCode int
}

func (e *CheckoutError) Error() string {
	return e.Message
}

func NewBackendError(statusCode int, msg string) *CheckoutError {
	return &CheckoutError{
		Code:       BackendRejected,
		Message:    msg,
		StatusCode: statusCode,
	}
}

func NewTimeoutError(msg string) *CheckoutError {
	return &CheckoutError{
		Code:    TimeoutError,
		Message: msg,
	}
}

func NewConnectionError(msg string) *CheckoutError {
	return &CheckoutError{
		Code:    ConnectionError,
		Message: msg,
	}
}

func NewMalformedResponseError(statusCode int, msg string) *CheckoutError {
	return &CheckoutError{
		Code:       MalformedResponse,
		Message:    msg,
		StatusCode: statusCode,
	}
}

// ErrorResponse is the body of every error this service answers with.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
