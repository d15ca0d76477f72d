package errx

import (
	"errors"
	"fmt"
	"net/http"
)

// Caller-visible messages. These are the only strings that ever leave the
// service; backend-specific detail stays in the logs.
const (
	SystemErrorMessage        = "internal server error"
	EmptyMessageMessage       = "message must not be empty"
	MalformedHistoryMessage   = "chat history is malformed"
	HistoryOrderMessage       = "chat history must start with a user turn and strictly alternate roles"
	InvalidArgumentsMessage   = "the assistant produced an invalid tool invocation"
	ToolNotFoundMessage       = "the assistant requested an unknown capability"
	BackendTimeoutMessage     = "a backend request timed out, please try again"
	BackendUnavailableMessage = "a backend service is currently unavailable"
	BudgetExceededMessage     = "the question was too complex to resolve within the tool call budget"
)

// Sentinel errors for the orchestrator taxonomy. Wrapped inside AppError so
// callers can classify with errors.Is while the safe message travels separately.
var (
	ErrEmptyMessage       = errors.New("empty message")
	ErrMalformedHistory   = errors.New("malformed chat history")
	ErrHistoryOrder       = errors.New("chat history order violation")
	ErrInvalidArguments   = errors.New("invalid tool arguments")
	ErrToolNotFound       = errors.New("tool not found")
	ErrBackendTimeout     = errors.New("backend timeout")
	ErrBackendUnavailable = errors.New("backend unavailable")
	ErrBudgetExceeded     = errors.New("reasoning budget exceeded")
	// ErrNotFound marks a domain-level miss (unknown device, no data). It is
	// fed back to the model as a tool result, never surfaced to the caller.
	ErrNotFound = errors.New("not found")
)

// AppError wraps an underlying error with an HTTP status and safe message.
type AppError struct {
	Err     error
	Status  int
	Message string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether the target matches the underlying error or the AppError itself.
func (e *AppError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// As allows casting to AppError or the wrapped error in a chain.
func (e *AppError) As(target any) bool {
	if errors.As(e.Err, target) {
		return true
	}
	if t, ok := target.(**AppError); ok {
		*t = e
		return true
	}
	return false
}

// New creates a new AppError with the provided information.
func New(err error, status int, message string) *AppError {
	return &AppError{
		Err:     err,
		Status:  status,
		Message: message,
	}
}

// EmptyMessage rejects a request whose message is empty after trimming.
func EmptyMessage() *AppError {
	return New(ErrEmptyMessage, http.StatusBadRequest, EmptyMessageMessage)
}

// MalformedHistory rejects a history turn with an unknown role or empty content.
func MalformedHistory(detail string) *AppError {
	return New(fmt.Errorf("%w: %s", ErrMalformedHistory, detail), http.StatusBadRequest, MalformedHistoryMessage)
}

// HistoryOrder rejects a history that does not start with a user turn or does
// not strictly alternate roles.
func HistoryOrder(detail string) *AppError {
	return New(fmt.Errorf("%w: %s", ErrHistoryOrder, detail), http.StatusBadRequest, HistoryOrderMessage)
}

// InvalidArguments marks a tool invocation that violates the tool's schema.
func InvalidArguments(tool string, err error) *AppError {
	return New(fmt.Errorf("%w: tool %s: %v", ErrInvalidArguments, tool, err), http.StatusUnprocessableEntity, InvalidArgumentsMessage)
}

// ToolNotFound marks a request for a capability absent from the registry.
func ToolNotFound(name string) *AppError {
	return New(fmt.Errorf("%w: %s", ErrToolNotFound, name), http.StatusNotFound, ToolNotFoundMessage)
}

// Timeout marks an exceeded per-call or end-to-end deadline.
func Timeout(op string, err error) *AppError {
	return New(fmt.Errorf("%w: %s: %v", ErrBackendTimeout, op, err), http.StatusGatewayTimeout, BackendTimeoutMessage)
}

// Unavailable marks a backend fault that is not the caller's doing.
func Unavailable(op string, err error) *AppError {
	return New(fmt.Errorf("%w: %s: %v", ErrBackendUnavailable, op, err), http.StatusBadGateway, BackendUnavailableMessage)
}

// BudgetExceeded marks a request that hit the tool call iteration bound.
func BudgetExceeded(limit int) *AppError {
	return New(fmt.Errorf("%w: limit %d", ErrBudgetExceeded, limit), http.StatusUnprocessableEntity, BudgetExceededMessage)
}

// NotFound marks a domain-level miss that tool bindings convert into a
// structured result for the model.
func NotFound(detail string) *AppError {
	return New(fmt.Errorf("%w: %s", ErrNotFound, detail), http.StatusNotFound, detail)
}

// Internal wraps an unexpected fault with the generic system message.
func Internal(err error) *AppError {
	return New(err, http.StatusInternalServerError, SystemErrorMessage)
}
