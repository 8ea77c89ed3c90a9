package platformerrors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// ErrorType represents the category of error.
type ErrorType string

const (
	ErrorTypeNotFound          ErrorType = "NOT_FOUND"
	ErrorTypeValidation        ErrorType = "VALIDATION"
	ErrorTypeConflict          ErrorType = "CONFLICT"
	ErrorTypeInternal          ErrorType = "INTERNAL"
	ErrorTypeUpstream          ErrorType = "UPSTREAM"
	ErrorTypeMalformedUpstream ErrorType = "MALFORMED_UPSTREAM"
	ErrorTypeDatabaseError     ErrorType = "DATABASE_ERROR"
	ErrorTypeTimeout           ErrorType = "TIMEOUT"
)

// Layer represents the application layer where the error occurred.
type Layer string

const (
	LayerRepository     Layer = "repository"
	LayerDomain         Layer = "domain"
	LayerHandler        Layer = "handler"
	LayerInfrastructure Layer = "infrastructure"
)

// PlatformError carries the layer, category and request context of a failure.
type PlatformError struct {
	UUID      string
	Type      ErrorType
	Message   string
	Err       error
	RequestID string
	Layer     Layer
	Timestamp time.Time
}

func (e *PlatformError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s][%s][%s] %s: %v", e.Layer, e.Type, e.UUID, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s][%s][%s] %s", e.Layer, e.Type, e.UUID, e.Message)
}

func (e *PlatformError) Unwrap() error {
	return e.Err
}

// GetErrorType returns the error type.
func (e *PlatformError) GetErrorType() ErrorType {
	return e.Type
}

// GetUUID returns the error UUID.
func (e *PlatformError) GetUUID() string {
	return e.UUID
}

// NewError creates a new PlatformError. The UUID identifies the construction
// site so log lines can be traced back to one call path.
func NewError(ctx context.Context, layer Layer, errorType ErrorType, message string, err error, uuid string) *PlatformError {
	return &PlatformError{
		UUID:      uuid,
		Type:      errorType,
		Message:   message,
		Err:       err,
		RequestID: requestIDFromContext(ctx),
		Layer:     layer,
		Timestamp: time.Now().UTC(),
	}
}

// GetPlatformError unwraps err to a *PlatformError, or nil.
func GetPlatformError(err error) *PlatformError {
	var platformErr *PlatformError
	if errors.As(err, &platformErr) {
		return platformErr
	}
	return nil
}

// IsType reports whether err is a PlatformError of the given type.
func IsType(err error, t ErrorType) bool {
	pe := GetPlatformError(err)
	return pe != nil && pe.Type == t
}

// ErrorTypeToHTTPStatus maps an error category to an HTTP status code.
func ErrorTypeToHTTPStatus(t ErrorType) int {
	switch t {
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeValidation:
		return http.StatusBadRequest
	case ErrorTypeConflict:
		return http.StatusConflict
	case ErrorTypeTimeout:
		return http.StatusGatewayTimeout
	case ErrorTypeUpstream, ErrorTypeMalformedUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// LogError writes a structured log entry for the error.
func LogError(log zerolog.Logger, err *PlatformError) {
	event := log.Error()
	if err.Type == ErrorTypeNotFound || err.Type == ErrorTypeValidation {
		event = log.Warn()
	}
	event.
		Str("layer", string(err.Layer)).
		Str("type", string(err.Type)).
		Str("code", err.UUID).
		Err(err.Err).
		Msg(err.Message)
}

func requestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if requestID, ok := ctx.Value(requestIDKey{}).(string); ok {
		return requestID
	}
	return ""
}

type requestIDKey struct{}

// WithRequestID stores a request id for error construction further down.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}
