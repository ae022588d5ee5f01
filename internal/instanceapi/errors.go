package instanceapi

import (
	"errors"
	"fmt"
)

const (
	errorKindRequestValueConstant         = "request"
	errorKindTransportValueConstant       = "transport"
	errorKindHTTPStatusValueConstant      = "http_status"
	errorKindDecodeValueConstant          = "decode"
	requestErrorMessageConstant           = "request could not be prepared"
	transportErrorMessageConstant         = "transport failure"
	httpStatusErrorMessageConstant        = "unexpected response status"
	decodeErrorMessageConstant            = "invalid JSON response"
	apiErrorTemplateConstant              = "%s failed: %s"
	apiErrorWithStatusTemplateConstant    = "%s failed with status %d: %s"
	httpStatusFallbackMessageTemplate     = "HTTP error! status: %d"
	unknownFailureMessageConstant         = "unknown failure"
	baseURLResolverMissingMessageConstant = "instance api base url resolver not configured"
	tokenReaderMissingMessageConstant     = "instance api token reader not configured"
)

// ErrorKind classifies failures reported by the client.
type ErrorKind string

// Error kind enumerations.
const (
	ErrorKindRequest    ErrorKind = ErrorKind(errorKindRequestValueConstant)
	ErrorKindTransport  ErrorKind = ErrorKind(errorKindTransportValueConstant)
	ErrorKindHTTPStatus ErrorKind = ErrorKind(errorKindHTTPStatusValueConstant)
	ErrorKindDecode     ErrorKind = ErrorKind(errorKindDecodeValueConstant)
)

var (
	// ErrRequest matches failures that happened before a request was sent.
	ErrRequest = errors.New(requestErrorMessageConstant)
	// ErrTransport matches network level failures.
	ErrTransport = errors.New(transportErrorMessageConstant)
	// ErrHTTPStatus matches responses with a non-success status code.
	ErrHTTPStatus = errors.New(httpStatusErrorMessageConstant)
	// ErrDecode matches responses whose body is not valid JSON.
	ErrDecode = errors.New(decodeErrorMessageConstant)
	// ErrBaseURLResolverNotConfigured indicates the client was built without a base address strategy.
	ErrBaseURLResolverNotConfigured = errors.New(baseURLResolverMissingMessageConstant)
	// ErrTokenReaderNotConfigured indicates the client was built without a credential source.
	ErrTokenReaderNotConfigured = errors.New(tokenReaderMissingMessageConstant)
)

var errorKindSentinels = map[ErrorKind]error{
	ErrorKindRequest:    ErrRequest,
	ErrorKindTransport:  ErrTransport,
	ErrorKindHTTPStatus: ErrHTTPStatus,
	ErrorKindDecode:     ErrDecode,
}

// ErrorDetails carries the human readable failure message.
type ErrorDetails struct {
	Error string `json:"error"`
}

// ErrorResponse mirrors the response portion of the error envelope. Status
// holds the HTTP status of a non-success response and is omitted otherwise.
type ErrorResponse struct {
	Status int          `json:"status,omitempty"`
	Data   ErrorDetails `json:"data"`
}

// APIError is the uniform failure envelope returned by every client operation.
// Its JSON form is {"response":{"data":{"error":"..."}}}; failures carrying an
// HTTP status add it as {"response":{"status":404,"data":{"error":"..."}}}.
type APIError struct {
	Operation OperationName `json:"-"`
	Kind      ErrorKind     `json:"-"`
	RequestID string        `json:"-"`
	Response  ErrorResponse `json:"response"`
	Cause     error         `json:"-"`
}

func newAPIError(operation OperationName, kind ErrorKind, statusCode int, message string, cause error) *APIError {
	if len(message) == 0 && cause != nil {
		message = cause.Error()
	}
	if len(message) == 0 {
		message = unknownFailureMessageConstant
	}
	return &APIError{
		Operation: operation,
		Kind:      kind,
		Response: ErrorResponse{
			Status: statusCode,
			Data:   ErrorDetails{Error: message},
		},
		Cause: cause,
	}
}

// Error describes the failure.
func (apiError *APIError) Error() string {
	if apiError.Response.Status > 0 {
		return fmt.Sprintf(apiErrorWithStatusTemplateConstant, apiError.Operation, apiError.Response.Status, apiError.Response.Data.Error)
	}
	return fmt.Sprintf(apiErrorTemplateConstant, apiError.Operation, apiError.Response.Data.Error)
}

// Unwrap exposes the underlying cause.
func (apiError *APIError) Unwrap() error {
	return apiError.Cause
}

// Is reports whether target is the sentinel for this error's kind.
func (apiError *APIError) Is(target error) bool {
	return errorKindSentinels[apiError.Kind] == target
}

// Message returns the human readable failure message.
func (apiError *APIError) Message() string {
	return apiError.Response.Data.Error
}

// StatusCode returns the HTTP status of the failed response, or zero when none was received.
func (apiError *APIError) StatusCode() int {
	return apiError.Response.Status
}

func statusFallbackMessage(statusCode int) string {
	return fmt.Sprintf(httpStatusFallbackMessageTemplate, statusCode)
}
