package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gripp-game/gripp-api/internal/services/auth"
	"github.com/gripp-game/gripp-api/internal/services/statements"
	"github.com/gripp-game/gripp-api/internal/storage"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the failure envelope
type ErrorResponse struct {
	Success bool     `json:"success"`
	Error   APIError `json:"error"`
}

// Error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeWeakPassword       = "WEAK_PASSWORD"
	CodeInvalidUsername    = "INVALID_USERNAME"
	CodeMissingEmail       = "MISSING_EMAIL"
	CodeDuplicateUsername  = "DUPLICATE_USERNAME"
	CodeDuplicateEmail     = "DUPLICATE_EMAIL"
	CodeDuplicateIdentity  = "DUPLICATE_IDENTITY"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeNotAuthorized      = "NOT_AUTHORIZED"
	CodeInvalidLevel       = "INVALID_LEVEL"
	CodeNotFound           = "NOT_FOUND"
	CodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	CodeStoreUnavailable   = "STORE_UNAVAILABLE"
	CodeInternalError      = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes the failure envelope for err
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Success: false, Error: he.apiError})
}

// Status returns the HTTP status WriteError would use for err
func Status(err error) int {
	return toHTTPError(err).status
}

// Code returns the error code WriteError would use for err
func Code(err error) string {
	return toHTTPError(err).apiError.Code
}

// toHTTPError converts an error to an httpError.
// Messages for 5xx never include the underlying cause.
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	var authErr *auth.Error
	if errors.As(err, &authErr) {
		return fromAuthError(authErr)
	}

	var stErr *statements.Error
	if errors.As(err, &stErr) {
		return fromStatementError(stErr)
	}

	if errors.Is(err, storage.ErrUnavailable) {
		return storeUnavailable()
	}

	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}

func fromAuthError(e *auth.Error) *httpError {
	switch e.Kind {
	case auth.KindWeakPassword:
		return &httpError{http.StatusBadRequest, APIError{CodeWeakPassword, e.Message}}
	case auth.KindInvalidUsername:
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidUsername, e.Message}}
	case auth.KindMissingEmail:
		return &httpError{http.StatusBadRequest, APIError{CodeMissingEmail, e.Message}}
	case auth.KindDuplicateIdentity:
		switch e.Field {
		case auth.FieldUsername:
			return &httpError{http.StatusBadRequest, APIError{CodeDuplicateUsername, e.Message}}
		case auth.FieldEmail:
			return &httpError{http.StatusBadRequest, APIError{CodeDuplicateEmail, e.Message}}
		}
		return &httpError{http.StatusBadRequest, APIError{CodeDuplicateIdentity, e.Message}}
	case auth.KindInvalidCredentials:
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidCredentials, "Invalid credentials"}}
	case auth.KindNotAuthorized:
		return &httpError{http.StatusUnauthorized, APIError{CodeNotAuthorized, "Not authorized"}}
	case auth.KindStoreUnavailable:
		return storeUnavailable()
	}
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}

func fromStatementError(e *statements.Error) *httpError {
	switch e.Kind {
	case statements.KindInvalidLevel:
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidLevel, e.Message}}
	case statements.KindNotFound:
		return &httpError{http.StatusNotFound, APIError{CodeNotFound, "Statement not found"}}
	case statements.KindStoreUnavailable:
		return storeUnavailable()
	}
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}

func storeUnavailable() *httpError {
	return &httpError{http.StatusInternalServerError, APIError{CodeStoreUnavailable, "Service temporarily unavailable"}}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeNotAuthorized, "Authentication required"}}
}

// NewNotFoundError creates a not found error for unknown routes
func NewNotFoundError() error {
	return &httpError{http.StatusNotFound, APIError{CodeNotFound, "Route not found"}}
}

// NewMethodNotAllowedError creates a method not allowed error
func NewMethodNotAllowedError() error {
	return &httpError{http.StatusMethodNotAllowed, APIError{CodeMethodNotAllowed, "Method not allowed"}}
}

// NewUnavailableError creates a 503 for failed health checks
func NewUnavailableError() error {
	return &httpError{http.StatusServiceUnavailable, APIError{CodeStoreUnavailable, "Service unavailable"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
