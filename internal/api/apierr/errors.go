package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/colorsort/internal/model"
)

// ErrorResponse is the body of every API error
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Common error codes
const (
	CodeInvalidRequest       = "INVALID_REQUEST"
	CodeSessionNotFound      = "SESSION_NOT_FOUND"
	CodeSessionFinished      = "SESSION_FINISHED"
	CodeInvalidQuestionIndex = "INVALID_QUESTION_INDEX"
	CodeInvalidSessionConfig = "INVALID_SESSION_CONFIG"
	CodeUnknownScoringPolicy = "UNKNOWN_SCORING_POLICY"
	CodeInvalidEntry         = "INVALID_ENTRY"
	CodeUsernameExists       = "USERNAME_EXISTS"
	CodeInvalidCredentials   = "INVALID_CREDENTIALS"
	CodeInternalError        = "INTERNAL_ERROR"
)

// HTTPError combines an HTTP status code with an error code and message
type HTTPError struct {
	Status  int
	Code    string
	Message string
}

// Error implements error interface
func (e *HTTPError) Error() string {
	return e.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := ToHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.Status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.Message, Code: he.Code})
}

// ToHTTPError converts an error to an HTTPError
func ToHTTPError(err error) *HTTPError {
	var he *HTTPError
	if errors.As(err, &he) {
		return he
	}

	switch {
	case errors.Is(err, model.ErrSessionNotFound):
		return &HTTPError{http.StatusNotFound, CodeSessionNotFound, "Game not found"}
	case errors.Is(err, model.ErrSessionFinished):
		return &HTTPError{http.StatusConflict, CodeSessionFinished, "No more questions"}
	case errors.Is(err, model.ErrInvalidQuestionIndex):
		return &HTTPError{http.StatusConflict, CodeInvalidQuestionIndex, "Invalid question index"}
	case errors.Is(err, model.ErrInvalidSessionConfig):
		return &HTTPError{http.StatusBadRequest, CodeInvalidSessionConfig, err.Error()}
	case errors.Is(err, model.ErrUnknownScoringPolicy):
		return &HTTPError{http.StatusBadRequest, CodeUnknownScoringPolicy, err.Error()}
	case errors.Is(err, model.ErrInvalidEntry):
		return &HTTPError{http.StatusBadRequest, CodeInvalidEntry, err.Error()}
	case errors.Is(err, model.ErrDuplicateUsername):
		return &HTTPError{http.StatusConflict, CodeUsernameExists, "Username already exists"}
	case errors.Is(err, model.ErrInvalidCredentials), errors.Is(err, model.ErrAccountNotFound):
		return &HTTPError{http.StatusUnauthorized, CodeInvalidCredentials, "Invalid username or password"}

	default:
		return &HTTPError{http.StatusInternalServerError, CodeInternalError, "Internal server error"}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &HTTPError{http.StatusBadRequest, CodeInvalidRequest, message}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &HTTPError{http.StatusInternalServerError, CodeInternalError, "Internal server error"}
}
