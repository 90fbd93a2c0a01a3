package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	goRecover "github.com/MrEthical07/goRecover"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// statusFor maps engine errors to an HTTP status and a stable error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, goRecover.ErrInvalidArgument):
		return http.StatusBadRequest, "invalid_argument"
	case errors.Is(err, goRecover.ErrIdentityNotFound):
		return http.StatusNotFound, "identity_not_found"
	case errors.Is(err, goRecover.ErrNoChallengeConfigured):
		return http.StatusUnprocessableEntity, "no_challenge_configured"
	case errors.Is(err, goRecover.ErrAnswerMismatch):
		return http.StatusUnauthorized, "answer_mismatch"
	case errors.Is(err, goRecover.ErrTokenMissingOrExpired):
		return http.StatusUnauthorized, "token_missing_or_expired"
	case errors.Is(err, goRecover.ErrTokenMismatch):
		return http.StatusUnauthorized, "token_mismatch"
	case errors.Is(err, goRecover.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid_credentials"
	case errors.Is(err, goRecover.ErrIdentifierTaken):
		return http.StatusConflict, "identifier_taken"
	case errors.Is(err, goRecover.ErrChallengeRateLimited):
		return http.StatusTooManyRequests, "rate_limited"
	case errors.Is(err, goRecover.ErrCredentialUpdateFailed):
		return http.StatusServiceUnavailable, "credential_update_failed"
	case errors.Is(err, goRecover.ErrFeatureUnavailable):
		return http.StatusNotImplemented, "not_supported"
	case errors.Is(err, goRecover.ErrChallengeUnavailable),
		errors.Is(err, goRecover.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// publicMessage hides wrapped backend details behind the sentinel text.
func publicMessage(status int, err error) string {
	for _, sentinel := range []error{
		goRecover.ErrInvalidArgument,
		goRecover.ErrIdentityNotFound,
		goRecover.ErrNoChallengeConfigured,
		goRecover.ErrAnswerMismatch,
		goRecover.ErrTokenMissingOrExpired,
		goRecover.ErrTokenMismatch,
		goRecover.ErrInvalidCredentials,
		goRecover.ErrIdentifierTaken,
		goRecover.ErrChallengeRateLimited,
		goRecover.ErrCredentialUpdateFailed,
		goRecover.ErrFeatureUnavailable,
		goRecover.ErrChallengeUnavailable,
		goRecover.ErrStoreUnavailable,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return http.StatusText(status)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: code, Message: message})
}
