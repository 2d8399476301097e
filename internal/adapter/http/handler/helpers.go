package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/textileledger/internal/adapter/http/dto"
	"github.com/iho/textileledger/internal/domain"
)

const internalErrorMessage = "internal server error"

// writeJSON writes a successful JSON response.
func writeJSON(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.Envelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.Envelope{
		Success: false,
		Message: message,
	})
}

// respondError maps err to a status code. Unexpected errors are logged and
// answered with a generic message.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapDomainError(err)
	if status == http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().
			Err(err).
			Str("request_id", chimiddleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")
		writeError(w, status, internalErrorMessage)
		return
	}
	writeError(w, status, err.Error())
}

// decodeBody decodes and validates a JSON request body into dst.
func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed JSON body", dto.ErrInvalidRequest)
	}
	return dto.Validate(dst)
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrItemNotFound),
		errors.Is(err, domain.ErrTransactionNotFound),
		errors.Is(err, domain.ErrStakeholderNotFound),
		errors.Is(err, domain.ErrPackagingStyleNotFound):
		return http.StatusNotFound

	case errors.Is(err, domain.ErrDuplicateName),
		errors.Is(err, domain.ErrItemInUse):
		return http.StatusConflict

	case errors.Is(err, domain.ErrInsufficientBalance),
		errors.Is(err, domain.ErrOriginCycle),
		errors.Is(err, domain.ErrSelfOrigin),
		errors.Is(err, domain.ErrOriginNotFound),
		errors.Is(err, domain.ErrItemInactive),
		errors.Is(err, domain.ErrItemKindMismatch),
		errors.Is(err, domain.ErrBackdatedMovement),
		errors.Is(err, domain.ErrNothingToReset):
		return http.StatusUnprocessableEntity

	case errors.Is(err, dto.ErrInvalidRequest),
		errors.Is(err, domain.ErrInvalidName),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidCount),
		errors.Is(err, domain.ErrCommentTooLong),
		errors.Is(err, domain.ErrReferenceTooLong),
		errors.Is(err, domain.ErrInvalidItemKind),
		errors.Is(err, domain.ErrInvalidStakeholderKind),
		errors.Is(err, domain.ErrInvalidDirection),
		errors.Is(err, domain.ErrEmptyMovement),
		errors.Is(err, domain.ErrResetReasonRequired),
		errors.Is(err, domain.ErrReservedReference),
		errors.Is(err, domain.ErrInvalidCode):
		return http.StatusBadRequest

	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrInvalidToken),
		errors.Is(err, domain.ErrExpiredToken):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrInsufficientRole):
		return http.StatusForbidden

	default:
		return http.StatusInternalServerError
	}
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}

// parsePage reads limit and offset and clamps them the way the use cases do,
// so the response reports the page actually served.
func parsePage(r *http.Request) (limit, offset int) {
	return domain.ValidatePagination(parseIntQuery(r, "limit", 0), parseIntQuery(r, "offset", 0))
}

// parseBoolQuery parses an optional boolean query parameter.
func parseBoolQuery(r *http.Request, key string) (*bool, error) {
	val := r.URL.Query().Get(key)
	if val == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be true or false", dto.ErrInvalidRequest, key)
	}
	return &b, nil
}
