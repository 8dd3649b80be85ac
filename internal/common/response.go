package common

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
)

// ErrorBody is the error object of every failed response.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// JSONError writes {"error": {...}}.
func JSONError(w http.ResponseWriter, status int, code, message string, details any) {
	JSON(w, status, map[string]any{
		"error": ErrorBody{Code: code, Message: message, Details: details},
	})
}

// JSONValidation writes a 400 carrying every field error next to the
// usual error object, so clients can fix all lines of a document at once.
func JSONValidation(w http.ResponseWriter, fieldErrors any) {
	JSON(w, http.StatusBadRequest, map[string]any{
		"error":  ErrorBody{Code: CodeValidation, Message: "validation failed"},
		"errors": fieldErrors,
	})
}

// JSONPage writes a list page and mirrors the total in X-Total-Count.
func JSONPage(w http.ResponseWriter, items any, p Pagination) {
	w.Header().Set("X-Total-Count", strconv.Itoa(p.TotalItems))
	JSON(w, http.StatusOK, map[string]any{"data": items, "pagination": p})
}

// DecodeJSON decodes the request body into dst. On failure it writes 413
// for bodies cut by http.MaxBytesReader and 400 otherwise, then returns false.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		JSONError(w, http.StatusRequestEntityTooLarge, CodePayloadTooLarge, "request body too large", nil)
		return false
	}
	JSONError(w, http.StatusBadRequest, CodeBadRequest, "invalid JSON body", nil)
	return false
}
