// Package httpx holds the JSON response conventions shared by every handler:
// a plain body for success and an {error, details} envelope for failures, with
// one deterministic mapping from failure kind to status code.
package httpx

import (
	"encoding/json"
	"net/http"
)

type ErrorBody struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes the standard envelope. The short category is derived from the
// status code; details carries the human-readable message.
func Error(w http.ResponseWriter, status int, details string) {
	JSON(w, status, ErrorBody{Error: http.StatusText(status), Details: details})
}

// Internal writes a 500 with a fixed message. Raw error text never reaches
// the client; callers log the cause instead.
func Internal(w http.ResponseWriter) {
	Error(w, http.StatusInternalServerError, "internal error")
}
