// Package response writes the JSON bodies the API hands back.
package response

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// JSON writes data as a JSON response with the given status.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return
	}
	// The status line is already out; an encode failure here cannot be
	// reported to the client anymore.
	_ = json.NewEncoder(w).Encode(data)
}

// Error writes a JSON error body with the given status.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorResponse{Error: message})
}

// Success writes data with a 200 status.
func Success(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}
