package handlers

import (
	"encoding/json"
	"net/http"
	"time"
)

// Every endpoint responds with one of these two envelopes so clients can
// branch on success without inspecting the status code.

type successEnvelope struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data"`
	Timestamp string `json:"timestamp"`
}

type errorEnvelope struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	writeEnvelope(w, status, successEnvelope{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// respondJSONError sends an error envelope. Messages are truncated so a
// wrapped driver error cannot leak arbitrarily long internals.
func respondJSONError(w http.ResponseWriter, status int, errorType, message string) {
	if len(message) > 200 {
		message = message[:200] + "..."
	}
	writeEnvelope(w, status, errorEnvelope{
		Error:     errorType,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func writeEnvelope(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
