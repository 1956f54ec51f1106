package middleware

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the JSON body of every error the API returns.
type ErrorResponse struct {
	Message      string `json:"message"`
	RequiresAuth bool   `json:"requiresAuth,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, ErrorResponse{Message: msg})
}
