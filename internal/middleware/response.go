package middleware

import (
	"encoding/json"
	"net/http"
)

// WriteJSONError writes {"detail": msg} with status.
func WriteJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"detail": msg})
}

// WriteUnauthorized writes a 401 challenging for a Bearer token.
func WriteUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	WriteJSONError(w, http.StatusUnauthorized, msg)
}
