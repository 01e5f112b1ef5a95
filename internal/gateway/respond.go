package gateway

import (
	"encoding/json"
	"net/http"
)

// Error categories surfaced to clients. Every error response is
// {"error": <category>, "details": <human-readable detail>}.
const (
	categoryInvalidRequest    = "Invalid request"
	categoryUnauthorized      = "Unauthorized"
	categoryForbidden         = "Forbidden"
	categoryInsufficientFunds = "Insufficient funds"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, code int, data any) {
	writeJSON(w, code, map[string]any{"data": data})
}

func writeError(w http.ResponseWriter, code int, category, details string) {
	writeJSON(w, code, map[string]string{"error": category, "details": details})
}
