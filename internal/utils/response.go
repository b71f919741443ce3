package utils

import (
	"encoding/json"
	"net/http"
)

// Payload is the envelope every JSON endpoint answers with.
type Payload struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Respond writes a success envelope with the given status and data.
func Respond(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, Payload{Success: true, Message: message, Data: data})
}

// RespondError writes a failure envelope carrying only a message.
func RespondError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Payload{Success: false, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, p Payload) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(p)
}
