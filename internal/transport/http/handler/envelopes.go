package handler

import (
	"encoding/json"
	"net/http"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// SignupEnvelope wraps complete-signup responses.
type SignupEnvelope struct {
	Message string `json:"message,omitempty"`
	UID     string `json:"uid,omitempty"`
	NGOName string `json:"ngo_name,omitempty"`
	Error   string `json:"error,omitempty"`
}

// LoginEnvelope wraps login responses.
type LoginEnvelope struct {
	Message string `json:"message,omitempty"`
	UID     string `json:"uid,omitempty"`
	NGOName string `json:"ngo_name,omitempty"`
	Email   string `json:"email,omitempty"`
	Token   string `json:"token,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}
