package server

import (
	"encoding/json"
	"net/http"
)

// Machine-readable error codes.
const (
	codeBadRequest        = "BAD_REQUEST"
	codeUnauthorized      = "UNAUTHORIZED"
	codeInvalidToken      = "INVALID_TOKEN"
	codeOwnerNotFound     = "OWNER_NOT_FOUND"
	codeGameNotFound      = "GAME_NOT_FOUND"
	codeContainerNotFound = "CONTAINER_NOT_FOUND"
	codeNoAPIKey          = "NO_API_KEY"
	codeBuildFailed       = "BUILD_FAILED"
	codeInternal          = "INTERNAL"
)

// apiError is the body of every error response.
type apiError struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apiError{Error: msg, Code: code})
}

func writeInternalError(w http.ResponseWriter) {
	writeError(w, http.StatusInternalServerError, "internal server error", codeInternal)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
