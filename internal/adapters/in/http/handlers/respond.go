// internal/adapters/in/http/handlers/respond.go
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// msgInternal replaces the cause of any unmapped error in responses.
const msgInternal = "internal server error"

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// writeInternalError logs err and answers 500 without exposing it.
func writeInternalError(w http.ResponseWriter, log *zap.Logger, err error) {
	if log != nil {
		log.Error("request failed", zap.Error(err))
	}
	writeError(w, http.StatusInternalServerError, msgInternal)
}

func parseIntDefault(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
