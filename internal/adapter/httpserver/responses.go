// Package httpserver contains HTTP handlers and middleware.
//
// It exposes the REST endpoints for keyword analysis, script and social
// post generation and image analysis, keeping HTTP concerns separate from
// the orchestration logic in usecase.
package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fairyhunter13/thumbnail-analyzer/internal/domain"
)

type errorEnvelope struct {
	Error apiError `json:"error"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, err error, details any) {
	code := http.StatusInternalServerError
	codeStr := "INTERNAL"
	var upstream *domain.UpstreamError
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		code = http.StatusBadRequest
		codeStr = "INVALID_ARGUMENT"
	case errors.Is(err, domain.ErrProviderConfig):
		codeStr = "PROVIDER_CONFIG"
	case errors.As(err, &upstream):
		code = http.StatusBadGateway
		codeStr = "UPSTREAM"
		if details == nil {
			details = map[string]any{"provider": upstream.Provider, "status": upstream.Status}
		}
	case errors.Is(err, domain.ErrUpstream):
		code = http.StatusBadGateway
		codeStr = "UPSTREAM"
	case errors.Is(err, domain.ErrNoContent):
		code = http.StatusBadGateway
		codeStr = "NO_CONTENT"
	}
	if code >= 500 {
		LoggerFrom(r).Error("request failed", "code", codeStr, "error", err)
	}
	writeJSON(w, code, errorEnvelope{Error: apiError{Code: codeStr, Message: err.Error(), Details: details}})
}
