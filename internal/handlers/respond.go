package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

const (
	contentTypeJSON = "application/json; charset=utf-8"
	contentTypeHTML = "text/html; charset=utf-8"
)

// HTTPError is an error with an HTTP status and a message safe to show to
// the client.
type HTTPError struct {
	Code    int
	Message string
	cause   error
}

func (e *HTTPError) Error() string { return e.Message }

func (e *HTTPError) Unwrap() error { return e.cause }

func errBadRequest(message string, cause error) *HTTPError {
	return &HTTPError{Code: http.StatusBadRequest, Message: message, cause: cause}
}

func errNotFound() *HTTPError {
	return &HTTPError{Code: http.StatusNotFound, Message: "not found"}
}

// apiHandler is a JSON handler that reports failures by returning an error.
type apiHandler func(w http.ResponseWriter, r *http.Request) error

// ServeHTTP runs the handler and turns a returned error into a JSON error
// response. HTTPErrors keep their status; anything else is a 500.
func (h apiHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	err := h(w, r)
	if err == nil {
		return
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		level := slog.LevelInfo
		if httpErr.Code >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		slog.Log(r.Context(), level, "api error response",
			"code", httpErr.Code, "msg", httpErr.Message, "path", r.URL.Path, "cause", httpErr.cause)
		respondError(w, httpErr.Code, httpErr.Message)
		return
	}

	slog.ErrorContext(r.Context(), "unhandled api error", "path", r.URL.Path, "error", err)
	respondError(w, http.StatusInternalServerError, "internal server error")
}

// respondJSON writes payload as JSON with the given status.
func respondJSON(w http.ResponseWriter, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal json response", "error", err)
		w.Header().Set("Content-Type", contentTypeJSON)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"internal server error"}`))
		return
	}
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	w.Write(body)
}

// respondError writes {"error": message} with the given status.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
