package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/voyagen/tvgate/internal/service"
)

const internalErrorMessage = "An internal server error occurred."

// APIError is the standard error envelope for JSON error responses.
type APIError struct {
	Status int    `json:"status"`
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// errorStatus maps service outcomes to HTTP status codes.
var errorStatus = []struct {
	err    error
	status int
}{
	{service.ErrConflict, http.StatusConflict},
	{service.ErrUserNotFound, http.StatusNotFound},
	{service.ErrNoChannels, http.StatusNotFound},
	{service.ErrInvalidCredentials, http.StatusUnauthorized},
	{service.ErrUnauthorized, http.StatusUnauthorized},
	{service.ErrTokenMissing, http.StatusForbidden},
	{service.ErrWrongClient, http.StatusForbidden},
	{service.ErrInvalidToken, http.StatusForbidden},
	{service.ErrNotAdmin, http.StatusForbidden},
}

// statusFor maps an error to an HTTP status and a client-safe message.
// Anything unrecognised is a 500 with a generic message.
func statusFor(err error) (int, string) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, verr.Message
	}
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			return e.status, e.err.Error()
		}
	}
	return http.StatusInternalServerError, internalErrorMessage
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)
	s.logFailure(r, status, err)
	writeJSON(w, status, APIError{
		Status: status,
		Error:  http.StatusText(status),
		Detail: msg,
	})
}

// writeTextErr is used by the playlist endpoint, whose clients are media
// players rather than JSON consumers.
func (s *Server) writeTextErr(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)
	s.logFailure(r, status, err)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	if status == http.StatusInternalServerError {
		_, _ = w.Write([]byte(msg))
		return
	}
	_, _ = w.Write([]byte("Error: " + msg))
}

func (s *Server) logFailure(r *http.Request, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err),
		)
	}
}
