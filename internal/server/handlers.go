package server

import (
	"encoding/json"
	"net/http"

	"github.com/voyagen/tvgate/internal/playlist"
	"github.com/voyagen/tvgate/internal/service"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

const invalidBodyMessage = "invalid JSON body"

// --- auth handlers ---

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	service.Session
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeErr(w, r, err)
		return
	}
	if err := s.auth.Register(r.Context(), req); err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Registration successful! You can now log in.",
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeErr(w, r, err)
		return
	}
	sess, err := s.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{
		Success: true,
		Message: "Login successful!",
		Session: *sess,
	})
}

// --- playlist handler ---

func (s *Server) handlePlaylist(w http.ResponseWriter, r *http.Request) {
	body, err := s.playlist.Playlist(r.Context(), r.URL.Query().Get("token"), r.UserAgent())
	if err != nil {
		s.writeTextErr(w, r, err)
		return
	}
	w.Header().Set("Content-Type", playlist.ContentType)
	w.Header().Set("Content-Disposition", playlist.ContentDisposition)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// --- admin handlers ---

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, limit := service.ParsePage(q.Get("page"), q.Get("limit"))
	token := service.BearerToken(r.Header.Get("Authorization"))

	result, err := s.admin.ListUsers(r.Context(), token, page, limit)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// decodeJSON reads a bounded JSON body into dst. Decode failures are
// reported as validation errors with a fixed message.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &service.ValidationError{Message: invalidBodyMessage}
	}
	return nil
}
