package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/voyagen/tvgate/internal/models"
	"github.com/voyagen/tvgate/internal/store"
)

const (
	// MinPasswordLength is the shortest accepted password, in characters.
	MinPasswordLength = 8
	// MaxPasswordBytes is bcrypt's input limit.
	MaxPasswordBytes = 72
	// PasswordCost is the bcrypt work factor.
	PasswordCost = 10
	// tokenBytes of randomness give a 64 character hex playlist token.
	tokenBytes = 32
)

// RegisterRequest carries the registration form.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session is everything a client keeps after logging in. The playlist token
// doubles as the admin bearer credential.
type Session struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	PlaylistToken string `json:"playlist_token"`
	IsAdmin       bool   `json:"is_admin"`
}

// AuthService registers and authenticates users.
type AuthService struct {
	users   store.UserStore
	domains map[string]struct{}
	log     *zap.Logger

	cost     int
	now      func() time.Time
	newToken func() (string, error)
}

// NewAuthService builds an AuthService accepting emails from allowedDomains.
func NewAuthService(users store.UserStore, allowedDomains []string, log *zap.Logger) *AuthService {
	domains := make(map[string]struct{}, len(allowedDomains))
	for _, d := range allowedDomains {
		domains[strings.ToLower(strings.TrimSpace(d))] = struct{}{}
	}
	return &AuthService{
		users:    users,
		domains:  domains,
		log:      log.Named("auth"),
		cost:     PasswordCost,
		now:      time.Now,
		newToken: NewPlaylistToken,
	}
}

// Register validates the request, rejects duplicates, and stores a new
// non-admin user with a fresh playlist token. The token is not returned;
// the user logs in to obtain it.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) error {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)
	if err := s.validate(username, email, req.Password); err != nil {
		return err
	}

	existing, err := s.users.FindUserByUsernameOrEmail(ctx, username, email)
	switch {
	case err == nil && existing != nil:
		return ErrConflict
	case err != nil && !errors.Is(err, store.ErrNotFound):
		return storageErr("find existing user", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	token, err := s.newToken()
	if err != nil {
		return err
	}

	u := &models.User{
		ID:            uuid.NewString(),
		Username:      username,
		Email:         email,
		PasswordHash:  string(hash),
		PlaylistToken: token,
		CreatedAt:     s.now().UTC(),
	}
	// A unique violation here means a concurrent registration won the race;
	// it is reported as a storage failure, not re-validated.
	if err := s.users.CreateUser(ctx, u); err != nil {
		return storageErr("create user", err)
	}
	s.log.Info("user registered", zap.String("user_id", u.ID), zap.String("username", u.Username))
	return nil
}

func (s *AuthService) validate(username, email, password string) error {
	if username == "" || email == "" || password == "" {
		return invalid("", "All fields are required.")
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return invalid("password", fmt.Sprintf("Password must be at least %d characters long.", MinPasswordLength))
	}
	if len(password) > MaxPasswordBytes {
		return invalid("password", fmt.Sprintf("Password must be at most %d bytes long.", MaxPasswordBytes))
	}
	_, domain, ok := strings.Cut(email, "@")
	if !ok || domain == "" {
		return invalid("email", "Please enter a valid email address.")
	}
	if _, allowed := s.domains[strings.ToLower(domain)]; !allowed {
		return invalid("email", "Please use an email address from a supported provider.")
	}
	return nil
}

// Login checks the password for username and returns the session payload.
// The username must match exactly.
func (s *AuthService) Login(ctx context.Context, username, password string) (*Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, invalid("", "Please enter username and password.")
	}

	u, err := s.users.GetUserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, storageErr("get user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	s.log.Info("user logged in", zap.String("user_id", u.ID))
	return &Session{
		ID:            u.ID,
		Username:      u.Username,
		PlaylistToken: u.PlaylistToken,
		IsAdmin:       u.IsAdmin,
	}, nil
}

// NewPlaylistToken returns 32 random bytes, hex encoded. Collisions are not
// retried; the unique index rejects them.
func NewPlaylistToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("playlist token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
