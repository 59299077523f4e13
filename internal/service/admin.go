package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/voyagen/tvgate/internal/models"
	"github.com/voyagen/tvgate/internal/store"
)

const (
	// DefaultPage and DefaultPageSize apply when the query omits them or
	// they are not numbers.
	DefaultPage     = 1
	DefaultPageSize = 15
)

// UserSummary is the admin view of an account. It carries neither the
// password hash nor the playlist token.
type UserSummary struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

func summarize(u *models.User) UserSummary {
	return UserSummary{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt,
	}
}

// UserPage is one window of the admin user listing.
type UserPage struct {
	Users       []UserSummary `json:"users"`
	TotalPages  int           `json:"totalPages"`
	CurrentPage int           `json:"currentPage"`
	TotalUsers  int           `json:"totalUsers"`
}

// AdminService serves admin-only user management.
type AdminService struct {
	users       store.UserStore
	maxPageSize int
	log         *zap.Logger
}

// NewAdminService builds an AdminService. Page sizes above maxPageSize are clamped.
func NewAdminService(users store.UserStore, maxPageSize int, log *zap.Logger) *AdminService {
	if maxPageSize <= 0 {
		maxPageSize = 100
	}
	return &AdminService{users: users, maxPageSize: maxPageSize, log: log.Named("admin")}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" value.
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// ParsePage reads page and limit query values, substituting defaults for
// missing, non-numeric or non-positive input.
func ParsePage(pageParam, limitParam string) (page, limit int) {
	page, limit = DefaultPage, DefaultPageSize
	if n, err := strconv.Atoi(pageParam); err == nil && n > 0 {
		page = n
	}
	if n, err := strconv.Atoi(limitParam); err == nil && n > 0 {
		limit = n
	}
	return page, limit
}

// TotalPages is ceil(total / pageSize).
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// Authorize resolves token to an admin user.
func (s *AdminService) Authorize(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	u, err := s.users.GetUserByToken(ctx, token)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, storageErr("get user by token", err)
	}
	if !u.IsAdmin {
		return nil, ErrNotAdmin
	}
	return u, nil
}

// ListUsers returns a page of users, newest first, without password hashes.
// A page past the end is empty, not an error.
func (s *AdminService) ListUsers(ctx context.Context, token string, page, limit int) (*UserPage, error) {
	admin, err := s.Authorize(ctx, token)
	if err != nil {
		return nil, err
	}
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > s.maxPageSize {
		limit = s.maxPageSize
	}

	total, err := s.users.CountUsers(ctx)
	if err != nil {
		return nil, storageErr("count users", err)
	}
	totalPages := TotalPages(total, limit)

	summaries := []UserSummary{}
	// page-1 < totalPages keeps (page-1)*limit below total, so it cannot overflow.
	if page-1 < totalPages {
		users, err := s.users.ListUsers(ctx, (page-1)*limit, limit)
		if err != nil {
			return nil, storageErr("list users", err)
		}
		for i := range users {
			summaries = append(summaries, summarize(&users[i]))
		}
	}

	s.log.Debug("users listed", zap.String("admin_id", admin.ID), zap.Int("page", page), zap.Int("limit", limit))
	return &UserPage{
		Users:       summaries,
		TotalPages:  totalPages,
		CurrentPage: page,
		TotalUsers:  total,
	}, nil
}

// SetAdmin grants or revokes admin rights. It has no HTTP route and is
// reached only through the tvgatectl tool.
func (s *AdminService) SetAdmin(ctx context.Context, username string, admin bool) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return invalid("username", "username is required")
	}
	err := s.users.SetAdmin(ctx, username, admin)
	if errors.Is(err, store.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return storageErr("set admin", err)
	}
	s.log.Info("admin flag changed", zap.String("username", username), zap.Bool("is_admin", admin))
	return nil
}
