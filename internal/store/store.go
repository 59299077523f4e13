package store

import (
	"context"
	"errors"

	"github.com/voyagen/tvgate/internal/models"
)

var (
	// ErrNotFound is returned when a lookup matches no record.
	ErrNotFound = errors.New("store: not found")
	// ErrDuplicate is returned when an insert violates a unique constraint.
	ErrDuplicate = errors.New("store: duplicate key")
)

// UserStore persists user accounts. username, email and playlist_token are unique.
type UserStore interface {
	// CreateUser inserts a user; ErrDuplicate on a uniqueness violation.
	CreateUser(ctx context.Context, u *models.User) error
	// FindUserByUsernameOrEmail returns any user whose username or email matches.
	FindUserByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error)
	// GetUserByUsername returns the user with exactly this username, including the password hash.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	// GetUserByToken returns the user holding this playlist token.
	GetUserByToken(ctx context.Context, token string) (*models.User, error)
	// ListUsers returns a window of users, newest first, without password hashes.
	ListUsers(ctx context.Context, skip, limit int) ([]models.User, error)
	// CountUsers returns the total number of users.
	CountUsers(ctx context.Context) (int, error)
	// SetAdmin grants or revokes the admin flag.
	SetAdmin(ctx context.Context, username string, admin bool) error
}

// ChannelStore persists the channel catalog.
type ChannelStore interface {
	// ListChannels returns every channel ordered by category (absent first), then name.
	ListChannels(ctx context.Context) ([]models.Channel, error)
	// InsertChannels inserts all channels atomically and returns how many were written.
	InsertChannels(ctx context.Context, channels []models.Channel) (int, error)
	// DeleteAllChannels removes the whole catalog.
	DeleteAllChannels(ctx context.Context) (int64, error)
}

// Store is the full persistence surface used by the services.
type Store interface {
	UserStore
	ChannelStore
}
