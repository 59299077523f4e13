package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/voyagen/tvgate/internal/models"
	"github.com/voyagen/tvgate/internal/playlist"
	"github.com/voyagen/tvgate/internal/store"
)

// clientMarker must appear, case-folded, in the requester's User-Agent.
const clientMarker = "ott navigator"

// PlaylistService gates playlist downloads and renders the catalog.
type PlaylistService struct {
	users    store.UserStore
	channels store.ChannelStore
	log      *zap.Logger
}

// NewPlaylistService builds a PlaylistService.
func NewPlaylistService(users store.UserStore, channels store.ChannelStore, log *zap.Logger) *PlaylistService {
	return &PlaylistService{users: users, channels: channels, log: log.Named("playlist")}
}

// IsAllowedClient reports whether userAgent names OTT Navigator. This is a
// usability gate on a client-controlled header, not an access control; the
// token lookup is.
func IsAllowedClient(userAgent string) bool {
	return strings.Contains(strings.ToLower(userAgent), clientMarker)
}

// Authorize checks, in order, token presence, the client marker and the
// token itself, stopping at the first failure.
func (s *PlaylistService) Authorize(ctx context.Context, token, userAgent string) (*models.User, error) {
	if token == "" {
		return nil, ErrTokenMissing
	}
	if !IsAllowedClient(userAgent) {
		return nil, ErrWrongClient
	}
	u, err := s.users.GetUserByToken(ctx, token)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, storageErr("get user by token", err)
	}
	return u, nil
}

// Playlist authorizes the request and renders the full catalog in memory.
// Nothing is returned unless rendering completed.
func (s *PlaylistService) Playlist(ctx context.Context, token, userAgent string) ([]byte, error) {
	u, err := s.Authorize(ctx, token, userAgent)
	if err != nil {
		return nil, err
	}
	channels, err := s.channels.ListChannels(ctx)
	if err != nil {
		return nil, storageErr("list channels", err)
	}
	if len(channels) == 0 {
		return nil, ErrNoChannels
	}
	body := playlist.Render(channels)
	s.log.Debug("playlist rendered",
		zap.String("user_id", u.ID),
		zap.Int("channels", len(channels)),
		zap.Int("bytes", len(body)),
	)
	return body, nil
}
