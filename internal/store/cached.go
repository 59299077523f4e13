package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/voyagen/tvgate/internal/cache"
	"github.com/voyagen/tvgate/internal/models"
)

// Cache TTLs for different entity types.
const (
	ttlUserByToken = 5 * time.Minute
	ttlChannels    = 1 * time.Minute
)

var (
	keyChannels      = cache.Key("channels", "sorted")
	patternUserToken = cache.Key("user", "token", "*")
)

// CachedStore wraps a Store with a Redis read-through cache for token
// lookups and the sorted channel list. Only hits are cached: an unknown
// token always reaches the inner store. Writes invalidate affected keys.
// Cache failures are logged and never fail the request.
type CachedStore struct {
	inner Store
	cache *cache.Redis
	log   *zap.Logger
}

var _ Store = (*CachedStore)(nil)

// NewCachedStore creates a CachedStore that wraps inner with Redis caching.
func NewCachedStore(inner Store, c *cache.Redis, log *zap.Logger) *CachedStore {
	return &CachedStore{inner: inner, cache: c, log: log.Named("cache")}
}

// tokenKey never embeds the raw token.
func tokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return cache.Key("user", "token", hex.EncodeToString(sum[:16]))
}

// --- cached reads ---

func (c *CachedStore) GetUserByToken(ctx context.Context, token string) (*models.User, error) {
	key := tokenKey(token)
	if u, err := cache.Get[models.User](ctx, c.cache, key); err == nil {
		return &u, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		c.log.Warn("get failed", zap.String("key", key), zap.Error(err))
	}
	u, err := c.inner.GetUserByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	// PasswordHash is tagged json:"-" so it is not written to Redis.
	if err := cache.Set(ctx, c.cache, key, u, ttlUserByToken); err != nil {
		c.log.Warn("set failed", zap.String("key", key), zap.Error(err))
	}
	return u, nil
}

func (c *CachedStore) ListChannels(ctx context.Context) ([]models.Channel, error) {
	if v, err := cache.Get[[]models.Channel](ctx, c.cache, keyChannels); err == nil {
		return v, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		c.log.Warn("get failed", zap.String("key", keyChannels), zap.Error(err))
	}
	channels, err := c.inner.ListChannels(ctx)
	if err != nil {
		return nil, err
	}
	if err := cache.Set(ctx, c.cache, keyChannels, channels, ttlChannels); err != nil {
		c.log.Warn("set failed", zap.String("key", keyChannels), zap.Error(err))
	}
	return channels, nil
}

// --- writes with invalidation ---

func (c *CachedStore) SetAdmin(ctx context.Context, username string, admin bool) error {
	if err := c.inner.SetAdmin(ctx, username, admin); err != nil {
		return err
	}
	c.invalidatePattern(ctx, patternUserToken)
	return nil
}

func (c *CachedStore) InsertChannels(ctx context.Context, channels []models.Channel) (int, error) {
	n, err := c.inner.InsertChannels(ctx, channels)
	if err != nil {
		return n, err
	}
	c.invalidate(ctx, keyChannels)
	return n, nil
}

func (c *CachedStore) DeleteAllChannels(ctx context.Context) (int64, error) {
	n, err := c.inner.DeleteAllChannels(ctx)
	if err != nil {
		return n, err
	}
	c.invalidate(ctx, keyChannels)
	return n, nil
}

// --- passthrough ---

func (c *CachedStore) CreateUser(ctx context.Context, u *models.User) error {
	return c.inner.CreateUser(ctx, u)
}

func (c *CachedStore) FindUserByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error) {
	return c.inner.FindUserByUsernameOrEmail(ctx, username, email)
}

func (c *CachedStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return c.inner.GetUserByUsername(ctx, username)
}

func (c *CachedStore) ListUsers(ctx context.Context, skip, limit int) ([]models.User, error) {
	return c.inner.ListUsers(ctx, skip, limit)
}

func (c *CachedStore) CountUsers(ctx context.Context) (int, error) {
	return c.inner.CountUsers(ctx)
}

// --- helpers ---

func (c *CachedStore) invalidate(ctx context.Context, keys ...string) {
	if err := cache.Del(ctx, c.cache, keys...); err != nil {
		c.log.Warn("del failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

func (c *CachedStore) invalidatePattern(ctx context.Context, patterns ...string) {
	for _, p := range patterns {
		if err := cache.DelPattern(ctx, c.cache, p); err != nil {
			c.log.Warn("del pattern failed", zap.String("pattern", p), zap.Error(err))
		}
	}
}
