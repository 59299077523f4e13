package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/voyagen/tvgate/internal/cache"
	"github.com/voyagen/tvgate/internal/fetcher"
	"github.com/voyagen/tvgate/internal/models"
	"github.com/voyagen/tvgate/internal/store"
)

const importLockTTL = 10 * time.Minute

var (
	// ErrImportRunning is returned when another import holds the catalog lock.
	ErrImportRunning = errors.New("a catalog import is already running")
	// ErrEmptyImport is returned when the source playlist has no usable entries.
	ErrEmptyImport = errors.New("playlist contains no channels")
)

var importLockKey = cache.Key("lock", "catalog-import")

// ImportRequest names exactly one playlist source.
type ImportRequest struct {
	File    string
	URL     string
	Replace bool // wipe the catalog before inserting
}

// CatalogService maintains the channel catalog out of band.
type CatalogService struct {
	channels  store.ChannelStore
	locker    *cache.Redis // nil disables locking
	userAgent string
	timeout   time.Duration
	log       *zap.Logger
}

// NewCatalogService builds a CatalogService. locker may be nil when Redis is
// not configured.
func NewCatalogService(channels store.ChannelStore, locker *cache.Redis, userAgent string, timeout time.Duration, log *zap.Logger) *CatalogService {
	return &CatalogService{
		channels:  channels,
		locker:    locker,
		userAgent: userAgent,
		timeout:   timeout,
		log:       log.Named("catalog"),
	}
}

// Import parses the playlist named by req and inserts its channels. With
// Replace, existing channels are deleted first. It returns the number of
// channels written.
func (s *CatalogService) Import(ctx context.Context, req ImportRequest) (int, error) {
	if (req.File == "") == (req.URL == "") {
		return 0, invalid("source", "exactly one of file or url is required")
	}

	var (
		channels []models.Channel
		err      error
	)
	if req.File != "" {
		channels, err = fetcher.ReadM3U(req.File)
	} else {
		channels, err = fetcher.FetchM3U(ctx, req.URL, s.userAgent, s.timeout)
	}
	if err != nil {
		return 0, fmt.Errorf("read playlist: %w", err)
	}
	if len(channels) == 0 {
		return 0, ErrEmptyImport
	}

	if s.locker != nil {
		unlock, err := cache.TryLock(ctx, s.locker, importLockKey, importLockTTL)
		if errors.Is(err, cache.ErrLocked) {
			return 0, ErrImportRunning
		}
		if err != nil {
			return 0, err
		}
		defer unlock()
	}

	if req.Replace {
		n, err := s.channels.DeleteAllChannels(ctx)
		if err != nil {
			return 0, storageErr("delete channels", err)
		}
		s.log.Info("catalog cleared", zap.Int64("deleted", n))
	}
	n, err := s.channels.InsertChannels(ctx, channels)
	if err != nil {
		return 0, storageErr("insert channels", err)
	}
	s.log.Info("catalog imported", zap.Int("channels", n), zap.Bool("replace", req.Replace))
	return n, nil
}
