package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/voyagen/tvgate/internal/models"
)

// FetchM3U downloads the playlist at url and parses it.
// userAgent is optional.
func FetchM3U(ctx context.Context, url string, userAgent string, timeout time.Duration) ([]models.Channel, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("NewRequest: %w", err)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Do: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return ParseM3U(resp.Body)
}

// ReadM3U parses a playlist file from disk.
func ReadM3U(path string) ([]models.Channel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseM3U(f)
}
