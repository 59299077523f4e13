// Package playlist renders the channel catalog as an extended M3U playlist
// for OTT Navigator and other Kodi-compatible players.
package playlist

import (
	"bytes"

	"github.com/voyagen/tvgate/internal/models"
)

const (
	// Header is the magic first line of an extended M3U file.
	Header = "#EXTM3U"

	// LogoURL is written as tvg-logo for every entry.
	LogoURL = "https://www.visionplus.id/images/logo/visionplus-logo.png"

	// StreamUserAgent and StreamReferer are the outbound HTTP overrides the
	// player must use when fetching each stream.
	StreamUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/114.0.0.0 Safari/537.36"
	StreamReferer   = "https://www.visionplus.id/"

	// Uncategorized is the group-title of channels without a category.
	Uncategorized = "Uncategorized"

	// ContentType and Filename frame the HTTP response.
	ContentType = "application/vnd.apple.mpegurl; charset=utf-8"
	Filename    = "mikachi_tv_playlist.m3u"

	licenseTypeLine  = "#KODIPROP:inputstream.adaptive.license_type=org.w3.clearkey"
	licenseKeyPrefix = "#KODIPROP:inputstream.adaptive.license_key="
)

// ContentDisposition is the attachment header value for the playlist download.
const ContentDisposition = `attachment; filename="` + Filename + `"`

// Render serializes channels in the given order. The output depends only on
// the input sequence, so the same channels always produce the same bytes.
// Callers pass channels already sorted by category then name.
func Render(channels []models.Channel) []byte {
	var b bytes.Buffer
	b.Grow(64 + len(channels)*512)
	b.WriteString(Header)
	b.WriteString("\n\n")
	for i := range channels {
		writeEntry(&b, &channels[i])
	}
	return b.Bytes()
}

func writeEntry(b *bytes.Buffer, ch *models.Channel) {
	group := ch.CategoryName()
	if group == "" {
		group = Uncategorized
	}

	b.WriteString(`#EXTINF:-1 tvg-name="`)
	b.WriteString(ch.Name)
	b.WriteString(`" tvg-logo="`)
	b.WriteString(LogoURL)
	b.WriteString(`" group-title="`)
	b.WriteString(group)
	b.WriteString(`",`)
	b.WriteString(ch.Name)
	b.WriteByte('\n')

	b.WriteString("#EXTVLCOPT:http-user-agent=")
	b.WriteString(StreamUserAgent)
	b.WriteByte('\n')
	b.WriteString("#EXTVLCOPT:http-referrer=")
	b.WriteString(StreamReferer)
	b.WriteByte('\n')

	if keyID, key, ok := clearKey(ch); ok {
		b.WriteString(licenseTypeLine)
		b.WriteByte('\n')
		b.WriteString(licenseKeyPrefix)
		b.WriteString(keyID)
		b.WriteByte(':')
		b.WriteString(key)
		b.WriteByte('\n')
	}

	b.WriteString(ch.URL)
	b.WriteString("\n\n")
}

// clearKey reports DRM lines only for mpd channels carrying both key fields.
func clearKey(ch *models.Channel) (keyID, key string, ok bool) {
	if ch.Type != models.ChannelTypeMPD {
		return "", "", false
	}
	return ch.ClearKey()
}
