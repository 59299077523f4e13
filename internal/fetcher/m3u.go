package fetcher

import (
	"bufio"
	"errors"
	"io"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/voyagen/tvgate/internal/models"
)

var (
	reTvgName   = regexp.MustCompile(`tvg-name="([^"]*)"`)
	reTvgID     = regexp.MustCompile(`tvg-id="([^"]*)"`)
	reGroup     = regexp.MustCompile(`group-title="([^"]*)"`)
	reCommaName = regexp.MustCompile(`,([^\n\r\t]*)$`)
	reLicense   = regexp.MustCompile(`inputstream\.adaptive\.license_key=(.+)`)
)

var errNoName = errors.New("fetcher: no name in EXTINF")

// ParseM3U reads an extended M3U playlist and returns one channel per
// EXTINF/URL pair. ClearKey credentials from KODIPROP license_key lines are
// kept verbatim. EXTVLCOPT lines are accepted and ignored. Entries without a
// usable name are skipped.
func ParseM3U(r io.Reader) ([]models.Channel, error) {
	var channels []models.Channel
	scanner := bufio.NewScanner(r)
	// Some playlists carry very long EXTINF lines.
	const maxSize = 1024 * 1024
	scanner.Buffer(make([]byte, 0, 64*1024), maxSize)

	var (
		extinf      string
		keyID, key  string
		haveLicense bool
	)
	reset := func() {
		extinf, keyID, key, haveLicense = "", "", "", false
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		upper := strings.ToUpper(line)

		switch {
		case line == "":
		case strings.HasPrefix(upper, "#EXTINF"):
			reset()
			extinf = line
		case strings.HasPrefix(upper, "#KODIPROP"):
			if v := matchFirst(reLicense, line); v != "" {
				if k, secret, ok := strings.Cut(v, ":"); ok && k != "" && secret != "" {
					keyID, key, haveLicense = k, secret, true
				}
			}
		case strings.HasPrefix(line, "#"):
			// EXTM3U, EXTVLCOPT and unknown directives.
		default:
			if extinf == "" {
				continue
			}
			name, err := channelName(extinf)
			if err != nil {
				reset()
				continue
			}
			ch := models.Channel{
				Name:     name,
				Category: matchFirstPtr(reGroup, extinf),
				Type:     channelType(line),
				URL:      line,
			}
			if haveLicense {
				ch.DRMKeyID, ch.DRMKey = &keyID, &key
			}
			channels = append(channels, ch)
			reset()
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return channels, nil
}

func matchFirst(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func matchFirstPtr(re *regexp.Regexp, s string) *string {
	v := matchFirst(re, s)
	if v == "" {
		return nil
	}
	return &v
}

// channelName prefers tvg-name, then the display title after the last
// attribute, then tvg-id.
func channelName(extinf string) (string, error) {
	if n := matchFirst(reTvgName, extinf); n != "" {
		return n, nil
	}
	if i := strings.LastIndex(extinf, `"`); i >= 0 {
		if n := matchFirst(reCommaName, extinf[i:]); n != "" {
			return n, nil
		}
	} else if n := matchFirst(reCommaName, extinf); n != "" {
		return n, nil
	}
	if id := matchFirst(reTvgID, extinf); id != "" {
		return id, nil
	}
	return "", errNoName
}

// channelType derives the stream type from the URL path extension.
func channelType(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		p = u.Path
	}
	switch strings.ToLower(path.Ext(p)) {
	case ".mpd":
		return models.ChannelTypeMPD
	case ".m3u8":
		return models.ChannelTypeHLS
	default:
		return models.ChannelTypeStream
	}
}
