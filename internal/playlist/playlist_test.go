package playlist

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voyagen/tvgate/internal/fetcher"
	"github.com/voyagen/tvgate/internal/models"
)

func ptr(s string) *string { return &s }

func TestRenderSingleDRMEntry(t *testing.T) {
	out := Render([]models.Channel{{
		Name:     "News One",
		Category: ptr("News"),
		Type:     "mpd",
		URL:      "https://cdn.example.com/news.mpd",
		DRMKeyID: ptr("0123abcd"),
		DRMKey:   ptr("4567ef89"),
	}})

	want := "#EXTM3U\n\n" +
		`#EXTINF:-1 tvg-name="News One" tvg-logo="` + LogoURL + `" group-title="News",News One` + "\n" +
		"#EXTVLCOPT:http-user-agent=" + StreamUserAgent + "\n" +
		"#EXTVLCOPT:http-referrer=" + StreamReferer + "\n" +
		"#KODIPROP:inputstream.adaptive.license_type=org.w3.clearkey\n" +
		"#KODIPROP:inputstream.adaptive.license_key=0123abcd:4567ef89\n" +
		"https://cdn.example.com/news.mpd\n\n"
	assert.Equal(t, want, string(out))
}

func TestRenderEmpty(t *testing.T) {
	assert.Equal(t, "#EXTM3U\n\n", string(Render(nil)))
}

func TestRenderDeterministic(t *testing.T) {
	channels := []models.Channel{
		{Name: "B", Category: ptr("Movies"), Type: "m3u8", URL: "http://b"},
		{Name: "A", Type: "mpd", URL: "http://a", DRMKeyID: ptr("k"), DRMKey: ptr("v")},
	}
	first := Render(channels)
	second := Render(channels)
	assert.Equal(t, first, second)
}

func TestRenderDRMLinesOnlyWhenComplete(t *testing.T) {
	tests := []struct {
		name    string
		channel models.Channel
		wantDRM bool
	}{
		{"mpd with both keys", models.Channel{Type: "mpd", DRMKeyID: ptr("k"), DRMKey: ptr("v")}, true},
		{"mpd missing key id", models.Channel{Type: "mpd", DRMKey: ptr("v")}, false},
		{"mpd missing key", models.Channel{Type: "mpd", DRMKeyID: ptr("k")}, false},
		{"mpd empty key id", models.Channel{Type: "mpd", DRMKeyID: ptr(""), DRMKey: ptr("v")}, false},
		{"mpd empty key", models.Channel{Type: "mpd", DRMKeyID: ptr("k"), DRMKey: ptr("")}, false},
		{"hls with both keys", models.Channel{Type: "m3u8", DRMKeyID: ptr("k"), DRMKey: ptr("v")}, false},
		{"uppercase MPD", models.Channel{Type: "MPD", DRMKeyID: ptr("k"), DRMKey: ptr("v")}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.channel.Name = "X"
			tt.channel.URL = "http://x"
			out := string(Render([]models.Channel{tt.channel}))
			assert.Equal(t, tt.wantDRM, strings.Contains(out, "#KODIPROP:inputstream.adaptive.license_type=org.w3.clearkey\n"))
			assert.Equal(t, tt.wantDRM, strings.Contains(out, "#KODIPROP:inputstream.adaptive.license_key=k:v\n"))
		})
	}
}

func TestRenderUncategorized(t *testing.T) {
	out := string(Render([]models.Channel{
		{Name: "Nil", URL: "http://a"},
		{Name: "Empty", Category: ptr(""), URL: "http://b"},
	}))
	assert.Equal(t, 2, strings.Count(out, `group-title="Uncategorized"`))
}

func TestRenderPreservesOrder(t *testing.T) {
	out := string(Render([]models.Channel{
		{Name: "Second", URL: "http://2"},
		{Name: "First", URL: "http://1"},
	}))
	assert.Less(t, strings.Index(out, "http://2"), strings.Index(out, "http://1"))
}

func TestRenderParsesBack(t *testing.T) {
	in := []models.Channel{
		{Name: "News One", Category: ptr("News"), Type: "mpd", URL: "https://cdn/news.mpd", DRMKeyID: ptr("k1"), DRMKey: ptr("v1")},
		{Name: "Sports", Category: ptr("Sports"), Type: "m3u8", URL: "https://cdn/sports.m3u8"},
	}
	got, err := fetcher.ParseM3U(strings.NewReader(string(Render(in))))
	require.NoError(t, err)
	assert.Equal(t, in, got)
}
