package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  Platform
		ok    bool
	}{
		{"instagram", Instagram, true},
		{"x", X, true},
		{"tiktok", TikTok, true},
		{"linkedin", LinkedIn, true},
		{"mock", Mock, true},
		{"TikTok", "", false},
		{"myspace", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := Parse(tt.input)
		assert.Equal(t, tt.ok, ok, "Parse(%q)", tt.input)
		if tt.ok {
			assert.Equal(t, tt.want, got)
		}
	}
}

func TestLimitsForKnownPlatforms(t *testing.T) {
	for _, p := range All() {
		l := LimitsFor(p)
		assert.Positive(t, l.TextMaxLength, "platform %s", p)
		assert.Positive(t, l.MediaMaxCount, "platform %s", p)
		assert.NotEmpty(t, l.SupportedMediaTypes, "platform %s", p)
		assert.Positive(t, l.RateLimits.PostsPerHour, "platform %s", p)
	}

	x := LimitsFor(X)
	assert.Equal(t, 280, x.TextMaxLength)
	assert.Equal(t, 4, x.MediaMaxCount)
}

func TestLimitsForUnknownPlatformFallsBack(t *testing.T) {
	l := LimitsFor(Platform("myspace"))
	require.Equal(t, defaultLimits, l)
}

func TestSupportsMediaType(t *testing.T) {
	tiktok := LimitsFor(TikTok)
	assert.True(t, tiktok.SupportsMediaType("video/mp4"))
	assert.False(t, tiktok.SupportsMediaType("image/jpeg"))
}

func TestFeaturesForUnknownPlatformIsZero(t *testing.T) {
	f := FeaturesFor(Platform("myspace"))
	assert.Equal(t, Features{}, f)
}

func TestFeaturesForTikTokIsVideoOnly(t *testing.T) {
	f := FeaturesFor(TikTok)
	assert.True(t, f.VideoOnly)
	assert.False(t, f.Stories)
}
