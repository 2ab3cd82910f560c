package publisher

import (
	"context"
	"errors"
	"testing"

	"github.com/shintaro-0909/omnipost/internal/adapter"
	"github.com/shintaro-0909/omnipost/internal/platform"
	"github.com/shintaro-0909/omnipost/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFactory hands out mock adapters and fails construction for
// platforms listed in broken.
type fakeFactory struct {
	broken map[platform.Platform]error
}

func (f *fakeFactory) CreateAdapter(ctx context.Context, p platform.Platform, creds transfer.AuthCredentials) (adapter.Adapter, error) {
	if err, ok := f.broken[p]; ok {
		return nil, err
	}
	return adapter.NewMockAdapter(p, creds, adapter.MockOptions{Seed: 42, NoLatency: true}), nil
}

func activeEntry(p platform.Platform) PlatformCredentials {
	return PlatformCredentials{
		Platform:    p,
		Credentials: transfer.AuthCredentials{AccessToken: "tok", UserID: "alice"},
		Active:      true,
	}
}

func TestPublishToMultiplePlatforms(t *testing.T) {
	factory := &fakeFactory{broken: map[platform.Platform]error{
		platform.TikTok: errors.New("credentials unreadable"),
	}}
	pub := New(factory, 2)

	entries := []PlatformCredentials{
		activeEntry(platform.X),
		activeEntry(platform.Instagram),
		activeEntry(platform.TikTok),
	}
	post := transfer.PostContent{Text: "multi platform launch"}

	results := pub.PublishToMultiplePlatforms(context.Background(), entries, post, nil)
	require.Len(t, results, 3)

	assert.True(t, results[platform.X].Success)
	assert.True(t, results[platform.Instagram].Success)

	// Construction failure still occupies the platform's slot.
	broken := results[platform.TikTok]
	assert.False(t, broken.Success)
	assert.Equal(t, "credentials unreadable", broken.Error)
	assert.Nil(t, broken.Result)
}

func TestPublishSkipsInactiveEntries(t *testing.T) {
	pub := New(&fakeFactory{}, 0)

	entries := []PlatformCredentials{
		activeEntry(platform.X),
		{Platform: platform.Instagram, Active: false},
	}

	results := pub.PublishToMultiplePlatforms(context.Background(), entries, transfer.PostContent{Text: "hi"}, nil)
	require.Len(t, results, 1)
	assert.Contains(t, results, platform.X)
	assert.NotContains(t, results, platform.Instagram)
}

func TestPublishOnePlatformFailureDoesNotAffectOthers(t *testing.T) {
	pub := New(&fakeFactory{}, 4)

	entries := []PlatformCredentials{
		activeEntry(platform.X),
		activeEntry(platform.TikTok), // text-only post fails tiktok validation
	}
	post := transfer.PostContent{Text: "no video here"}

	results := pub.PublishToMultiplePlatforms(context.Background(), entries, post, nil)
	require.Len(t, results, 2)
	assert.True(t, results[platform.X].Success)

	tiktok := results[platform.TikTok]
	require.False(t, tiktok.Success)
	require.NotNil(t, tiktok.Result)
	assert.Equal(t, string(transfer.ErrorTypeContent), tiktok.Result.PlatformResponse["error_type"])
}

func TestValidateAllCredentials(t *testing.T) {
	factory := &fakeFactory{broken: map[platform.Platform]error{
		platform.Facebook: errors.New("no stored credentials"),
	}}
	pub := New(factory, 2)

	entries := []PlatformCredentials{
		activeEntry(platform.X),
		activeEntry(platform.Facebook),
		{Platform: platform.Instagram, Active: false},
	}

	statuses := pub.ValidateAllCredentials(context.Background(), entries)
	require.Len(t, statuses, 2)

	fb := statuses[platform.Facebook]
	assert.False(t, fb.Valid)
	assert.Equal(t, "no stored credentials", fb.Error)
	assert.NotContains(t, statuses, platform.Instagram)
}
