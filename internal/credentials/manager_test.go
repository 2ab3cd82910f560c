package credentials

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/shintaro-0909/omnipost/internal/platform"
	"github.com/shintaro-0909/omnipost/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyExpiry(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		expiresAt time.Time
		want      Status
	}{
		{"already expired", now.Add(-time.Hour), StatusExpired},
		{"expires exactly now", now, StatusExpired},
		{"two days out", now.Add(2 * 24 * time.Hour), StatusRefreshDue},
		{"exactly at refresh window", now.Add(RefreshWindow), StatusRefreshDue},
		{"five days out", now.Add(5 * 24 * time.Hour), StatusExpiringSoon},
		{"exactly at warning window", now.Add(WarningWindow), StatusExpiringSoon},
		{"ten days out", now.Add(10 * 24 * time.Hour), StatusHealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyExpiry(now, tt.expiresAt))
		})
	}
}

type fakeStore struct {
	creds map[int64]transfer.AuthCredentials
	puts  int
	err   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{creds: make(map[int64]transfer.AuthCredentials)}
}

func (s *fakeStore) Get(ctx context.Context, accountID int64) (*transfer.AuthCredentials, error) {
	if s.err != nil {
		return nil, s.err
	}
	c, ok := s.creds[accountID]
	if !ok {
		return nil, errors.New("account not found")
	}
	return &c, nil
}

func (s *fakeStore) Put(ctx context.Context, accountID int64, creds transfer.AuthCredentials) error {
	if s.err != nil {
		return s.err
	}
	s.puts++
	s.creds[accountID] = creds
	return nil
}

type fakeRefresher struct {
	creds *transfer.AuthCredentials
	err   error
	calls int
}

func (r *fakeRefresher) Refresh(ctx context.Context, p platform.Platform, creds transfer.AuthCredentials) (*transfer.AuthCredentials, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return r.creds, nil
}

func TestManagerClassify(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
	m := NewManager(newFakeStore(), &fakeRefresher{}, clock)

	status, err := m.Classify(transfer.AuthCredentials{
		ExpiresAt: clock.Now().Add(2 * 24 * time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, StatusRefreshDue, status)
}

func TestManagerClassifyUnknownExpiry(t *testing.T) {
	m := NewManager(newFakeStore(), &fakeRefresher{}, nil)

	_, err := m.Classify(transfer.AuthCredentials{AccessToken: "tok"})
	assert.ErrorIs(t, err, ErrUnknownExpiry)
}

func TestManagerRefreshPersists(t *testing.T) {
	store := newFakeStore()
	refreshed := &transfer.AuthCredentials{AccessToken: "new", RefreshToken: "new-r"}
	m := NewManager(store, &fakeRefresher{creds: refreshed}, nil)

	got, err := m.Refresh(context.Background(), platform.X, 7, transfer.AuthCredentials{AccessToken: "old"})
	require.NoError(t, err)
	assert.Equal(t, "new", got.AccessToken)
	assert.Equal(t, "new", store.creds[7].AccessToken)
}

func TestManagerRefreshFailureDoesNotPersist(t *testing.T) {
	store := newFakeStore()
	m := NewManager(store, &fakeRefresher{err: transfer.NewAuthError("refresh rejected")}, nil)

	_, err := m.Refresh(context.Background(), platform.X, 7, transfer.AuthCredentials{AccessToken: "old"})
	require.Error(t, err)
	assert.Zero(t, store.puts)
}

func TestManagerRefreshStoreFailure(t *testing.T) {
	store := newFakeStore()
	store.err = errors.New("db down")
	m := NewManager(store, &fakeRefresher{creds: &transfer.AuthCredentials{AccessToken: "new"}}, nil)

	_, err := m.Refresh(context.Background(), platform.X, 7, transfer.AuthCredentials{})
	assert.Error(t, err)
}
