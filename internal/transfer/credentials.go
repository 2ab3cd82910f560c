package transfer

import "time"

// AuthCredentials is a snapshot of an account's tokens. Adapters treat it
// as read-only: a refresh produces a new AuthCredentials and persistence
// of the result is the caller's job, never the adapter's.
type AuthCredentials struct {
	AccessToken    string            `json:"access_token"`
	RefreshToken   string            `json:"refresh_token,omitempty"`
	ExpiresAt      time.Time         `json:"expires_at,omitempty"`
	Scope          []string          `json:"scope,omitempty"`
	UserID         string            `json:"user_id,omitempty"`
	AdditionalData map[string]string `json:"additional_data,omitempty"`
}

// HasKnownExpiry reports whether the credential carries an expiry
// timestamp. Tokens imported from providers that do not publish expiry
// leave ExpiresAt zero.
func (c AuthCredentials) HasKnownExpiry() bool {
	return !c.ExpiresAt.IsZero()
}
