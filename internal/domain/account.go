package domain

import "time"

// LinkedAccount is a telematics account linked through the OAuth relay.
type LinkedAccount struct {
	ID             string
	Provider       string
	ExternalUserID string
	AccessToken    string
	RefreshToken   string
	TokenExpiresAt time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TokenExpired reports whether the access token has passed its expiry.
func (a *LinkedAccount) TokenExpired(now time.Time) bool {
	return !a.TokenExpiresAt.IsZero() && now.After(a.TokenExpiresAt)
}
