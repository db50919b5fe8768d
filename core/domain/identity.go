package domain

import "time"

// Identity is the authenticated caller derived from an access token.
type Identity struct {
	UserID    string
	TokenID   string
	ExpiresAt time.Time
}
