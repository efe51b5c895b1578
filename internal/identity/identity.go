package identity

import (
	"context"
	"time"
)

// UserToken is a freshly issued calling identity with its access token.
type UserToken struct {
	UserID    string
	Token     string
	ExpiresOn time.Time
}

// Provider abstracts the calling-service identity backend.
type Provider interface {
	// IssueToken creates a new calling identity and an access token for it.
	IssueToken(ctx context.Context) (*UserToken, error)
}
