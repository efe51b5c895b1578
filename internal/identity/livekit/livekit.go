package livekit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/livekit/protocol/auth"

	"github.com/smolyakov/huddle/internal/identity"
)

// Provider implements identity.Provider using LiveKit as the calling backend.
type Provider struct {
	apiKey    string
	apiSecret string
	tokenTTL  time.Duration
}

// New creates a LiveKit-backed identity provider.
func New(apiKey, apiSecret string, tokenTTL time.Duration) *Provider {
	return &Provider{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		tokenTTL:  tokenTTL,
	}
}

// IssueToken generates a fresh identity and a LiveKit access token for it.
// Rooms are created on-demand when the first participant joins, so no
// room provisioning happens here.
func (p *Provider) IssueToken(_ context.Context) (*identity.UserToken, error) {
	userID := uuid.New().String()
	now := time.Now()

	at := auth.NewAccessToken(p.apiKey, p.apiSecret)
	grant := &auth.VideoGrant{
		RoomJoin: true,
	}
	at.SetVideoGrant(grant).
		SetIdentity(userID).
		SetValidFor(p.tokenTTL)

	token, err := at.ToJWT()
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	return &identity.UserToken{
		UserID:    userID,
		Token:     token,
		ExpiresOn: now.Add(p.tokenTTL),
	}, nil
}

// Ensure Provider implements identity.Provider.
var _ identity.Provider = (*Provider)(nil)
