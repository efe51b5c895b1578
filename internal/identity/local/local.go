package local

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/smolyakov/huddle/internal/identity"
)

// Claims are the JWT claims carried by locally issued tokens.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// Provider implements identity.Provider with self-signed HS256 tokens.
// Meant for development setups without a calling-service account.
type Provider struct {
	secret   []byte
	issuer   string
	audience string
	tokenTTL time.Duration
}

// New creates a local identity provider.
func New(secret []byte, issuer, audience string, tokenTTL time.Duration) *Provider {
	return &Provider{
		secret:   secret,
		issuer:   issuer,
		audience: audience,
		tokenTTL: tokenTTL,
	}
}

// IssueToken generates a fresh identity with a signed HS256 token.
func (p *Provider) IssueToken(_ context.Context) (*identity.UserToken, error) {
	userID := uuid.New().String()
	now := time.Now()
	expiresOn := now.Add(p.tokenTTL)

	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    p.issuer,
			Audience:  jwt.ClaimStrings{p.audience},
			ExpiresAt: jwt.NewNumericDate(expiresOn),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &identity.UserToken{
		UserID:    userID,
		Token:     token,
		ExpiresOn: expiresOn,
	}, nil
}

// ValidateToken parses and validates a locally issued token.
func (p *Provider) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// Ensure Provider implements identity.Provider.
var _ identity.Provider = (*Provider)(nil)
