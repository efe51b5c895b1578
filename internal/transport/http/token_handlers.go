package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/smolyakov/huddle/internal/identity"
)

// TokenHandlers provides HTTP handlers for calling-token issuance.
type TokenHandlers struct {
	provider identity.Provider
	log      *zerolog.Logger
}

// NewTokenHandlers creates a new token handlers instance.
func NewTokenHandlers(provider identity.Provider, logger *zerolog.Logger) *TokenHandlers {
	return &TokenHandlers{
		provider: provider,
		log:      logger,
	}
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// TokenUser is the identity part of a token response.
type TokenUser struct {
	ID string `json:"id"`
}

// TokenValue is the payload of a token response.
type TokenValue struct {
	Token     string    `json:"token"`
	ExpiresOn string    `json:"expiresOn"`
	User      TokenUser `json:"user"`
}

// TokenResponse wraps the issued token.
type TokenResponse struct {
	Value TokenValue `json:"value"`
}

// IssueToken requests a fresh calling identity and access token.
// GET /userToken
func (h *TokenHandlers) IssueToken(c *gin.Context) {
	ut, err := h.provider.IssueToken(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to issue user token")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.log.Debug().Str("user_id", ut.UserID).Msg("user token issued")
	c.JSON(http.StatusOK, TokenResponse{
		Value: TokenValue{
			Token:     ut.Token,
			ExpiresOn: ut.ExpiresOn.UTC().Format(time.RFC3339),
			User:      TokenUser{ID: ut.UserID},
		},
	})
}
