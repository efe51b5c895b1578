package local

import (
	"context"
	"testing"
	"time"
)

func TestIssueToken(t *testing.T) {
	p := New([]byte("test-secret"), "huddle", "huddle-client", time.Hour)

	ut, err := p.IssueToken(context.Background())
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if ut.UserID == "" {
		t.Error("expected non-empty user id")
	}
	if ut.Token == "" {
		t.Error("expected non-empty token")
	}
	if !ut.ExpiresOn.After(time.Now()) {
		t.Errorf("expected expiry in the future, got %v", ut.ExpiresOn)
	}

	claims, err := p.ValidateToken(ut.Token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != ut.UserID {
		t.Errorf("expected user id %q in claims, got %q", ut.UserID, claims.UserID)
	}
	if claims.Issuer != "huddle" {
		t.Errorf("expected issuer 'huddle', got %q", claims.Issuer)
	}
}

func TestIssueTokenUniqueIdentities(t *testing.T) {
	p := New([]byte("test-secret"), "huddle", "huddle-client", time.Hour)

	first, err := p.IssueToken(context.Background())
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	second, err := p.IssueToken(context.Background())
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if first.UserID == second.UserID {
		t.Error("expected each issued token to carry a fresh identity")
	}
}

func TestValidateTokenRejectsForeignSignature(t *testing.T) {
	issuer := New([]byte("secret-a"), "huddle", "huddle-client", time.Hour)
	verifier := New([]byte("secret-b"), "huddle", "huddle-client", time.Hour)

	ut, err := issuer.IssueToken(context.Background())
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if _, err := verifier.ValidateToken(ut.Token); err == nil {
		t.Error("expected validation to fail for token signed with another secret")
	}
}
