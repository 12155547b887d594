package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func newTestJWTer() *JWTer {
	return &JWTer{Secret: []byte("test-secret"), Issuer: "places-api", TTL: time.Hour}
}

func TestIssueParseRoundTrip(t *testing.T) {
	j := newTestJWTer()
	tok, err := j.Issue("user-1", "a@x.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	c, err := j.Parse(tok)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.UserID != "user-1" || c.Email != "a@x.com" {
		t.Fatalf("claims = %+v", c)
	}
	if got := c.ExpiresAt.Sub(c.IssuedAt.Time); got != time.Hour {
		t.Fatalf("ttl = %v, want 1h", got)
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	j := newTestJWTer()
	issuedAt := time.Now().Add(-2 * time.Hour)
	j.now = func() time.Time { return issuedAt }
	tok, err := j.Issue("user-1", "a@x.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	j.now = func() time.Time { return issuedAt.Add(61 * time.Minute) }
	if _, err := j.Parse(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestParseAcceptsTokenJustBeforeExpiry(t *testing.T) {
	j := newTestJWTer()
	issuedAt := time.Now()
	j.now = func() time.Time { return issuedAt }
	tok, err := j.Issue("user-1", "a@x.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	j.now = func() time.Time { return issuedAt.Add(59 * time.Minute) }
	if _, err := j.Parse(tok); err != nil {
		t.Fatalf("Parse: %v", err)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	tok, err := newTestJWTer().Issue("user-1", "a@x.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	other := newTestJWTer()
	other.Secret = []byte("another-secret")
	if _, err := other.Parse(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	tok, err := newTestJWTer().Issue("user-1", "a@x.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	other := newTestJWTer()
	other.Issuer = "someone-else"
	if _, err := other.Parse(tok); err == nil {
		t.Fatal("expected issuer mismatch to fail")
	}
}

func TestParseRejectsNoneAlg(t *testing.T) {
	claims := Claims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "places-api",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := newTestJWTer().Parse(tok); err == nil {
		t.Fatal("expected alg=none token to be rejected")
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := newTestJWTer().Parse("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestIssueWithoutSecretFails(t *testing.T) {
	j := &JWTer{TTL: time.Hour}
	if _, err := j.Issue("u", "e"); err == nil {
		t.Fatal("expected error without secret")
	}
}
