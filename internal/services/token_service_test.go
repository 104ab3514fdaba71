package services

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func TestTokenRoundTrip(t *testing.T) {
	tokens := NewTokenService("secret", 0)
	if tokens.Expiry() != 24*time.Hour {
		t.Fatalf("default expiry %v", tokens.Expiry())
	}
	id := uuid.New()

	raw, err := tokens.Issue(id)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	got, err := tokens.Verify(raw)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got != id {
		t.Fatalf("subject %s, want %s", got, id)
	}
}

func TestTokenExpires(t *testing.T) {
	tokens := NewTokenService("secret", time.Hour)
	issued := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	tokens.now = func() time.Time { return issued }

	raw, err := tokens.Issue(uuid.New())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	tokens.now = func() time.Time { return issued.Add(59 * time.Minute) }
	if _, err := tokens.Verify(raw); err != nil {
		t.Fatalf("token rejected before expiry: %v", err)
	}

	tokens.now = func() time.Time { return issued.Add(61 * time.Minute) }
	if _, err := tokens.Verify(raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken after expiry, got %v", err)
	}
	if _, err := tokens.Verify(raw); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("invalid token should be an unauthenticated error, got %v", err)
	}
}

func TestTokenRejectsForeignTokens(t *testing.T) {
	tokens := NewTokenService("secret", time.Hour)
	id := uuid.New()

	other, err := NewTokenService("other-secret", time.Hour).Issue(id)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims := jwt.RegisteredClaims{
		Subject:   id.String(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign hs512: %v", err)
	}
	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: id.String()}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "not-a-uuid",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	// Payload of one token under the signature of another.
	valid, _ := tokens.Issue(id)
	forged, _ := tokens.Issue(uuid.New())
	vp := strings.Split(valid, ".")
	fp := strings.Split(forged, ".")
	tampered := vp[0] + "." + fp[1] + "." + vp[2]

	cases := map[string]string{
		"wrong secret": other,
		"alg none":     unsigned,
		"other hmac":   hs512,
		"no expiry":    noExpiry,
		"bad subject":  badSubject,
		"tampered":     tampered,
		"garbage":      "not.a.token",
		"empty":        "",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := tokens.Verify(raw); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}
