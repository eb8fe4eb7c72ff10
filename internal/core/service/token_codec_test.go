package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/99minutos/catalog-gateway/internal/core/domain"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestCodec(t *testing.T, clock *fakeClock) *JWTCodec {
	t.Helper()
	codec, err := NewJWTCodec("secret", time.Hour, WithClock(clock.Now), WithIssuer("catalog-gateway"))
	if err != nil {
		t.Fatalf("NewJWTCodec: %v", err)
	}
	return codec
}

func TestJWTCodec_RoundTripUntilExpiry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	codec := newTestCodec(t, clock)

	for _, subject := range []string{"alice", "Bob", "user.with-dots_123"} {
		token, err := codec.Issue(subject)
		if err != nil {
			t.Fatalf("Issue(%q): %v", subject, err)
		}
		got, err := codec.Verify(token)
		if err != nil {
			t.Fatalf("Verify: %v", err)
		}
		if got != subject {
			t.Fatalf("expected subject %q, got %q", subject, got)
		}
	}

	token, _ := codec.Issue("alice")
	clock.Advance(59 * time.Minute)
	if _, err := codec.Verify(token); err != nil {
		t.Fatalf("token should still be valid before TTL: %v", err)
	}

	clock.Advance(2 * time.Minute)
	if _, err := codec.Verify(token); !errors.Is(err, domain.ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken after TTL, got %v", err)
	}
}

func TestJWTCodec_TTLIsFixedAtIssuance(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	codec := newTestCodec(t, clock)
	token, _ := codec.Issue("alice")

	// Verifying does not slide the expiry.
	for i := 0; i < 3; i++ {
		clock.Advance(20 * time.Minute)
		_, _ = codec.Verify(token)
	}
	clock.Advance(5 * time.Minute)
	if _, err := codec.Verify(token); !errors.Is(err, domain.ErrExpiredToken) {
		t.Fatalf("expected expiry 1h after issuance, got %v", err)
	}
}

func TestJWTCodec_SubSecondIssueKeepsFullTTL(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 900_000_000, time.UTC)}
	codec := newTestCodec(t, clock)
	token, _ := codec.Issue("alice")

	clock.Advance(time.Hour - 500*time.Millisecond)
	if _, err := codec.Verify(token); err != nil {
		t.Fatalf("token should be valid until issue+TTL: %v", err)
	}

	clock.Advance(2 * time.Second)
	if _, err := codec.Verify(token); !errors.Is(err, domain.ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestJWTCodec_MalformedInputNeverPanics(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	codec := newTestCodec(t, clock)
	valid, _ := codec.Issue("alice")

	inputs := []string{
		"",
		"not-a-token",
		"a.b.c",
		"....",
		string([]byte{0xff, 0xfe, 0x00, 0x01}),
		valid[:len(valid)/2],
		strings.Repeat("x", 4096),
	}
	for _, in := range inputs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("Verify(%q) panicked: %v", in, r)
				}
			}()
			if _, err := codec.Verify(in); err == nil {
				t.Fatalf("Verify(%q) expected failure", in)
			}
		}()
	}

	if _, err := codec.Verify(""); !errors.Is(err, domain.ErrMalformedToken) {
		t.Fatalf("expected ErrMalformedToken for empty input, got %v", err)
	}
	if _, err := codec.Verify("a.b.c"); !domain.IsTokenError(err) {
		t.Fatalf("expected token error, got %v", err)
	}
}

func TestJWTCodec_InvalidSignature(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	codec := newTestCodec(t, clock)

	other, _ := NewJWTCodec("another-secret", time.Hour, WithClock(clock.Now), WithIssuer("catalog-gateway"))
	forged, _ := other.Issue("alice")
	if _, err := codec.Verify(forged); !errors.Is(err, domain.ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}

	hs512 := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Subject:   "alice",
		Issuer:    "catalog-gateway",
		ExpiresAt: jwt.NewNumericDate(clock.Now().Add(time.Hour)),
	})
	signed, err := hs512.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := codec.Verify(signed); !errors.Is(err, domain.ErrInvalidSignature) {
		t.Fatalf("expected unexpected algorithm to be rejected, got %v", err)
	}
}

func TestJWTCodec_MissingSubjectOrExpiry(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	codec := newTestCodec(t, clock)

	noSubject, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    "catalog-gateway",
		ExpiresAt: jwt.NewNumericDate(clock.Now().Add(time.Hour)),
	}).SignedString([]byte("secret"))
	if _, err := codec.Verify(noSubject); !errors.Is(err, domain.ErrMalformedToken) {
		t.Fatalf("expected ErrMalformedToken without subject, got %v", err)
	}

	noExpiry, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "alice",
		Issuer:  "catalog-gateway",
	}).SignedString([]byte("secret"))
	if _, err := codec.Verify(noExpiry); err == nil {
		t.Fatalf("expected token without exp to be rejected")
	}
}

func TestNewJWTCodec_RequiresSecret(t *testing.T) {
	if _, err := NewJWTCodec("", time.Hour); err == nil {
		t.Fatalf("expected error for empty secret")
	}
	codec, err := NewJWTCodec("s", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if codec.TTL() != defaultTokenTTL {
		t.Fatalf("expected default TTL, got %s", codec.TTL())
	}
}
