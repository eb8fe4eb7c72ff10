package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/99minutos/catalog-gateway/internal/core/domain"
)

const defaultTokenTTL = 24 * time.Hour

// JWTCodec issues and verifies HS256 tokens whose subject is a username.
// Expiry is fixed at issuance and checked against wall-clock time with no
// leeway.
type JWTCodec struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// CodecOption customises a JWTCodec.
type CodecOption func(*JWTCodec)

// WithClock replaces time.Now, mainly for expiry tests.
func WithClock(now func() time.Time) CodecOption {
	return func(c *JWTCodec) { c.now = now }
}

// WithIssuer sets the "iss" claim on issued tokens and requires it on verify.
func WithIssuer(issuer string) CodecOption {
	return func(c *JWTCodec) { c.issuer = issuer }
}

func NewJWTCodec(secret string, ttl time.Duration, opts ...CodecOption) (*JWTCodec, error) {
	if secret == "" {
		return nil, errors.New("token codec: secret is required")
	}
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	c := &JWTCodec{secret: []byte(secret), ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// TTL returns the fixed lifetime applied to issued tokens.
func (c *JWTCodec) TTL() time.Duration { return c.ttl }

func (c *JWTCodec) Issue(subject string) (string, error) {
	if subject == "" {
		return "", errors.New("token codec: empty subject")
	}
	now := c.now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   subject,
		Issuer:    c.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(ceilSecond(now.Add(c.ttl))),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("token codec: sign: %w", err)
	}
	return signed, nil
}

// ceilSecond rounds t up to a whole second. NumericDate truncates, which
// would otherwise cut up to a second off the token lifetime.
func ceilSecond(t time.Time) time.Time {
	if s := t.Truncate(time.Second); !s.Equal(t) {
		return s.Add(time.Second)
	}
	return t
}

func (c *JWTCodec) Verify(token string) (string, error) {
	if token == "" {
		return "", domain.ErrMalformedToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	}, opts...)
	if err != nil {
		return "", classify(err)
	}
	if claims.Subject == "" {
		return "", domain.ErrMalformedToken
	}
	return claims.Subject, nil
}

// classify collapses golang-jwt's error set into the three verification
// outcomes callers distinguish.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return domain.ErrExpiredToken
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable):
		return domain.ErrInvalidSignature
	default:
		return fmt.Errorf("%w: %v", domain.ErrMalformedToken, err)
	}
}
