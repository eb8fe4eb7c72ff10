package ports

// PasswordHasher is the opaque one-way verifier for passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Compare returns nil only when password matches hash.
	Compare(hash, password string) error
}

// TokenCodec issues and verifies signed, time-bounded identity tokens.
type TokenCodec interface {
	Issue(subject string) (string, error)
	// Verify returns the token subject or one of domain.ErrMalformedToken,
	// domain.ErrExpiredToken, domain.ErrInvalidSignature.
	Verify(token string) (string, error)
}
