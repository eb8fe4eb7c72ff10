package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/catalog-gateway/internal/core/domain"
	"github.com/99minutos/catalog-gateway/internal/core/ports"
	"github.com/99minutos/catalog-gateway/internal/pkg/metrics"
)

const (
	flowRegistration = "registration"
	flowLogin        = "login"
)

// AuthService implements registration and login.
type AuthService struct {
	repo   ports.IdentityRepository
	hasher ports.PasswordHasher
	tokens ports.TokenCodec
	audit  ports.AuditLog
	log    zerolog.Logger
}

func NewAuthService(
	repo ports.IdentityRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenCodec,
	audit ports.AuditLog,
	log zerolog.Logger,
) *AuthService {
	if audit == nil {
		audit = NopAuditLog{}
	}
	return &AuthService{repo: repo, hasher: hasher, tokens: tokens, audit: audit, log: log}
}

// Register checks username then email availability, hashes the password and
// persists a new enabled identity with the default role. A username conflict
// is reported before the email is even looked at. The repository remains the
// final uniqueness arbiter: a concurrent registration that slips past the
// pre-checks is rejected by Create with the same sentinel errors.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*domain.Identity, error) {
	s.log.Info().Str("username", username).Msg("registration attempt")

	taken, err := s.repo.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, s.flowFailed(flowRegistration, err)
	}
	if taken {
		return nil, s.rejectRegistration(username, domain.ErrDuplicateUsername)
	}

	taken, err = s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, s.flowFailed(flowRegistration, err)
	}
	if taken {
		return nil, s.rejectRegistration(username, domain.ErrDuplicateEmail)
	}

	hash, err := s.hasher.Hash(password)
	if errors.Is(err, domain.ErrPasswordTooLong) {
		return nil, s.rejectRegistration(username, err)
	}
	if err != nil {
		return nil, s.flowFailed(flowRegistration, err)
	}

	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, &domain.Identity{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Roles:        domain.RoleUser,
		Enabled:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateUsername) || errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, s.rejectRegistration(username, err)
		}
		return nil, s.flowFailed(flowRegistration, err)
	}

	metrics.RegistrationsTotal.WithLabelValues("created").Inc()
	s.audit.Record(domain.AuthEvent{Type: domain.EventRegistered, Username: created.Username})
	s.log.Info().Str("username", created.Username).Msg("identity registered")
	return created, nil
}

// Login verifies credentials and issues a token. Unknown usernames and wrong
// passwords produce the same ErrInvalidCredentials; only the log and audit
// trail record which one it was. Disabled accounts are reported explicitly.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *domain.Identity, error) {
	s.log.Info().Str("username", username).Msg("login attempt")

	identity, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrIdentityNotFound) {
			return "", nil, s.rejectLogin(username, "unknown username", domain.ErrInvalidCredentials)
		}
		return "", nil, s.flowFailed(flowLogin, err)
	}

	if !identity.Enabled {
		return "", nil, s.rejectLogin(username, "account disabled", domain.ErrAccountDisabled)
	}

	if err := s.hasher.Compare(identity.PasswordHash, password); err != nil {
		return "", nil, s.rejectLogin(username, "password mismatch", domain.ErrInvalidCredentials)
	}

	token, err := s.tokens.Issue(identity.Username)
	if err != nil {
		return "", nil, s.flowFailed(flowLogin, err)
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	s.audit.Record(domain.AuthEvent{Type: domain.EventLoginSucceeded, Username: identity.Username})
	s.log.Info().Str("username", identity.Username).Msg("login successful")
	return token, identity, nil
}

func (s *AuthService) rejectRegistration(username string, err error) error {
	metrics.RegistrationsTotal.WithLabelValues("rejected").Inc()
	s.audit.Record(domain.AuthEvent{Type: domain.EventRegistrationRejected, Username: username, Reason: err.Error()})
	s.log.Info().Str("username", username).Err(err).Msg("registration rejected")
	return err
}

func (s *AuthService) rejectLogin(username, reason string, err error) error {
	metrics.LoginsTotal.WithLabelValues("rejected").Inc()
	s.audit.Record(domain.AuthEvent{Type: domain.EventLoginFailed, Username: username, Reason: reason})
	s.log.Warn().Str("username", username).Str("reason", reason).Msg("login rejected")
	return err
}

func (s *AuthService) flowFailed(flow string, err error) error {
	metrics.AuthFlowFailuresTotal.WithLabelValues(flow).Inc()
	s.log.Error().Err(err).Str("flow", flow).Msg("auth flow failed")
	return &domain.FlowError{Flow: flow, Err: err}
}
