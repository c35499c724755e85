package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/funcland/control-plane/internal/core/domain"
	"github.com/funcland/control-plane/internal/core/ports"
)

const (
	// defaultActiveInterval bounds how stale a verified session may be
	// before the next request pays a provider round trip.
	defaultActiveInterval = 60 * time.Second
	// defaultSessionTTL is the hard expiry of an interactive session.
	defaultSessionTTL = 23 * time.Hour

	secretLength = 40
)

// SessionService implements the session lifecycle: authorize with an
// active-interval fast path, reissue via the external identity provider,
// and revocation.
type SessionService struct {
	store    ports.SessionStore
	users    ports.UserRepository
	provider ports.IdentityProvider
	interval time.Duration
	ttl      time.Duration
	now      func() time.Time
	log      zerolog.Logger
}

func NewSessionService(
	store ports.SessionStore,
	users ports.UserRepository,
	provider ports.IdentityProvider,
	interval, ttl time.Duration,
	log zerolog.Logger,
) *SessionService {
	if interval <= 0 {
		interval = defaultActiveInterval
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionService{
		store:    store,
		users:    users,
		provider: provider,
		interval: interval,
		ttl:      ttl,
		now:      time.Now,
		log:      log,
	}
}

// Authorize resolves the presented secret to a user. Inside the active
// interval the stored token is trusted as-is; outside it the session seed is
// re-verified against the identity provider before the token is refreshed.
func (s *SessionService) Authorize(ctx context.Context, secret string) (*ports.AuthorizeResult, error) {
	token, err := s.store.FindBySecret(ctx, secret)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if token.Expired(now) {
		// Lazy cleanup; expiry is evaluated per-request, not swept.
		if delErr := s.store.Delete(ctx, secret); delErr != nil {
			s.log.Warn().Err(delErr).Str("token_uuid", token.UUID).Msg("failed to remove expired session")
		}
		return nil, domain.ErrSessionExpired
	}

	if token.Fresh(now) {
		user, err := s.users.FindByID(ctx, token.UserID)
		if err != nil {
			return nil, err
		}
		return &ports.AuthorizeResult{User: user, Token: token}, nil
	}

	// Active interval elapsed: the session must be vouched for again. This
	// blocks on network I/O; no store transaction is held across it.
	claims, err := s.provider.Verify(ctx, token.Seed)
	if err != nil {
		s.log.Info().Err(err).Str("token_uuid", token.UUID).Msg("provider rejected session seed")
		return nil, fmt.Errorf("%w: %v", domain.ErrVerificationFailed, err)
	}
	if claims.Subject != token.Subject || claims.Provider != token.Provider {
		return nil, fmt.Errorf("%w: seed identity mismatch", domain.ErrVerificationFailed)
	}

	if err := s.store.Touch(ctx, secret, now); err != nil {
		return nil, err
	}
	token.ActiveAt = now

	user, err := s.users.FindByID(ctx, token.UserID)
	if err != nil {
		return nil, err
	}
	return &ports.AuthorizeResult{User: user, Token: token, Verified: true}, nil
}

// Issue mints a brand-new session from sign-in claims. This is the only
// place a session token is created. Re-issuing for the same external
// identity replaces the prior token rather than duplicating it.
func (s *SessionService) Issue(ctx context.Context, claims ports.IdentityClaims) (*ports.IssueResult, error) {
	seed, err := s.provider.Exchange(ctx, claims)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrVerificationFailed, err)
	}

	now := s.now().UTC()
	user, err := s.users.Upsert(ctx, &domain.User{
		ID:        uuid.NewString(),
		Name:      seed.Name,
		Email:     seed.Email,
		AvatarURL: seed.AvatarURL,
		Role:      domain.RoleUser,
		Provider:  seed.Provider,
		Subject:   seed.Subject,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}

	if prior, err := s.store.FindByIdentity(ctx, seed.Provider, seed.Subject); err == nil {
		if delErr := s.store.Delete(ctx, prior.Secret); delErr != nil {
			s.log.Warn().Err(delErr).Str("token_uuid", prior.UUID).Msg("failed to replace prior session")
		}
	}

	secret, err := newSecret(secretLength)
	if err != nil {
		return nil, fmt.Errorf("generate session secret: %w", err)
	}
	token := &domain.SessionToken{
		UUID:           uuid.NewString(),
		Secret:         secret,
		UserID:         user.ID,
		Provider:       seed.Provider,
		Subject:        seed.Subject,
		Seed:           seed.Value,
		IssuedAt:       now,
		ExpiresAt:      now.Add(s.ttl),
		ActiveAt:       now,
		ActiveInterval: s.interval,
	}
	if err := s.store.Put(ctx, token); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}

	s.log.Info().
		Str("user_id", user.ID).
		Str("provider", seed.Provider).
		Str("token_uuid", token.UUID).
		Msg("session issued")

	return &ports.IssueResult{User: user, Token: token, Secret: secret}, nil
}

// Revoke destroys the session for the presented secret (sign-out).
func (s *SessionService) Revoke(ctx context.Context, secret string) error {
	return s.store.Delete(ctx, secret)
}

const secretAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// newSecret returns n alphanumeric characters from crypto/rand.
func newSecret(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = secretAlphabet[int(b[i])%len(secretAlphabet)]
	}
	return string(b), nil
}
