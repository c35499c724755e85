package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/funcland/control-plane/internal/core/domain"
	"github.com/funcland/control-plane/internal/core/ports"
)

// secretPrefix marks deployment-token secrets. The token uuid is embedded in
// the plaintext so verification can find the stored bcrypt hash with a point
// lookup instead of scanning.
const secretPrefix = "fl"

const tokenSecretLength = 24

// TokenService manages deployment tokens: long-lived credentials for
// command-line deploys and the build collaborator. Secrets are bcrypt-hashed
// at rest and retrievable exactly once, at creation.
type TokenService struct {
	tokens ports.TokenRepository
	audit  ports.AuditRecorder
	now    func() time.Time
	logger zerolog.Logger
}

func NewTokenService(tokens ports.TokenRepository, audit ports.AuditRecorder, logger zerolog.Logger) *TokenService {
	return &TokenService{tokens: tokens, audit: audit, now: time.Now, logger: logger}
}

// Create mints a token and returns the plaintext secret. All later reads
// expose metadata only.
func (s *TokenService) Create(ctx context.Context, in ports.CreateTokenInput) (*ports.CreateTokenResult, error) {
	if in.Usage != domain.UsageCmdline && in.Usage != domain.UsageWorker {
		return nil, fmt.Errorf("invalid token usage %q", in.Usage)
	}

	id := uuid.NewString()
	random, err := newSecret(tokenSecretLength)
	if err != nil {
		return nil, fmt.Errorf("generate token secret: %w", err)
	}
	secret := fmt.Sprintf("%s_%s_%s", secretPrefix, id, random)

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash token secret: %w", err)
	}

	now := s.now().UTC()
	token := &domain.DeploymentToken{
		UUID:       id,
		Name:       in.Name,
		SecretHash: string(hash),
		OwnerID:    in.OwnerID,
		Usage:      in.Usage,
		CreatedAt:  now,
	}
	if in.ExpireSeconds > 0 {
		token.ExpiredAt = now.Add(time.Duration(in.ExpireSeconds) * time.Second)
	}
	if err := s.tokens.Create(ctx, token); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("token_uuid", token.UUID).
		Str("owner", in.OwnerID).
		Str("usage", string(in.Usage)).
		Msg("deployment token created")
	s.audit.Record(domain.AuditEvent{
		ActorID:    in.OwnerID,
		Action:     "token.create",
		EntityKind: "token",
		EntityID:   token.UUID,
		Detail:     token.Name,
		Timestamp:  now,
	})
	return &ports.CreateTokenResult{Token: token, Secret: secret}, nil
}

func (s *TokenService) List(ctx context.Context, ownerID string) ([]*domain.DeploymentToken, error) {
	return s.tokens.ListByOwner(ctx, ownerID)
}

// Remove deletes a token the caller owns.
func (s *TokenService) Remove(ctx context.Context, ownerID, tokenUUID string) error {
	token, err := s.tokens.FindByUUID(ctx, tokenUUID)
	if err != nil {
		return err
	}
	if token.OwnerID != ownerID {
		return domain.ErrForbidden
	}
	if err := s.tokens.Delete(ctx, tokenUUID); err != nil {
		return err
	}
	s.audit.Record(domain.AuditEvent{
		ActorID:    ownerID,
		Action:     "token.remove",
		EntityKind: "token",
		EntityID:   tokenUUID,
		Detail:     token.Name,
		Timestamp:  s.now().UTC(),
	})
	return nil
}

// VerifySecret authenticates a presented plaintext secret. Expiry is
// evaluated here, lazily, at request time.
func (s *TokenService) VerifySecret(ctx context.Context, secret string, usage domain.TokenUsage) (*domain.DeploymentToken, error) {
	parts := strings.SplitN(secret, "_", 3)
	if len(parts) != 3 || parts[0] != secretPrefix {
		return nil, domain.ErrTokenNotFound
	}
	token, err := s.tokens.FindByUUID(ctx, parts[1])
	if err != nil {
		return nil, err
	}
	if token.Expired(s.now().UTC()) {
		return nil, domain.ErrTokenNotFound
	}
	if usage != "" && token.Usage != usage {
		return nil, domain.ErrTokenNotFound
	}
	if bcrypt.CompareHashAndPassword([]byte(token.SecretHash), []byte(secret)) != nil {
		return nil, domain.ErrTokenNotFound
	}
	return token, nil
}
