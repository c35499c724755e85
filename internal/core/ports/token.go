package ports

import (
	"context"

	"github.com/funcland/control-plane/internal/core/domain"
)

// TokenRepository persists deployment-token metadata. Secrets are stored
// hashed; the repository never sees plaintext after creation.
type TokenRepository interface {
	Create(ctx context.Context, t *domain.DeploymentToken) error
	FindByUUID(ctx context.Context, uuid string) (*domain.DeploymentToken, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.DeploymentToken, error)
	Delete(ctx context.Context, uuid string) error
}

// CreateTokenInput carries the data needed to mint a deployment token.
type CreateTokenInput struct {
	Name    string
	OwnerID string
	Usage   domain.TokenUsage
	// ExpireSeconds zero means no expiry.
	ExpireSeconds int64
}

// CreateTokenResult is the only place the plaintext secret appears.
type CreateTokenResult struct {
	Token  *domain.DeploymentToken
	Secret string
}

// TokenService manages deployment tokens for non-interactive clients.
type TokenService interface {
	Create(ctx context.Context, in CreateTokenInput) (*CreateTokenResult, error)
	List(ctx context.Context, ownerID string) ([]*domain.DeploymentToken, error)
	// Remove deletes a token the caller owns.
	Remove(ctx context.Context, ownerID, uuid string) error
	// VerifySecret authenticates a presented plaintext secret, optionally
	// restricted to a usage. Expired or unknown secrets fail with
	// domain.ErrTokenNotFound.
	VerifySecret(ctx context.Context, secret string, usage domain.TokenUsage) (*domain.DeploymentToken, error)
}
