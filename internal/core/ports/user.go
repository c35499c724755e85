package ports

import (
	"context"

	"github.com/funcland/control-plane/internal/core/domain"
)

// UserRepository persists users keyed by their external identity.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByIdentity(ctx context.Context, provider, subject string) (*domain.User, error)
	// Upsert creates the user on first sign-in or refreshes profile fields
	// on later ones. Role is never changed by Upsert.
	Upsert(ctx context.Context, u *domain.User) (*domain.User, error)
	Count(ctx context.Context) (int64, error)
}
