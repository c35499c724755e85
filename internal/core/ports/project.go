package ports

import (
	"context"

	"github.com/funcland/control-plane/internal/core/domain"
)

// ProjectRepository persists projects. The production pointer is only ever
// written through CompareAndSwapProdDeployment.
type ProjectRepository interface {
	Create(ctx context.Context, p *domain.Project) error
	FindByUUID(ctx context.Context, uuid string) (*domain.Project, error)
	FindByName(ctx context.Context, ownerID, name string) (*domain.Project, error)
	// List returns projects owned by ownerID; an empty ownerID lists all
	// (admin aggregates).
	List(ctx context.Context, ownerID string) ([]*domain.Project, error)
	// SetStatus flips the pending/ready flag.
	SetStatus(ctx context.Context, uuid string, status domain.ProjectStatus) error
	// CompareAndSwapProdDeployment sets the production pointer to next only
	// if it still equals prev (empty string means null). A filter miss
	// returns domain.ErrConcurrentModification. This is the linearization
	// point for promotion, demotion, rename, and removal races.
	CompareAndSwapProdDeployment(ctx context.Context, uuid, prev, next string) error
	// Rename changes the project name, guarded by the same prod pointer
	// check so a rename racing a promotion loses cleanly.
	Rename(ctx context.Context, uuid, prev, name string) error
	// Delete removes the project record, guarded by the prod pointer check
	// like Rename. Cascading deployment removal is the service's
	// responsibility.
	Delete(ctx context.Context, uuid, prev string) error
	Count(ctx context.Context) (int64, error)
}

// CreateProjectInput carries the data needed to register a project.
type CreateProjectInput struct {
	Name     string
	Language string
	OwnerID  string
}

// ProjectService covers project CRUD; promotion lives in PromotionService.
type ProjectService interface {
	Create(ctx context.Context, in CreateProjectInput) (*domain.Project, error)
	Get(ctx context.Context, ownerID, name string) (*domain.Project, error)
	List(ctx context.Context, ownerID string) ([]*domain.Project, error)
	// Rename rejects a rename that races an in-flight promotion with
	// ErrConcurrentModification; callers retry.
	Rename(ctx context.Context, ownerID, uuid, name string) (*domain.Project, error)
	// Remove deletes the project and all its deployments.
	Remove(ctx context.Context, ownerID, uuid string) error
}
