package ports

import (
	"context"

	"github.com/funcland/control-plane/internal/core/domain"
)

// DeploymentRepository persists deployment records.
type DeploymentRepository interface {
	Create(ctx context.Context, d *domain.Deployment) error
	FindByUUID(ctx context.Context, uuid string) (*domain.Deployment, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.Deployment, error)
	// NextSeq returns the next per-project sequence number.
	NextSeq(ctx context.Context, projectID string) (int64, error)
	// SetDeployStatus records the build outcome. The update filter includes
	// the expected current status so a double report fails with
	// domain.ErrInvalidTransition instead of overwriting a terminal state.
	SetDeployStatus(ctx context.Context, uuid string, from, to domain.DeployStatus) error
	// SetStatus toggles serving on or off.
	SetStatus(ctx context.Context, uuid string, status domain.DeploymentStatus) error
	// SetProd synchronizes the cached is_prod flag after a project pointer
	// swap. The project pointer is authoritative; this is best-effort cache
	// maintenance.
	SetProd(ctx context.Context, uuid string, isProd bool) error
	DeleteByProject(ctx context.Context, projectID string) error
	CountByDeployStatus(ctx context.Context) (map[domain.DeployStatus]int64, error)
}

// DeploymentService is the per-deployment state machine.
type DeploymentService interface {
	// Create registers a new deployment in state deploying. Creating the
	// first deployment flips a pending project to ready.
	Create(ctx context.Context, ownerID, projectUUID string) (*domain.Deployment, error)
	// MarkBuildResult records the terminal build outcome. Legal only while
	// deploy_status is deploying.
	MarkBuildResult(ctx context.Context, deploymentUUID string, outcome domain.DeployStatus) (*domain.Deployment, error)
	// Disable switches serving off. Disabling the production deployment
	// also clears the project's production pointer, atomically.
	Disable(ctx context.Context, ownerID, deploymentUUID string) (*domain.Deployment, error)
	// Enable switches serving back on. Production status is not restored.
	Enable(ctx context.Context, ownerID, deploymentUUID string) (*domain.Deployment, error)
	List(ctx context.Context, ownerID, projectUUID string) ([]*domain.Deployment, error)
}

// PromotionService enforces the prod-uniqueness invariant: at most one
// deployment per project is production, and it equals the project's
// prod_deployment_id.
type PromotionService interface {
	// Promote makes the deployment the project's production deployment.
	// Idempotent when it already is. A racing promotion loses with
	// ErrConcurrentModification and may retry.
	Promote(ctx context.Context, ownerID, projectUUID, deploymentUUID string) (*domain.Project, error)
}
