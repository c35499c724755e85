package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/funcland/control-plane/internal/core/domain"
	"github.com/funcland/control-plane/internal/core/ports"
)

// PromotionService performs the atomic production swap. The project's
// prod_deployment_id is the single authoritative cell: the compare-and-swap
// on it decides every race, and the per-deployment is_prod flags are synced
// afterwards as a cached view.
type PromotionService struct {
	projects    ports.ProjectRepository
	deployments ports.DeploymentRepository
	audit       ports.AuditRecorder
	now         func() time.Time
	logger      zerolog.Logger
}

func NewPromotionService(
	projects ports.ProjectRepository,
	deployments ports.DeploymentRepository,
	audit ports.AuditRecorder,
	logger zerolog.Logger,
) *PromotionService {
	return &PromotionService{
		projects:    projects,
		deployments: deployments,
		audit:       audit,
		now:         time.Now,
		logger:      logger,
	}
}

// Promote makes the deployment the project's production deployment.
//
// A losing racer gets domain.ErrConcurrentModification and is expected to
// retry against the refreshed state; it never overwrites based on a stale
// read of the previous pointer.
func (s *PromotionService) Promote(ctx context.Context, ownerID, projectUUID, deploymentUUID string) (*domain.Project, error) {
	project, err := s.projects.FindByUUID(ctx, projectUUID)
	if err != nil {
		return nil, err
	}
	if project.OwnerID != ownerID {
		return nil, domain.ErrForbidden
	}

	deployment, err := s.deployments.FindByUUID(ctx, deploymentUUID)
	if err != nil {
		return nil, err
	}
	if deployment.ProjectID != project.UUID {
		return nil, domain.ErrProjectMismatch
	}
	if !deployment.Promotable() {
		return nil, fmt.Errorf("%w: deploy status %s, status %s",
			domain.ErrDeploymentNotReady, deployment.DeployStatus, deployment.Status)
	}

	prev := project.ProdDeploymentID
	if prev == deployment.UUID {
		// Re-submitting a promotion for the deployment already in
		// production is a no-op.
		return project, nil
	}

	if err := s.projects.CompareAndSwapProdDeployment(ctx, project.UUID, prev, deployment.UUID); err != nil {
		return nil, err
	}

	// The swap is committed; syncing the cached flags cannot undo it.
	if err := s.deployments.SetProd(ctx, deployment.UUID, true); err != nil {
		s.logger.Warn().Err(err).Str("deployment", deployment.UUID).Msg("failed to sync is_prod flag")
	}
	if prev != "" {
		if err := s.deployments.SetProd(ctx, prev, false); err != nil {
			s.logger.Warn().Err(err).Str("deployment", prev).Msg("failed to clear is_prod flag")
		}
	}

	now := s.now().UTC()
	project.ProdDeploymentID = deployment.UUID
	project.UpdatedAt = now

	s.logger.Info().
		Str("project", project.UUID).
		Str("deployment", deployment.UUID).
		Str("previous", prev).
		Msg("deployment promoted to production")
	s.audit.Record(domain.AuditEvent{
		ActorID:    ownerID,
		Action:     "deployment.promote",
		EntityKind: "project",
		EntityID:   project.UUID,
		Detail:     deployment.UUID,
		Timestamp:  now,
	})
	return project, nil
}
