package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/funcland/control-plane/internal/core/domain"
	"github.com/funcland/control-plane/internal/core/ports"
)

// DeploymentService implements the per-deployment state machine: create in
// deploying, record the terminal build outcome once, and toggle serving.
type DeploymentService struct {
	projects    ports.ProjectRepository
	deployments ports.DeploymentRepository
	audit       ports.AuditRecorder
	now         func() time.Time
	logger      zerolog.Logger
}

func NewDeploymentService(
	projects ports.ProjectRepository,
	deployments ports.DeploymentRepository,
	audit ports.AuditRecorder,
	logger zerolog.Logger,
) *DeploymentService {
	return &DeploymentService{
		projects:    projects,
		deployments: deployments,
		audit:       audit,
		now:         time.Now,
		logger:      logger,
	}
}

// Create registers a new deployment in state deploying. The first deployment
// of a pending project flips the project to ready.
func (s *DeploymentService) Create(ctx context.Context, ownerID, projectUUID string) (*domain.Deployment, error) {
	project, err := s.projects.FindByUUID(ctx, projectUUID)
	if err != nil {
		return nil, err
	}
	if project.OwnerID != ownerID {
		return nil, domain.ErrForbidden
	}

	seq, err := s.deployments.NextSeq(ctx, project.UUID)
	if err != nil {
		return nil, fmt.Errorf("next deployment seq: %w", err)
	}

	now := s.now().UTC()
	dpDomain := fmt.Sprintf("%s-%d-%s", project.Name, seq, randHex(3))
	deployment := &domain.Deployment{
		UUID:         uuid.NewString(),
		Seq:          seq,
		ProjectID:    project.UUID,
		OwnerID:      ownerID,
		Domain:       dpDomain,
		PreviewURL:   fmt.Sprintf("https://%s.%s", dpDomain, project.Subdomain),
		Status:       domain.DeploymentActive,
		DeployStatus: domain.DeployStatusDeploying,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.deployments.Create(ctx, deployment); err != nil {
		s.logger.Error().Err(err).Str("project", project.UUID).Msg("failed to create deployment")
		return nil, err
	}

	if project.Status == domain.ProjectPending {
		if err := s.projects.SetStatus(ctx, project.UUID, domain.ProjectReady); err != nil {
			s.logger.Warn().Err(err).Str("project", project.UUID).Msg("failed to mark project ready")
		}
	}

	s.logger.Info().
		Str("deployment", deployment.UUID).
		Str("project", project.UUID).
		Int64("seq", seq).
		Msg("deployment created")
	s.audit.Record(domain.AuditEvent{
		ActorID:    ownerID,
		Action:     "deployment.create",
		EntityKind: "deployment",
		EntityID:   deployment.UUID,
		Detail:     deployment.Domain,
		Timestamp:  now,
	})
	return deployment, nil
}

// MarkBuildResult records the build outcome reported by the build
// collaborator. Legal only while deploy_status is deploying; the transition
// happens exactly once.
func (s *DeploymentService) MarkBuildResult(ctx context.Context, deploymentUUID string, outcome domain.DeployStatus) (*domain.Deployment, error) {
	if outcome != domain.DeployStatusSuccess && outcome != domain.DeployStatusFailed {
		return nil, fmt.Errorf("%w: outcome %q is not terminal", domain.ErrInvalidTransition, outcome)
	}

	deployment, err := s.deployments.FindByUUID(ctx, deploymentUUID)
	if err != nil {
		return nil, err
	}
	if !deployment.DeployStatus.CanTransitionTo(outcome) {
		return nil, fmt.Errorf("%w: from %s to %s", domain.ErrInvalidTransition, deployment.DeployStatus, outcome)
	}

	// The repository re-checks the current status in its update filter, so
	// two concurrent reports cannot both land.
	if err := s.deployments.SetDeployStatus(ctx, deploymentUUID, domain.DeployStatusDeploying, outcome); err != nil {
		return nil, err
	}
	deployment.DeployStatus = outcome
	deployment.UpdatedAt = s.now().UTC()

	s.logger.Info().
		Str("deployment", deploymentUUID).
		Str("outcome", string(outcome)).
		Msg("build result recorded")
	s.audit.Record(domain.AuditEvent{
		ActorID:    "build",
		Action:     "deployment.build_result",
		EntityKind: "deployment",
		EntityID:   deploymentUUID,
		Detail:     string(outcome),
		Timestamp:  deployment.UpdatedAt,
	})
	return deployment, nil
}

// Disable switches serving off. When the deployment is the project's
// production deployment the production pointer is cleared in the same
// operation, so production never silently points at disabled code.
func (s *DeploymentService) Disable(ctx context.Context, ownerID, deploymentUUID string) (*domain.Deployment, error) {
	deployment, err := s.deployments.FindByUUID(ctx, deploymentUUID)
	if err != nil {
		return nil, err
	}
	if deployment.OwnerID != ownerID {
		return nil, domain.ErrForbidden
	}
	if deployment.DeployStatus != domain.DeployStatusSuccess {
		return nil, fmt.Errorf("%w: deploy status is %s", domain.ErrDeploymentNotReady, deployment.DeployStatus)
	}

	project, err := s.projects.FindByUUID(ctx, deployment.ProjectID)
	if err != nil {
		return nil, err
	}
	if project.ProdDeploymentID == deployment.UUID {
		// Clearing the pointer is the linearization point; a concurrent
		// promotion that moved it first wins and we surface the conflict.
		if err := s.projects.CompareAndSwapProdDeployment(ctx, project.UUID, deployment.UUID, ""); err != nil {
			return nil, err
		}
		if err := s.deployments.SetProd(ctx, deployment.UUID, false); err != nil {
			s.logger.Warn().Err(err).Str("deployment", deployment.UUID).Msg("failed to sync is_prod flag")
		}
		deployment.IsProd = false
	}

	if err := s.deployments.SetStatus(ctx, deployment.UUID, domain.DeploymentInactive); err != nil {
		return nil, err
	}
	deployment.Status = domain.DeploymentInactive
	deployment.UpdatedAt = s.now().UTC()

	s.logger.Info().Str("deployment", deploymentUUID).Msg("deployment disabled")
	s.audit.Record(domain.AuditEvent{
		ActorID:    ownerID,
		Action:     "deployment.disable",
		EntityKind: "deployment",
		EntityID:   deploymentUUID,
		Timestamp:  deployment.UpdatedAt,
	})
	return deployment, nil
}

// Enable switches serving back on. Production status is not restored; the
// caller must promote again explicitly.
func (s *DeploymentService) Enable(ctx context.Context, ownerID, deploymentUUID string) (*domain.Deployment, error) {
	deployment, err := s.deployments.FindByUUID(ctx, deploymentUUID)
	if err != nil {
		return nil, err
	}
	if deployment.OwnerID != ownerID {
		return nil, domain.ErrForbidden
	}
	if deployment.DeployStatus != domain.DeployStatusSuccess {
		return nil, fmt.Errorf("%w: deploy status is %s", domain.ErrDeploymentNotReady, deployment.DeployStatus)
	}
	if deployment.Status != domain.DeploymentInactive {
		return nil, fmt.Errorf("%w: deployment is already %s", domain.ErrInvalidTransition, deployment.Status)
	}

	if err := s.deployments.SetStatus(ctx, deployment.UUID, domain.DeploymentActive); err != nil {
		return nil, err
	}
	deployment.Status = domain.DeploymentActive
	deployment.UpdatedAt = s.now().UTC()

	s.logger.Info().Str("deployment", deploymentUUID).Msg("deployment enabled")
	s.audit.Record(domain.AuditEvent{
		ActorID:    ownerID,
		Action:     "deployment.enable",
		EntityKind: "deployment",
		EntityID:   deploymentUUID,
		Timestamp:  deployment.UpdatedAt,
	})
	return deployment, nil
}

// List returns the project's deployments, newest first, after the same
// ownership check every read path applies.
func (s *DeploymentService) List(ctx context.Context, ownerID, projectUUID string) ([]*domain.Deployment, error) {
	project, err := s.projects.FindByUUID(ctx, projectUUID)
	if err != nil {
		return nil, err
	}
	if project.OwnerID != ownerID {
		return nil, domain.ErrForbidden
	}
	deployments, err := s.deployments.ListByProject(ctx, project.UUID)
	if err != nil {
		return nil, err
	}
	// is_prod is cached on the deployment; the project pointer decides.
	for _, d := range deployments {
		d.IsProd = d.UUID == project.ProdDeploymentID
	}
	return deployments, nil
}

// randHex returns n random bytes hex-encoded, for deployment subdomains.
func randHex(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%x", time.Now().UnixNano()&0xFFFFFF)
	}
	return hex.EncodeToString(b)
}
