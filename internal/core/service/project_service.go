package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/funcland/control-plane/internal/core/domain"
	"github.com/funcland/control-plane/internal/core/ports"
)

// ProjectService covers project CRUD. Rename and Remove are guarded by the
// same production-pointer check the promotion coordinator uses, so either
// loses cleanly with ErrConcurrentModification when racing a promotion.
type ProjectService struct {
	projects    ports.ProjectRepository
	deployments ports.DeploymentRepository
	audit       ports.AuditRecorder
	// subdomain is the platform suffix under which project domains live.
	subdomain string
	now       func() time.Time
	logger    zerolog.Logger
}

func NewProjectService(
	projects ports.ProjectRepository,
	deployments ports.DeploymentRepository,
	audit ports.AuditRecorder,
	subdomain string,
	logger zerolog.Logger,
) *ProjectService {
	return &ProjectService{
		projects:    projects,
		deployments: deployments,
		audit:       audit,
		subdomain:   subdomain,
		now:         time.Now,
		logger:      logger,
	}
}

// Create registers a pending project. Names must be DNS-label-safe and
// unique per owner.
func (s *ProjectService) Create(ctx context.Context, in ports.CreateProjectInput) (*domain.Project, error) {
	if !domain.ValidProjectName(in.Name) {
		return nil, fmt.Errorf("invalid project name %q", in.Name)
	}
	if _, err := s.projects.FindByName(ctx, in.OwnerID, in.Name); err == nil {
		return nil, domain.ErrProjectExists
	} else if !errors.Is(err, domain.ErrProjectNotFound) {
		return nil, err
	}

	now := s.now().UTC()
	project := &domain.Project{
		UUID:      uuid.NewString(),
		Name:      in.Name,
		Language:  in.Language,
		Status:    domain.ProjectPending,
		OwnerID:   in.OwnerID,
		Subdomain: s.subdomain,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, err
	}

	s.logger.Info().Str("project", project.UUID).Str("name", project.Name).Msg("project created")
	s.audit.Record(domain.AuditEvent{
		ActorID:    in.OwnerID,
		Action:     "project.create",
		EntityKind: "project",
		EntityID:   project.UUID,
		Detail:     project.Name,
		Timestamp:  now,
	})
	return project, nil
}

func (s *ProjectService) Get(ctx context.Context, ownerID, name string) (*domain.Project, error) {
	return s.projects.FindByName(ctx, ownerID, name)
}

func (s *ProjectService) List(ctx context.Context, ownerID string) ([]*domain.Project, error) {
	return s.projects.List(ctx, ownerID)
}

// Rename changes the project name. The repository write re-checks the
// production pointer read here, so a promotion landing in between surfaces
// as ErrConcurrentModification and the caller retries.
func (s *ProjectService) Rename(ctx context.Context, ownerID, projectUUID, name string) (*domain.Project, error) {
	if !domain.ValidProjectName(name) {
		return nil, fmt.Errorf("invalid project name %q", name)
	}
	project, err := s.projects.FindByUUID(ctx, projectUUID)
	if err != nil {
		return nil, err
	}
	if project.OwnerID != ownerID {
		return nil, domain.ErrForbidden
	}
	if project.Name == name {
		return project, nil
	}
	if _, err := s.projects.FindByName(ctx, ownerID, name); err == nil {
		return nil, domain.ErrProjectExists
	} else if !errors.Is(err, domain.ErrProjectNotFound) {
		return nil, err
	}

	if err := s.projects.Rename(ctx, project.UUID, project.ProdDeploymentID, name); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	project.Name = name
	project.UpdatedAt = now

	s.logger.Info().Str("project", project.UUID).Str("name", name).Msg("project renamed")
	s.audit.Record(domain.AuditEvent{
		ActorID:    ownerID,
		Action:     "project.rename",
		EntityKind: "project",
		EntityID:   project.UUID,
		Detail:     name,
		Timestamp:  now,
	})
	return project, nil
}

// Remove deletes the project and cascades removal of its deployments. Like
// Rename it loses to an in-flight promotion with ErrConcurrentModification.
func (s *ProjectService) Remove(ctx context.Context, ownerID, projectUUID string) error {
	project, err := s.projects.FindByUUID(ctx, projectUUID)
	if err != nil {
		return err
	}
	if project.OwnerID != ownerID {
		return domain.ErrForbidden
	}

	if err := s.projects.Delete(ctx, project.UUID, project.ProdDeploymentID); err != nil {
		return err
	}
	if err := s.deployments.DeleteByProject(ctx, project.UUID); err != nil {
		s.logger.Error().Err(err).Str("project", project.UUID).Msg("failed to cascade deployment removal")
		return err
	}

	now := s.now().UTC()
	s.logger.Info().Str("project", project.UUID).Str("name", project.Name).Msg("project removed")
	s.audit.Record(domain.AuditEvent{
		ActorID:    ownerID,
		Action:     "project.remove",
		EntityKind: "project",
		EntityID:   project.UUID,
		Detail:     project.Name,
		Timestamp:  now,
	})
	return nil
}
