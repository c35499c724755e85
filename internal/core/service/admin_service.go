package service

import (
	"context"
	"fmt"

	"github.com/funcland/control-plane/internal/core/ports"
)

const recentAuditLimit = 50

// AdminService aggregates platform-wide counts for the admin overview.
type AdminService struct {
	users       ports.UserRepository
	projects    ports.ProjectRepository
	deployments ports.DeploymentRepository
	audit       ports.AuditRepository
}

func NewAdminService(
	users ports.UserRepository,
	projects ports.ProjectRepository,
	deployments ports.DeploymentRepository,
	audit ports.AuditRepository,
) *AdminService {
	return &AdminService{users: users, projects: projects, deployments: deployments, audit: audit}
}

func (s *AdminService) Stats(ctx context.Context) (*ports.PlatformStats, error) {
	users, err := s.users.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	projects, err := s.projects.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count projects: %w", err)
	}
	deployments, err := s.deployments.CountByDeployStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count deployments: %w", err)
	}
	recent, err := s.audit.ListRecent(ctx, recentAuditLimit)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	return &ports.PlatformStats{
		Users:       users,
		Projects:    projects,
		Deployments: deployments,
		RecentAudit: recent,
	}, nil
}
