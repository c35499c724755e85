package ports

import (
	"context"

	"github.com/funcland/control-plane/internal/core/domain"
)

// PlatformStats are the platform-wide aggregates exposed to admins.
type PlatformStats struct {
	Users       int64
	Projects    int64
	Deployments map[domain.DeployStatus]int64
	RecentAudit []*domain.AuditEvent
}

// AdminService serves read-only platform aggregates; it never mutates state.
type AdminService interface {
	Stats(ctx context.Context) (*PlatformStats, error)
}
