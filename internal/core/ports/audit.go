package ports

import (
	"context"

	"github.com/funcland/control-plane/internal/core/domain"
)

// AuditRepository persists the admin audit trail.
type AuditRepository interface {
	Insert(ctx context.Context, e *domain.AuditEvent) error
	ListRecent(ctx context.Context, limit int64) ([]*domain.AuditEvent, error)
}

// AuditRecorder is what services see: fire-and-forget recording of a
// successful mutation. Implementations must not block the request path.
type AuditRecorder interface {
	Record(e domain.AuditEvent)
}
