package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/funcland/control-plane/internal/core/domain"
	"github.com/funcland/control-plane/internal/core/ports"
)

// AdminHandler serves platform-wide aggregates. All routes require the
// admin role; the RBAC middleware enforces it.
type AdminHandler struct {
	service ports.AdminService
}

func NewAdminHandler(service ports.AdminService) *AdminHandler {
	return &AdminHandler{service: service}
}

type statsResponse struct {
	Users       int64                `json:"users"`
	Projects    int64                `json:"projects"`
	Deployments map[string]int64     `json:"deployments"`
	RecentAudit []*domain.AuditEvent `json:"recent_audit"`
}

// Stats handles GET /v1/admin/stats.
func (h *AdminHandler) Stats(c echo.Context) error {
	stats, err := h.service.Stats(c.Request().Context())
	if err != nil {
		return err
	}

	deployments := make(map[string]int64, len(stats.Deployments))
	for status, n := range stats.Deployments {
		deployments[string(status)] = n
	}

	return c.JSON(http.StatusOK, statsResponse{
		Users:       stats.Users,
		Projects:    stats.Projects,
		Deployments: deployments,
		RecentAudit: stats.RecentAudit,
	})
}
