package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/funcland/control-plane/internal/api/metrics"
	"github.com/funcland/control-plane/internal/core/domain"
	"github.com/funcland/control-plane/internal/core/ports"
)

// DeploymentHandler handles HTTP requests for deployment lifecycle and
// promotion operations.
type DeploymentHandler struct {
	deployments ports.DeploymentService
	promotions  ports.PromotionService
}

func NewDeploymentHandler(deployments ports.DeploymentService, promotions ports.PromotionService) *DeploymentHandler {
	return &DeploymentHandler{
		deployments: deployments,
		promotions:  promotions,
	}
}

// --- Request / Response types ---

type buildResultRequest struct {
	Status string `json:"status" validate:"required,oneof=success failed"`
}

type promoteRequest struct {
	ProjectUUID string `json:"project_uuid" validate:"required"`
}

// Create handles POST /v1/projects/:uuid/deployments. The new deployment
// starts in deploy_status deploying; the build collaborator reports the
// outcome later through Result.
func (h *DeploymentHandler) Create(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	deployment, err := h.deployments.Create(c.Request().Context(), user.ID, c.Param("uuid"))
	if err != nil {
		return err
	}
	metrics.DeploymentsCreatedTotal.Inc()

	return c.JSON(http.StatusCreated, deployment)
}

// List handles GET /v1/projects/:uuid/deployments.
func (h *DeploymentHandler) List(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	deployments, err := h.deployments.List(c.Request().Context(), user.ID, c.Param("uuid"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, deployments)
}

// Result handles POST /v1/deployments/:uuid/result. Authenticated by worker
// token, not user session: the build collaborator is the only caller. A
// second report for the same deployment fails with 422.
func (h *DeploymentHandler) Result(c echo.Context) error {
	var req buildResultRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	deployment, err := h.deployments.MarkBuildResult(c.Request().Context(), c.Param("uuid"), domain.DeployStatus(req.Status))
	if err != nil {
		return err
	}
	metrics.BuildResultsTotal.WithLabelValues(req.Status).Inc()

	return c.JSON(http.StatusOK, deployment)
}

// Disable handles POST /v1/deployments/:uuid/disable. Disabling the
// production deployment also clears the project's production pointer.
func (h *DeploymentHandler) Disable(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	deployment, err := h.deployments.Disable(c.Request().Context(), user.ID, c.Param("uuid"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, deployment)
}

// Enable handles POST /v1/deployments/:uuid/enable. Production status is
// not restored; the caller promotes again if desired.
func (h *DeploymentHandler) Enable(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	deployment, err := h.deployments.Enable(c.Request().Context(), user.ID, c.Param("uuid"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, deployment)
}

// Promote handles POST /v1/deployments/:uuid/promote. A losing racer gets
// 409 and may retry; promoting the current production deployment is a no-op.
func (h *DeploymentHandler) Promote(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req promoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	project, err := h.promotions.Promote(c.Request().Context(), user.ID, req.ProjectUUID, c.Param("uuid"))
	if err != nil {
		if errors.Is(err, domain.ErrConcurrentModification) {
			metrics.PromotionsTotal.WithLabelValues("conflict").Inc()
		} else {
			metrics.PromotionsTotal.WithLabelValues("rejected").Inc()
		}
		return err
	}
	metrics.PromotionsTotal.WithLabelValues("ok").Inc()

	return c.JSON(http.StatusOK, newProjectResponse(project))
}
