package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/funcland/control-plane/internal/core/domain"
	"github.com/funcland/control-plane/internal/core/ports"
)

// ProjectHandler handles HTTP requests for project CRUD.
type ProjectHandler struct {
	service ports.ProjectService
}

func NewProjectHandler(service ports.ProjectService) *ProjectHandler {
	return &ProjectHandler{service: service}
}

// --- Request / Response types ---

type createProjectRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=63"`
	Language string `json:"language" validate:"required,oneof=javascript typescript"`
}

type renameProjectRequest struct {
	Name string `json:"name" validate:"required,min=1,max=63"`
}

type projectResponse struct {
	*domain.Project
	Links projectLinks `json:"_links"`
}

type projectLinks struct {
	Self        string `json:"self"`
	Deployments string `json:"deployments"`
}

func newProjectResponse(p *domain.Project) projectResponse {
	return projectResponse{
		Project: p,
		Links: projectLinks{
			Self:        "/v1/projects/" + p.Name,
			Deployments: "/v1/projects/" + p.UUID + "/deployments",
		},
	}
}

// Create handles POST /v1/projects.
func (h *ProjectHandler) Create(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req createProjectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	project, err := h.service.Create(c.Request().Context(), ports.CreateProjectInput{
		Name:     req.Name,
		Language: req.Language,
		OwnerID:  user.ID,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, newProjectResponse(project))
}

// Get handles GET /v1/projects/:name.
func (h *ProjectHandler) Get(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	project, err := h.service.Get(c.Request().Context(), user.ID, c.Param("name"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, newProjectResponse(project))
}

// List handles GET /v1/projects.
func (h *ProjectHandler) List(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	projects, err := h.service.List(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}

	resp := make([]projectResponse, 0, len(projects))
	for _, p := range projects {
		resp = append(resp, newProjectResponse(p))
	}
	return c.JSON(http.StatusOK, resp)
}

// Rename handles PUT /v1/projects/:uuid/name. A rename racing an in-flight
// promotion surfaces 409; the caller retries.
func (h *ProjectHandler) Rename(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req renameProjectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	project, err := h.service.Rename(c.Request().Context(), user.ID, c.Param("uuid"), req.Name)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, newProjectResponse(project))
}

// Remove handles DELETE /v1/projects/:uuid. Deployments are removed with
// the project.
func (h *ProjectHandler) Remove(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	if err := h.service.Remove(c.Request().Context(), user.ID, c.Param("uuid")); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}
