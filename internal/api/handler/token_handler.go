package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/funcland/control-plane/internal/core/domain"
	"github.com/funcland/control-plane/internal/core/ports"
)

// TokenHandler handles HTTP requests for deployment-token management.
type TokenHandler struct {
	service ports.TokenService
}

func NewTokenHandler(service ports.TokenService) *TokenHandler {
	return &TokenHandler{service: service}
}

// --- Request / Response types ---

type createTokenRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=64"`
	Usage string `json:"usage" validate:"required,oneof=cmdline worker"`
	// ExpireSeconds zero means no expiry.
	ExpireSeconds int64 `json:"expire_seconds" validate:"gte=0"`
}

type createTokenResponse struct {
	*domain.DeploymentToken
	// Secret is retrievable exactly once, in this response.
	Secret string `json:"secret"`
}

// Create handles POST /v1/tokens. The plaintext secret appears only in the
// creation response; later reads expose metadata only.
func (h *TokenHandler) Create(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req createTokenRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.service.Create(c.Request().Context(), ports.CreateTokenInput{
		Name:          req.Name,
		OwnerID:       user.ID,
		Usage:         domain.TokenUsage(req.Usage),
		ExpireSeconds: req.ExpireSeconds,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, createTokenResponse{
		DeploymentToken: result.Token,
		Secret:          result.Secret,
	})
}

// List handles GET /v1/tokens.
func (h *TokenHandler) List(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	tokens, err := h.service.List(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, tokens)
}

// Remove handles DELETE /v1/tokens/:uuid.
func (h *TokenHandler) Remove(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	if err := h.service.Remove(c.Request().Context(), user.ID, c.Param("uuid")); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}
