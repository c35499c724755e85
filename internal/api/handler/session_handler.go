package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/funcland/control-plane/internal/api/metrics"
	"github.com/funcland/control-plane/internal/core/domain"
	"github.com/funcland/control-plane/internal/core/ports"
)

// SessionHandler handles HTTP requests for session lifecycle operations.
type SessionHandler struct {
	service ports.SessionService
}

func NewSessionHandler(service ports.SessionService) *SessionHandler {
	return &SessionHandler{service: service}
}

// --- Request / Response types ---

type signInRequest struct {
	Provider   string `json:"provider" validate:"required"`
	Subject    string `json:"subject"`
	Email      string `json:"email" validate:"omitempty,email"`
	Name       string `json:"name"`
	AvatarURL  string `json:"avatar_url"`
	Credential string `json:"credential" validate:"required"`
}

type sessionResponse struct {
	UUID      string       `json:"uuid"`
	User      *domain.User `json:"user"`
	ExpiresAt string       `json:"expires_at,omitempty"`
	ActiveAt  string       `json:"active_at"`
}

type signInResponse struct {
	sessionResponse
	// Secret is handed out exactly once, here.
	Secret string `json:"secret"`
}

// Create handles POST /v1/session, the sign-in callback. Identity claims
// are validated against the external provider before any token is minted,
// so this route carries no session middleware.
func (h *SessionHandler) Create(c echo.Context) error {
	var req signInRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.service.Issue(c.Request().Context(), ports.IdentityClaims{
		Provider:   req.Provider,
		Subject:    req.Subject,
		Email:      req.Email,
		Name:       req.Name,
		AvatarURL:  req.AvatarURL,
		Credential: req.Credential,
	})
	if err != nil {
		metrics.SessionsIssuedTotal.WithLabelValues("rejected").Inc()
		return err
	}
	metrics.SessionsIssuedTotal.WithLabelValues("issued").Inc()

	return c.JSON(http.StatusCreated, signInResponse{
		sessionResponse: newSessionResponse(result.User, result.Token),
		Secret:          result.Secret,
	})
}

// Get handles GET /v1/session. The Session middleware has already authorized
// the secret; this returns the resolved user and session metadata.
func (h *SessionHandler) Get(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	token, _ := c.Get("session_token").(*domain.SessionToken)
	return c.JSON(http.StatusOK, newSessionResponse(user, token))
}

// Delete handles DELETE /v1/session, sign-out. Revoking an already revoked
// secret is a no-op.
func (h *SessionHandler) Delete(c echo.Context) error {
	secret, _ := c.Get("session_secret").(string)
	if secret == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing session secret")
	}

	if err := h.service.Revoke(c.Request().Context(), secret); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

func newSessionResponse(user *domain.User, token *domain.SessionToken) sessionResponse {
	resp := sessionResponse{User: user}
	if token != nil {
		resp.UUID = token.UUID
		resp.ActiveAt = token.ActiveAt.UTC().Format(time.RFC3339)
		if !token.ExpiresAt.IsZero() {
			resp.ExpiresAt = token.ExpiresAt.UTC().Format(time.RFC3339)
		}
	}
	return resp
}
