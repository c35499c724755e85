package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/funcland/control-plane/internal/core/domain"
)

// ctxUser extracts the authenticated user injected by the Session middleware
// and performs a fast-fail check before any service call: a missing or
// incomplete user means the middleware did not run on this route.
func ctxUser(c echo.Context) (*domain.User, error) {
	user, _ := c.Get("user").(*domain.User)
	if user == nil || user.ID == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authenticated user")
	}
	return user, nil
}
