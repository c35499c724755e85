package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/funcland/control-plane/internal/api/metrics"
	"github.com/funcland/control-plane/internal/core/ports"
)

// Session authorizes the bearer secret against the session service and
// injects the resolved user into context. Rejections surface as domain
// errors so the central error handler maps them to 401.
func Session(sessions ports.SessionService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			secret, err := bearerSecret(c)
			if err != nil {
				metrics.SessionAuthorizationsTotal.WithLabelValues("rejected").Inc()
				return err
			}

			result, err := sessions.Authorize(c.Request().Context(), secret)
			if err != nil {
				metrics.SessionAuthorizationsTotal.WithLabelValues("rejected").Inc()
				return err
			}

			if result.Verified {
				metrics.SessionAuthorizationsTotal.WithLabelValues("verified").Inc()
			} else {
				metrics.SessionAuthorizationsTotal.WithLabelValues("fast_path").Inc()
			}

			c.Set("user", result.User)
			c.Set("role", result.User.Role)
			c.Set("session_token", result.Token)
			c.Set("session_secret", secret)

			return next(c)
		}
	}
}

func bearerSecret(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
	}

	return parts[1], nil
}
