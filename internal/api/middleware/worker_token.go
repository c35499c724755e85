package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/funcland/control-plane/internal/core/domain"
	"github.com/funcland/control-plane/internal/core/ports"
)

// WorkerToken authenticates build workers by deployment token. The token
// must carry worker usage; cmdline tokens are rejected even when otherwise
// valid. The owning token is injected into context for ownership checks.
func WorkerToken(tokens ports.TokenService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			secret, err := bearerSecret(c)
			if err != nil {
				return err
			}

			token, err := tokens.VerifySecret(c.Request().Context(), secret, domain.UsageWorker)
			if err != nil {
				return err
			}

			c.Set("worker_token", token)

			return next(c)
		}
	}
}
