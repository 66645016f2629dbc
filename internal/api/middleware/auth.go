package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/taskforge/task-system/internal/api/metrics"
	"github.com/taskforge/task-system/internal/core/domain"
	"github.com/taskforge/task-system/internal/core/ports"
	"github.com/taskforge/task-system/internal/pkg/token"
)

// Auth is the access guard in front of every protected route. It extracts the
// bearer token, verifies it, resolves the subject to a live account, and
// injects the identity into the request context. Every failure short-circuits
// with 401; the internal variants (missing, invalid, expired, stale) stay
// distinguishable through metrics even though the response is uniform.
func Auth(codec *token.Codec, users ports.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				metrics.AuthDenialsTotal.WithLabelValues("missing_token").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "authorization token required")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				metrics.AuthDenialsTotal.WithLabelValues("missing_token").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "authorization token required")
			}

			claims, err := codec.Verify(parts[1])
			if err != nil {
				reason := "invalid_token"
				if errors.Is(err, token.ErrExpired) {
					reason = "expired_token"
				}
				metrics.AuthDenialsTotal.WithLabelValues(reason).Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}

			user, err := users.FindByID(c.Request().Context(), claims.Subject)
			if err != nil {
				if errors.Is(err, domain.ErrUserNotFound) {
					// Valid token for an account that no longer exists.
					metrics.AuthDenialsTotal.WithLabelValues("stale_identity").Inc()
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
				}
				return err
			}

			c.Set("user_id", user.ID)
			c.Set("user_email", user.Email)
			c.Set("user_name", user.Name)

			return next(c)
		}
	}
}
