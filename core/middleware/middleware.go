package middleware

import (
	"net/http"
	"strings"

	"review-scheduler/core/config"
	"review-scheduler/core/constants"
	"review-scheduler/core/controller"
	"review-scheduler/core/errors"
	"review-scheduler/core/utils"

	"github.com/labstack/echo/v4"
)

// Middleware bundles the request guards shared by all routers
type Middleware struct {
	cfg *config.Config
}

func New(cfg *config.Config) *Middleware {
	return &Middleware{cfg: cfg}
}

// AuthMiddleware validates the Bearer token and stores its claims in
// the request context under constants.ContextTokenData.
func (m *Middleware) AuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header == "" {
				return controller.NewErrorResponse(http.StatusUnauthorized, errors.ErrMissingAuthorizationHeader, "Missing Authorization header")
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return controller.NewErrorResponse(http.StatusUnauthorized, errors.ErrInvalidTokenFormat, "Authorization header must be a Bearer token")
			}

			claims, err := utils.ParseToken(parts[1], m.cfg.Auth.JWTSecret)
			if err != nil {
				return controller.NewErrorResponse(http.StatusUnauthorized, errors.ErrUnauthorized, "Invalid or expired token")
			}

			c.Set(constants.ContextTokenData, claims)
			return next(c)
		}
	}
}

// RequireRole rejects requests whose token role is not in the allow list.
// It must run after AuthMiddleware.
func (m *Middleware) RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenData := c.Get(constants.ContextTokenData)
			claims, ok := tokenData.(*utils.TokenClaims)
			if !ok || claims == nil {
				return controller.NewErrorResponse(http.StatusUnauthorized, errors.ErrUnauthorized, "User not authenticated")
			}

			for _, role := range roles {
				if claims.Role == role {
					return next(c)
				}
			}
			return controller.NewErrorResponse(http.StatusForbidden, errors.ErrForbidden, "Insufficient role for this operation")
		}
	}
}
