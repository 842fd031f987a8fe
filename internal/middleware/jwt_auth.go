package middleware

import (
	"context"
	"strings"

	"github.com/anonto42/pulse-social/backend/internal/apperror"
	"github.com/anonto42/pulse-social/backend/internal/models"
	"github.com/labstack/echo/v4"
)

const userContextKey = "user"

// Authenticator verifies a bearer token. *services.AuthService implements it.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.JwtCustomClaims, error)
}

// JWTAuthMiddleware checks for a valid, unrevoked bearer token and stores
// its claims in the context.
func JWTAuthMiddleware(authn Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return apperror.Auth("No token, authorization denied")
			}

			// Expecting "Bearer <token>"
			parts := strings.Fields(authHeader)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return apperror.Auth("Invalid Authorization header format")
			}

			claims, err := authn.Authenticate(c.Request().Context(), parts[1])
			if err != nil {
				return err
			}

			c.Set(userContextKey, claims)
			return next(c)
		}
	}
}

// Claims returns the claims stored by JWTAuthMiddleware
func Claims(c echo.Context) (*models.JwtCustomClaims, bool) {
	claims, ok := c.Get(userContextKey).(*models.JwtCustomClaims)
	return claims, ok && claims != nil
}
