package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anonto42/pulse-social/backend/internal/apperror"
	"github.com/anonto42/pulse-social/backend/internal/models"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthenticator map[string]*models.JwtCustomClaims

func (f fakeAuthenticator) Authenticate(_ context.Context, token string) (*models.JwtCustomClaims, error) {
	if claims, ok := f[token]; ok {
		return claims, nil
	}
	return nil, apperror.Auth("Invalid token")
}

func TestJWTAuthMiddleware(t *testing.T) {
	authn := fakeAuthenticator{"good": {UserID: "65a000000000000000000001", Username: "alice"}}

	tests := []struct {
		name    string
		header  string
		message string
	}{
		{"missing", "", "No token, authorization denied"},
		{"wrong scheme", "Basic good", "Invalid Authorization header format"},
		{"extra parts", "Bearer good extra", "Invalid Authorization header format"},
		{"bad token", "Bearer bad", "Invalid token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			c := e.NewContext(req, httptest.NewRecorder())

			called := false
			err := JWTAuthMiddleware(authn)(func(echo.Context) error {
				called = true
				return nil
			})(c)

			assert.False(t, called)
			var appErr *apperror.Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, apperror.KindAuth, appErr.Kind)
			assert.Equal(t, tt.message, appErr.Message)
		})
	}

	t.Run("valid", func(t *testing.T) {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(echo.HeaderAuthorization, "bearer good")
		c := e.NewContext(req, httptest.NewRecorder())

		err := JWTAuthMiddleware(authn)(func(c echo.Context) error {
			claims, ok := Claims(c)
			require.True(t, ok)
			assert.Equal(t, "alice", claims.Username)
			return nil
		})(c)
		assert.NoError(t, err)
	})
}
