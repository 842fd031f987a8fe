package handlers

import (
	"net/http"

	"github.com/anonto42/pulse-social/backend/internal/apperror"
	"github.com/anonto42/pulse-social/backend/internal/middleware"
	"github.com/anonto42/pulse-social/backend/internal/models"
	"github.com/anonto42/pulse-social/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	auth *services.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group, requireAuth, profileUpload echo.MiddlewareFunc) {
	g.POST("/signup", h.Signup, profileUpload)
	g.POST("/login", h.Login)
	g.POST("/firebase-login", h.FirebaseLogin)
	g.POST("/logout", h.Logout, requireAuth)
}

// Signup handles local user registration with an optional profile picture
func (h *AuthHandler) Signup(c echo.Context) error {
	var req models.SignupRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	resp, err := h.auth.Signup(c.Request().Context(), req, middleware.UploadedImageURL(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// Login handles local user authentication with email and password
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	resp, err := h.auth.Login(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// FirebaseLogin verifies a Firebase ID token and issues a local token
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	var req models.FirebaseLoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	resp, err := h.auth.FirebaseLogin(c.Request().Context(), req.IDToken)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// Logout revokes the presented token
func (h *AuthHandler) Logout(c echo.Context) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return apperror.Auth("User not authenticated")
	}
	if err := h.auth.Logout(c.Request().Context(), claims); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Logged out successfully"})
}

func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return apperror.Validation("Invalid request payload")
	}
	return c.Validate(req)
}

// getUserIDFromContext returns the id of the authenticated user
func getUserIDFromContext(c echo.Context) (string, error) {
	claims, ok := middleware.Claims(c)
	if !ok {
		return "", apperror.Auth("User not authenticated")
	}
	return claims.UserID, nil
}
