package router

import (
	"net/http"

	"github.com/anonto42/pulse-social/backend/internal/handlers"
	"github.com/anonto42/pulse-social/backend/internal/middleware"
	"github.com/anonto42/pulse-social/backend/internal/services"
	"github.com/anonto42/pulse-social/backend/internal/storage"
	"github.com/anonto42/pulse-social/backend/pkg/config"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

// Options carries everything the HTTP layer depends on
type Options struct {
	Config   *config.Config
	Logger   *logrus.Logger
	Services *services.Set
	Images   storage.ImageStore
	Checks   map[string]handlers.Check
}

// New builds the Echo instance with middleware and every route mounted
func New(opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handlers.NewHTTPErrorHandler(opts.Logger)
	e.Validator = handlers.NewValidator()

	SetupMiddleware(e, opts.Config, opts.Logger)
	SetupRoutes(e, opts)
	return e
}

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo, cfg *config.Config, logger *logrus.Logger) {
	e.Use(eMiddleware.RequestIDWithConfig(eMiddleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.RequestLoggerWithConfig(eMiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v eMiddleware.RequestLoggerValues) error {
			entry := logger.WithFields(logrus.Fields{
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"request_id": v.RequestID,
			})
			if v.Error != nil && v.Status >= http.StatusInternalServerError {
				entry.WithError(v.Error).Error("request")
				return nil
			}
			entry.Debug("request")
			return nil
		},
	}))
	e.Use(eMiddleware.CORSWithConfig(cfg.CORSConfig()))
	e.Use(eMiddleware.BodyLimit(cfg.BodyLimit()))
	logger.Debug("global middleware configured")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, opts Options) {
	cfg, svc := opts.Config, opts.Services

	health := handlers.NewHealthHandler(cfg.Telemetry.ServiceName, opts.Checks)
	e.GET("/health", health.HealthCheck)

	if cfg.Storage.Driver == "local" {
		e.Static("/uploads", cfg.Storage.LocalDir)
	}

	requireAuth := middleware.JWTAuthMiddleware(svc.Auth)
	postImage := middleware.ImageUpload("image", storage.PostFolder, opts.Images, cfg.Upload.MaxBytes)
	profilePicture := middleware.ImageUpload("profilePicture", storage.ProfileFolder, opts.Images, cfg.Upload.MaxBytes)

	api := e.Group("/api")

	authGroup := api.Group("/auth")
	if cfg.RateLimit.AuthRPS > 0 {
		authGroup.Use(authRateLimiter(cfg))
	}
	handlers.NewAuthHandler(svc.Auth).RegisterAuthRoutes(authGroup, requireAuth, profilePicture)

	postGroup := api.Group("/post")
	handlers.NewFeedHandler(svc.Feeds).RegisterFeedRoutes(postGroup)
	handlers.NewPostHandler(svc.Posts).RegisterPostRoutes(postGroup, requireAuth, postImage)

	userGroup := api.Group("/user")
	handlers.NewUserHandler(svc.Graph, svc.Feeds).RegisterProfileRoutes(userGroup, requireAuth, profilePicture)
	handlers.NewFollowHandler(svc.Graph).RegisterFollowRoutes(userGroup, requireAuth)

	notificationGroup := api.Group("/notifications", requireAuth)
	handlers.NewNotificationHandler(svc.Notifications).RegisterNotificationRoutes(notificationGroup)

	opts.Logger.WithField("routes", len(e.Routes())).Info("routes configured")
}

func authRateLimiter(cfg *config.Config) echo.MiddlewareFunc {
	return eMiddleware.RateLimiterWithConfig(eMiddleware.RateLimiterConfig{
		Store: cfg.AuthRateLimiterStore(),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusForbidden, handlers.ErrorResponse{Message: "Unable to identify client"})
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			c.Response().Header().Set("Retry-After", "1")
			return c.JSON(http.StatusTooManyRequests, handlers.ErrorResponse{Message: "Too many requests, please try again later"})
		},
	})
}
