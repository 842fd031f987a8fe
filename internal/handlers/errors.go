package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/anonto42/pulse-social/backend/internal/apperror"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// NewHTTPErrorHandler maps handler errors to status codes and JSON bodies.
// Unexpected errors are logged and answered with a generic message.
func NewHTTPErrorHandler(logger *logrus.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := http.StatusInternalServerError, ErrorResponse{Message: "Server error"}

		var appErr *apperror.Error
		var httpErr *echo.HTTPError
		switch {
		case errors.As(err, &appErr):
			status = apperror.Status(appErr.Kind)
			if appErr.Kind != apperror.KindUnexpected {
				body = ErrorResponse{Message: appErr.Message, Error: appErr.Detail}
			}
		case errors.As(err, &httpErr):
			status = httpErr.Code
			if status < http.StatusInternalServerError {
				body = ErrorResponse{Message: httpMessage(httpErr)}
			}
		}

		if status >= http.StatusInternalServerError {
			logger.WithFields(logrus.Fields{
				"method":     c.Request().Method,
				"uri":        c.Request().RequestURI,
				"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
				"error":      err.Error(),
			}).Error("request failed")
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			logger.WithError(err).Warn("failed to write error response")
		}
	}
}

func httpMessage(he *echo.HTTPError) string {
	if msg, ok := he.Message.(string); ok {
		return msg
	}
	if he.Message == nil {
		return http.StatusText(he.Code)
	}
	return fmt.Sprint(he.Message)
}
