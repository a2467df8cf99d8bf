package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// JSONErrorHandler returns an echo error handler that writes every error,
// including 404s and middleware rejections, as an ErrorResponse.
func JSONErrorHandler(logger *logrus.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			resp := ErrorResponse{Error: http.StatusText(he.Code), Code: he.Code}
			if msg, ok := he.Message.(string); ok && msg != "" {
				resp.Error = msg
			}
			_ = c.JSON(he.Code, resp)
			return
		}

		logger.WithError(err).WithFields(logrus.Fields{
			"method": c.Request().Method,
			"path":   c.Path(),
		}).Error("unhandled handler error")
		_ = c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "internal server error",
			Code:  http.StatusInternalServerError,
		})
	}
}
