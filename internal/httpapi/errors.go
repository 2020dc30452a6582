package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/nhle/taskboard/internal/apperr"
)

const (
	routeNotFoundMessage    = "Route not found"
	methodNotAllowedMessage = "Method not allowed"
	invalidBodyMessage      = "invalid request body"
)

// errInvalidBody marks a request body that is not the expected JSON.
var errInvalidBody = apperr.Validation(invalidBodyMessage)

// handleError is the single place that turns errors into responses.
// Application errors keep their kind's status and message; echo's own
// errors keep their status; anything else is logged and reported as a
// generic server error.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, body := s.errorResponse(err, c)

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(status)
	} else {
		writeErr = c.JSON(status, body)
	}
	if writeErr != nil {
		s.logger.Error("writing error response", zap.Error(writeErr))
	}
}

func (s *Server) errorResponse(err error, c echo.Context) (int, any) {
	var appErr *apperr.Error
	if errors.As(err, &appErr) && appErr.Kind != apperr.KindInternal {
		if details := apperr.PublicDetails(err); details != nil {
			return appErr.Kind.StatusCode(), ErrorsResponse{Errors: details}
		}
		return appErr.Kind.StatusCode(), ErrorResponse{Error: appErr.Message}
	}

	var he *echo.HTTPError
	if errors.As(err, &he) && he.Code < http.StatusInternalServerError {
		switch he.Code {
		case http.StatusNotFound:
			return he.Code, ErrorResponse{Error: routeNotFoundMessage}
		case http.StatusMethodNotAllowed:
			return he.Code, ErrorResponse{Error: methodNotAllowedMessage}
		}
		return he.Code, ErrorResponse{Error: httpErrorMessage(he)}
	}

	status := http.StatusInternalServerError
	if he != nil {
		status = he.Code
	}
	s.logger.Error("request failed",
		zap.String("method", c.Request().Method),
		zap.String("uri", c.Request().RequestURI),
		zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
		zap.Error(err),
	)
	if status == http.StatusInternalServerError {
		return status, ErrorResponse{Error: apperr.PublicMessage(err)}
	}
	return status, ErrorResponse{Error: http.StatusText(status)}
}

func httpErrorMessage(he *echo.HTTPError) string {
	if msg, ok := he.Message.(string); ok {
		return msg
	}
	return fmt.Sprint(he.Message)
}
