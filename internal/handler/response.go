package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/ssrocks/rishop-backend/internal/logging"
	"github.com/ssrocks/rishop-backend/internal/model"
	"github.com/ssrocks/rishop-backend/internal/service"
	"go.uber.org/zap"
)

// UserContextKey is where the auth middleware stores the *model.User.
const UserContextKey = "user"

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error errorPayload `json:"error"`
}

func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Error: errorPayload{
			Code:    code,
			Message: message,
		},
	}
}

// writeError renders service rejections with their own code and hides everything else.
func writeError(c echo.Context, logger *zap.Logger, err error) error {
	var svcErr *service.Error
	if errors.As(err, &svcErr) {
		return c.JSON(statusFor(svcErr.Kind), NewErrorResponse(svcErr.Code, svcErr.Message))
	}
	logging.FromContext(c.Request().Context(), logger).Error("request failed",
		zap.String("method", c.Request().Method),
		zap.String("path", c.Path()),
		zap.Error(err))
	return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "something went wrong"))
}

func statusFor(kind error) int {
	switch kind {
	case service.ErrNotFound:
		return http.StatusNotFound
	case service.ErrForbidden:
		return http.StatusForbidden
	case service.ErrPolicyViolation:
		return http.StatusConflict
	case service.ErrValidation:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func currentUser(c echo.Context) (*model.User, bool) {
	u, ok := c.Get(UserContextKey).(*model.User)
	return u, ok && u != nil
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing user"))
}

func parseID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", message))
}
