package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/users-api/internal/application"
	"github.com/oksasatya/users-api/pkg/helpers"
	"github.com/oksasatya/users-api/pkg/response"
	"github.com/oksasatya/users-api/pkg/validation"
)

const validationDetail = "Validation error"

func validationError(c *gin.Context, err error) {
	response.Error(c, http.StatusUnprocessableEntity, validationDetail, validation.ToDetails(err))
}

// writeError maps application errors onto status codes. Unknown errors are
// logged and reported as 500 without leaking their text.
func writeError(c *gin.Context, logger *logrus.Logger, err error) {
	switch {
	case errors.Is(err, application.ErrEmailTaken):
		response.Error(c, http.StatusBadRequest, "Email already registered", nil)
	case errors.Is(err, application.ErrUsernameTaken):
		response.Error(c, http.StatusBadRequest, "Username already taken", nil)
	case errors.Is(err, application.ErrInvalidCredentials):
		c.Header("WWW-Authenticate", "Bearer")
		response.Error(c, http.StatusUnauthorized, "Incorrect email or password", nil)
	case errors.Is(err, application.ErrUnauthorized):
		c.Header("WWW-Authenticate", "Bearer")
		response.Error(c, http.StatusUnauthorized, "Could not validate credentials", nil)
	case errors.Is(err, application.ErrUserNotFound):
		response.Error(c, http.StatusNotFound, "User not found", nil)
	case errors.Is(err, application.ErrInvalidPagination):
		response.Error(c, http.StatusUnprocessableEntity, validationDetail, nil)
	case errors.Is(err, helpers.ErrPasswordTooLong):
		response.Error(c, http.StatusUnprocessableEntity, validationDetail, map[string]string{
			"password": "must be between 1 and " + strconv.Itoa(helpers.MaxPasswordBytes) + " bytes",
		})
	default:
		helpers.LogError(logger, "request failed", err, logrus.Fields{
			"path":       c.FullPath(),
			"request_id": c.GetString("request_id"),
		})
		response.Error(c, http.StatusInternalServerError, "Internal server error", nil)
	}
}
