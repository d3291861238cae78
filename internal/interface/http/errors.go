package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/classroom-tasks/internal/application"
	"github.com/oksasatya/classroom-tasks/internal/domain/policy"
	"github.com/oksasatya/classroom-tasks/internal/domain/repository"
	"github.com/oksasatya/classroom-tasks/pkg/response"
)

// writeError maps service errors onto the HTTP taxonomy. Anything unknown is a
// store failure: logged with the request id and reported as a bare 500.
func writeError(c *gin.Context, logger *logrus.Logger, err error) {
	var ve *application.ValidationError
	switch {
	case errors.As(err, &ve):
		response.Error[any](c, http.StatusBadRequest, "invalid payload", map[string]string{ve.Field: ve.Message})
	case errors.Is(err, policy.ErrInvalidProgress):
		response.Error[any](c, http.StatusBadRequest, "invalid progress filter",
			map[string]string{"progress": "must be one of: all, not-started, in-progress, completed"})
	case errors.Is(err, policy.ErrTeacherNotFound):
		response.Error[any](c, http.StatusBadRequest, "teacher not found", map[string]string{"teacherId": "teacher not found"})
	case errors.Is(err, policy.ErrNotATeacher):
		response.Error[any](c, http.StatusBadRequest, "referenced user is not a teacher", map[string]string{"teacherId": "is not a teacher"})
	case errors.Is(err, application.ErrInvalidCredentials):
		response.Error[any](c, http.StatusUnauthorized, "invalid credentials", nil)
	case errors.Is(err, policy.ErrNotAuthorized):
		response.Error[any](c, http.StatusForbidden, "not authorized", nil)
	case errors.Is(err, application.ErrTaskNotFound):
		response.Error[any](c, http.StatusNotFound, "task not found", nil)
	case errors.Is(err, application.ErrUserNotFound):
		response.Error[any](c, http.StatusNotFound, "user not found", nil)
	case errors.Is(err, repository.ErrEmailTaken):
		response.Error[any](c, http.StatusConflict, "email already registered", nil)
	case errors.Is(err, application.ErrSearchUnavailable):
		response.Error[any](c, http.StatusServiceUnavailable, "task search is not available", nil)
	default:
		if logger != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"request_id": c.GetString("request_id"),
				"path":       c.FullPath(),
			}).Error("request failed")
		}
		response.Error[any](c, http.StatusInternalServerError, "server error", nil)
	}
}
