package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/classroom-tasks/internal/application"
	"github.com/oksasatya/classroom-tasks/internal/domain/policy"
	"github.com/oksasatya/classroom-tasks/internal/interface/middleware"
	"github.com/oksasatya/classroom-tasks/pkg/response"
)

type UserHandler struct {
	Svc    *application.UserService
	Logger *logrus.Logger
}

func NewUserHandler(svc *application.UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

// requester returns the caller loaded by middleware.Auth, answering 401 when
// the route was mounted without it.
func requester(c *gin.Context) (policy.Requester, bool) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error[any](c, http.StatusUnauthorized, "not authenticated", nil)
		return policy.Requester{}, false
	}
	return policy.RequesterOf(u), true
}

func (h *UserHandler) Teachers(c *gin.Context) {
	teachers, err := h.Svc.ListTeachers(c.Request.Context())
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	out := make([]teacherDTO, 0, len(teachers))
	for _, t := range teachers {
		out = append(out, teacherDTO{ID: t.ID, Email: t.Email})
	}
	response.List(c, out, "teachers")
}

func (h *UserHandler) MyStudents(c *gin.Context) {
	req, ok := requester(c)
	if !ok {
		return
	}
	students, err := h.Svc.ListMyStudents(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.List(c, toUserDTOs(students), "students")
}

func (h *UserHandler) Get(c *gin.Context) {
	u, err := h.Svc.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toUserDTO(u), "user", nil)
}
