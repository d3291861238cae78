package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/classroom-tasks/internal/application"
	"github.com/oksasatya/classroom-tasks/pkg/response"
	"github.com/oksasatya/classroom-tasks/pkg/validation"
)

type TaskHandler struct {
	Svc    *application.TaskService
	Logger *logrus.Logger
}

func NewTaskHandler(svc *application.TaskService, logger *logrus.Logger) *TaskHandler {
	return &TaskHandler{Svc: svc, Logger: logger}
}

type createTaskRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
	Progress    string `json:"progress" binding:"omitempty,progress"`
	DueDate     string `json:"dueDate" binding:"omitempty,date"`
}

// updateTaskRequest uses pointers so an absent field is left unchanged.
// "dueDate": "" clears the due date. Field rules are checked by the service
// after the task is found and ownership confirmed.
type updateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Progress    *string `json:"progress"`
	DueDate     *string `json:"dueDate"`
}

func (h *TaskHandler) Create(c *gin.Context) {
	req, ok := requester(c)
	if !ok {
		return
	}
	var body createTaskRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	t, err := h.Svc.Create(c.Request.Context(), req, application.CreateTaskInput{
		Title:       body.Title,
		Description: body.Description,
		Progress:    body.Progress,
		DueDate:     body.DueDate,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, toTaskDTO(t), "task created", nil)
}

func (h *TaskHandler) List(c *gin.Context) {
	req, ok := requester(c)
	if !ok {
		return
	}
	views, err := h.Svc.List(c.Request.Context(), req, c.Query("progress"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.List(c, toTaskViewDTOs(views), "tasks")
}

func (h *TaskHandler) Search(c *gin.Context) {
	req, ok := requester(c)
	if !ok {
		return
	}
	views, err := h.Svc.Search(c.Request.Context(), req, c.Query("q"), c.Query("progress"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.List(c, toTaskViewDTOs(views), "tasks")
}

func (h *TaskHandler) Update(c *gin.Context) {
	req, ok := requester(c)
	if !ok {
		return
	}
	var body updateTaskRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	t, err := h.Svc.Update(c.Request.Context(), req, c.Param("id"), application.UpdateTaskInput{
		Title:       body.Title,
		Description: body.Description,
		Progress:    body.Progress,
		DueDate:     body.DueDate,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toTaskDTO(t), "task updated", nil)
}

func (h *TaskHandler) Delete(c *gin.Context) {
	req, ok := requester(c)
	if !ok {
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), req, c.Param("id")); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true}, "task deleted", nil)
}
