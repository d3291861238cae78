package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/classroom-tasks/internal/interface/http"
)

// TaskModule wires task CRUD and search; every route requires a bearer token.
type TaskModule struct {
	Handler *handlers.TaskHandler
	Auth    gin.HandlerFunc
}

func NewTaskModule(h *handlers.TaskHandler, auth gin.HandlerFunc) *TaskModule {
	return &TaskModule{Handler: h, Auth: auth}
}

func (m *TaskModule) Register(rg *gin.RouterGroup) {
	tasks := rg.Group("/tasks")
	tasks.Use(m.Auth)
	{
		tasks.POST("", m.Handler.Create)
		tasks.GET("", m.Handler.List)
		tasks.GET("/search", m.Handler.Search)
		tasks.PUT("/:id", m.Handler.Update)
		tasks.DELETE("/:id", m.Handler.Delete)
	}
}
