package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/classroom-tasks/internal/interface/http"
)

// UserModule wires the user directory.
// Public: GET /api/users/teachers
// Protected: GET /api/users/my-students, GET /api/users/:id
type UserModule struct {
	Handler *handlers.UserHandler
	Auth    gin.HandlerFunc
}

func NewUserModule(h *handlers.UserHandler, auth gin.HandlerFunc) *UserModule {
	return &UserModule{Handler: h, Auth: auth}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	users.GET("/teachers", m.Handler.Teachers)

	auth := users.Group("")
	auth.Use(m.Auth)
	{
		auth.GET("/my-students", m.Handler.MyStudents)
		auth.GET("/:id", m.Handler.Get)
	}
}
