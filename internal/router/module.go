package router

import "github.com/gin-gonic/gin"

// Module is one feature area (auth, users, tasks, debug). It mounts its
// routes under the shared /api group and picks its own per-route middleware.
type Module interface {
	Register(rg *gin.RouterGroup)
}
