package modules

import (
	"expvar"
	"strconv"

	"github.com/gin-gonic/gin"
)

var (
	requestsByStatus = expvar.NewMap("http_requests_by_status")
	requestsByRoute  = expvar.NewMap("http_requests_by_route")
)

// CountRequests feeds the expvar counters served by DebugModule. It runs on
// the /api group, so only matched routes are counted.
func CountRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		requestsByStatus.Add(strconv.Itoa(c.Writer.Status()), 1)
		requestsByRoute.Add(c.Request.Method+" "+c.FullPath(), 1)
	}
}

type DebugModule struct{}

func NewDebugModule() *DebugModule { return &DebugModule{} }

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	rg.GET("/debug/vars", gin.WrapH(expvar.Handler()))
}
