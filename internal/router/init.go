package router

import (
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/classroom-tasks/config"
	"github.com/oksasatya/classroom-tasks/internal/application"
	"github.com/oksasatya/classroom-tasks/internal/container"
	"github.com/oksasatya/classroom-tasks/internal/domain/repository"
	"github.com/oksasatya/classroom-tasks/internal/infrastructure/memory"
	"github.com/oksasatya/classroom-tasks/internal/infrastructure/mongodb"
	pginfra "github.com/oksasatya/classroom-tasks/internal/infrastructure/postgres"
	"github.com/oksasatya/classroom-tasks/internal/infrastructure/search"
	handlers "github.com/oksasatya/classroom-tasks/internal/interface/http"
	"github.com/oksasatya/classroom-tasks/internal/interface/middleware"
	"github.com/oksasatya/classroom-tasks/internal/ratelimit"
	"github.com/oksasatya/classroom-tasks/internal/router/modules"
	"github.com/oksasatya/classroom-tasks/pkg/helpers"
	"github.com/oksasatya/classroom-tasks/pkg/validation"
)

// Deps is everything the HTTP surface needs. Index and Events are optional.
type Deps struct {
	Config  *config.Config
	Logger  *logrus.Logger
	Users   repository.UserRepository
	Tasks   repository.TaskRepository
	JWT     *helpers.JWTManager
	Limiter ratelimit.Limiter
	Index   application.TaskIndexer
	Events  application.EventPublisher
}

// DepsFromContainer picks the stores for STORE_DRIVER from the singletons
// set up in main.
func DepsFromContainer() (Deps, error) {
	cfg := container.GetConfig()
	d := Deps{
		Config:  cfg,
		Logger:  container.GetLogger(),
		JWT:     container.GetJWT(),
		Limiter: container.GetLoginLimiter(),
	}

	switch cfg.StoreDriver {
	case "postgres":
		pool := container.GetPGPool()
		if pool == nil {
			return Deps{}, fmt.Errorf("postgres store selected but no pool configured")
		}
		d.Users = pginfra.NewUserRepository(pool)
		d.Tasks = pginfra.NewTaskRepository(pool)
	case "mongo":
		db := container.GetMongo()
		if db == nil {
			return Deps{}, fmt.Errorf("mongo store selected but no database configured")
		}
		d.Users = mongodb.NewUserRepository(db)
		d.Tasks = mongodb.NewTaskRepository(db)
	case "memory":
		d.Users = memory.NewUserRepository()
		d.Tasks = memory.NewTaskRepository()
	default:
		return Deps{}, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	if es := container.GetES(); es != nil {
		d.Index = search.NewTaskIndex(es, cfg.ESTasksIndex)
	}
	if pub := container.GetRabbitPub(); pub != nil {
		d.Events = pub
	}
	return d, nil
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry, d Deps) {
	userSvc := application.NewUserService(d.Users, d.JWT, d.Logger)
	taskSvc := application.NewTaskService(d.Tasks, d.Users, d.Index, d.Events, d.Logger)
	auth := middleware.Auth(d.Users, d.JWT, d.Logger)

	var allow middleware.AllowFunc
	if d.Config.LoginBypassPrivateNets {
		allow = middleware.AllowPrivateIP()
	}

	r.Add(modules.NewAuthModule(handlers.NewAuthHandler(userSvc, d.Logger), d.Limiter, allow, d.Logger))
	r.Add(modules.NewUserModule(handlers.NewUserHandler(userSvc, d.Logger), auth))
	r.Add(modules.NewTaskModule(handlers.NewTaskHandler(taskSvc, d.Logger), auth))
	if d.Config.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}

// NewEngine builds the Gin engine with global middleware and every module.
func NewEngine(d Deps) *gin.Engine {
	validation.Init()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP(d.Config.TrustProxyHeaders))
	r.Use(cors.New(corsConfig(d.Config.CORSOrigins())))
	if d.Config.HTTPLogEnabled {
		r.Use(gin.Logger())
	}

	reg := NewRegistry(r)
	if d.Config.DebugMetricsEnabled {
		reg.Use(modules.CountRequests())
	}
	InitModules(reg, d)
	reg.RegisterAll()
	return r
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length", "Retry-After", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			c.AllowAllOrigins = true
			return c
		}
	}
	if len(origins) == 0 {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = origins
	return c
}
