package router

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/users-api/internal/application"
	"github.com/oksasatya/users-api/internal/container"
	"github.com/oksasatya/users-api/internal/infrastructure/search"
	handlers "github.com/oksasatya/users-api/internal/interface/http"
	"github.com/oksasatya/users-api/internal/interface/middleware"
	"github.com/oksasatya/users-api/internal/metrics"
	"github.com/oksasatya/users-api/internal/router/modules"
	"github.com/oksasatya/users-api/pkg/validation"
)

// Services are the application services built from a container.
type Services struct {
	Auth  *application.AuthService
	Users *application.UserService
}

// BuildServices wires repositories and optional infrastructure into the
// application layer.
func BuildServices(c *container.Container) Services {
	var events application.EventPublisher
	if c.RabbitPub != nil {
		events = c.RabbitPub
	}
	var index application.UserSearcher
	if c.ES != nil {
		index = search.NewUserIndex(c.ES, c.Config.ESUsersIndex)
	}
	return Services{
		Auth:  application.NewAuthService(c.AuthUsers, c.JWT, events, c.Logger),
		Users: application.NewUserService(c.Users, c.Redis, c.Config.UserCacheTTL, index, events, c.Logger),
	}
}

// New builds the gin engine with every module registered.
func New(c *container.Container) *gin.Engine {
	validation.Init()

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestIDMiddleware(), middleware.RealIP())
	engine.Use(middleware.Metrics(metrics.NewCollector(c.Registry)))

	origins := c.Config.CORSOrigins()
	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = origins
		corsCfg.AllowCredentials = true
	}
	engine.Use(cors.New(corsCfg))

	svcs := BuildServices(c)
	health := handlers.NewHealthHandler(c.Store)
	engine.GET("/healthz", health.Health)
	engine.GET("/metrics", gin.WrapH(metrics.Handler(c.Gatherer)))

	reg := NewRegistry(engine)
	if c.Config.HTTPLogEnabled {
		reg.Use(middleware.AccessLog(c.Logger))
	}
	reg.Add(modules.NewAuthModule(handlers.NewAuthHandler(svcs.Auth, c.Logger), c.Redis))
	reg.Add(modules.NewUserModule(handlers.NewUserHandler(svcs.Users, c.Logger), svcs.Auth, c.Redis))
	if c.Config.DebugMetricsEnabled {
		reg.Add(modules.NewDebugModule(c.Redis))
	}
	reg.RegisterAll()
	return engine
}
