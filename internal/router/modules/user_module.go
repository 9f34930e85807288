package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/users-api/internal/interface/http"
	"github.com/oksasatya/users-api/internal/interface/middleware"
)

// UserModule wires the user resource under /api/v1/users.
// Public: list, get, search
// Protected (Bearer): create, update (PUT and PATCH), delete
type UserModule struct {
	Handler *handlers.UserHandler
	Auth    middleware.TokenAuthenticator
	Redis   *redis.Client
}

func NewUserModule(h *handlers.UserHandler, auth middleware.TokenAuthenticator, rdb *redis.Client) *UserModule {
	return &UserModule{Handler: h, Auth: auth, Redis: rdb}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	users := rg.Group("/v1/users")
	users.GET("/", m.Handler.List)
	users.GET("/search", m.Handler.Search)
	users.GET("/:id", m.Handler.Get)

	protected := users.Group("")
	protected.Use(
		middleware.Auth(m.Auth),
		middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByAuthEmail(), nil),
	)
	{
		protected.POST("/", m.Handler.Create)
		protected.PUT("/:id", m.Handler.Update)
		protected.PATCH("/:id", m.Handler.Update)
		protected.DELETE("/:id", m.Handler.Delete)
	}
}
