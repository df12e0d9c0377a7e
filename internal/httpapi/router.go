package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lmarquezt/chatvault/internal/chat"
	"github.com/lmarquezt/chatvault/internal/common"
	"github.com/lmarquezt/chatvault/internal/config"
	"github.com/lmarquezt/chatvault/internal/httpapi/handlers"
	"github.com/lmarquezt/chatvault/internal/httpapi/middleware"
	"github.com/lmarquezt/chatvault/internal/stats"
	"github.com/lmarquezt/chatvault/internal/store"
	"github.com/lmarquezt/chatvault/internal/store/rabbitmq"
)

func NewRouter(st *store.Store, cfg config.Config, chatSvc *chat.Service, agg *stats.Aggregator, pub *rabbitmq.Publisher) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	h := handlers.NewHandler(st, cfg, chatSvc, agg, pub)

	r.GET("/ping", h.Ping)

	// registration and login are open; users are listed for the picker screen
	r.POST("/users", h.CreateUser)
	r.GET("/users", h.ListUsers)
	r.POST("/login", h.Login)

	authGroup := r.Group("/")
	authGroup.Use(middleware.AuthRequired(cfg.JWTSecret))
	authGroup.GET("/me", h.Me)
	authGroup.DELETE("/users/:id", h.DeleteUser)

	authGroup.POST("/chat/messages", h.SendChatMessage)
	authGroup.POST("/chat/messages/async", h.SendChatMessageAsync)
	authGroup.GET("/chat/jobs/:job_id", h.GetChatJob)
	authGroup.GET("/chat/messages", h.ListChatMessages)
	authGroup.DELETE("/chat/messages", h.ClearChatMessages)

	authGroup.GET("/profile", h.GetProfile)
	authGroup.PUT("/profile/avatar", h.SetAvatar)
	authGroup.PUT("/profile/theme", h.SetTheme)
	authGroup.GET("/stats", h.GetStats)

	return r
}
