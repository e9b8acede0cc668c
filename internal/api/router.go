package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"roteiro/internal/api/controllers"
	"roteiro/internal/config"
	mem "roteiro/pkg/memcache"
	"roteiro/pkg/middleware"
)

// NewRouter builds the HTTP engine with every route of the API. Each route
// answers both with and without its trailing slash.
func NewRouter(
	cfg *config.Config,
	log *zap.Logger,
	sessions mem.SessionStore,
	accountController *controllers.AccountController,
	tripController *controllers.TripController,
) *gin.Engine {
	r := gin.New()
	r.RedirectTrailingSlash = false

	r.Use(middleware.TraceIDMiddleware())
	r.Use(middleware.RequestLogger(log))
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error("panic recovered",
			zap.Any("panic", recovered),
			zap.String("trace_id", c.GetString("trace_id")))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":    "Erro interno do servidor.",
			"code":     "server_error",
			"trace_id": c.GetString("trace_id"),
		})
	}))
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	limiter := middleware.NewRateLimiter(cfg.AuthRateLimit, time.Minute)
	public := r.Group("", middleware.RateLimit(limiter))
	handle(public, http.MethodPost, "/register/", accountController.Register)
	handle(public, http.MethodPost, "/login/", accountController.Login)

	authed := r.Group("",
		middleware.SessionAuth(cfg.Session, sessions),
		middleware.CSRFProtect(cfg.Session.RequireCSRFToken))

	handle(authed, http.MethodPost, "/logout/", accountController.Logout)
	handle(authed, http.MethodGet, "/me/", accountController.Me)
	handle(authed, http.MethodDelete, "/me/", accountController.DeleteMe)

	handle(authed, http.MethodGet, "/trips/", tripController.ListTrips)
	handle(authed, http.MethodPost, "/trips/", tripController.CreateTrip)
	handle(authed, http.MethodGet, "/trips/:id/", tripController.GetTrip)
	handle(authed, http.MethodPut, "/trips/:id/", tripController.ReplaceTrip)
	handle(authed, http.MethodPatch, "/trips/:id/", tripController.PatchTrip)
	handle(authed, http.MethodDelete, "/trips/:id/", tripController.DeleteTrip)

	handle(authed, http.MethodPost, "/trips/:id/items/", tripController.CreateItem)
	handle(authed, http.MethodPut, "/trips/:id/items/:itemId/", tripController.ReplaceItem)
	handle(authed, http.MethodPatch, "/trips/:id/items/:itemId/", tripController.PatchItem)
	handle(authed, http.MethodDelete, "/trips/:id/items/:itemId/", tripController.DeleteItem)

	return r
}

func handle(g *gin.RouterGroup, method, path string, h gin.HandlerFunc) {
	g.Handle(method, path, h)
	g.Handle(method, strings.TrimSuffix(path, "/"), h)
}
