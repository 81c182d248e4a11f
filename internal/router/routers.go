package router

import (
	"time"

	"github.com/Payphone-Digital/bilemo/config"
	"github.com/Payphone-Digital/bilemo/internal/handler"
	"github.com/Payphone-Digital/bilemo/internal/middleware"
	"github.com/Payphone-Digital/bilemo/pkg/metrics"
	"github.com/gin-gonic/gin"
)

type Router struct {
	authHandler    *handler.AuthHandler
	clientHandler  *handler.ClientHandler
	productHandler *handler.ProductHandler
	userHandler    *handler.UserHandler
	healthHandler  *handler.HealthHandler

	jwtMw   *middleware.JWTMiddleware
	metrics *metrics.Metrics
	Config  *config.Config
}

func NewRouter(
	auth *handler.AuthHandler,
	client *handler.ClientHandler,
	product *handler.ProductHandler,
	user *handler.UserHandler,
	health *handler.HealthHandler,

	jwtMw *middleware.JWTMiddleware,
	m *metrics.Metrics,
	config *config.Config,
) *Router {
	return &Router{
		authHandler:    auth,
		clientHandler:  client,
		productHandler: product,
		userHandler:    user,
		healthHandler:  health,

		jwtMw:   jwtMw,
		metrics: m,
		Config:  config,
	}
}

func (r *Router) SetupRoutes() *gin.Engine {
	if !r.Config.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.ContextMiddleware(r.Config.App.Name, r.Config.App.Timeout))
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.MetricsMiddleware(r.metrics))
	router.Use(middleware.CORS(r.Config.CORS.AllowedOrigins))

	router.GET("/metrics", gin.WrapH(r.metrics.Handler()))

	api := router.Group("/api")
	{
		api.GET("/health", r.healthHandler.HealthCheck)

		v1 := api.Group("/v1")
		{
			v1.Use(middleware.RateLimit(r.Config.RateLimit.Request, time.Duration(r.Config.RateLimit.Duration)*time.Second, r.metrics))

			r.authRoutes(v1)
			r.clientRoutes(v1)
			r.productRoutes(v1)
			r.userRoutes(v1)
		}
	}

	return router
}
