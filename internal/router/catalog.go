package router

import (
	"github.com/Payphone-Digital/bilemo/internal/constants"
	"github.com/Payphone-Digital/bilemo/internal/middleware"
	"github.com/gin-gonic/gin"
)

func (r *Router) clientRoutes(version *gin.RouterGroup) {
	clients := version.Group("/clients")
	clients.Use(r.jwtMw.RequireAuth())
	{
		clients.GET("", r.clientHandler.List)
		clients.GET("/:id", r.clientHandler.GetByID)

		// Write operations are reserved to the super-admin
		managed := clients.Group("")
		managed.Use(middleware.RequireRole(constants.RoleSuperAdmin))
		{
			managed.POST("", r.clientHandler.Create)
			managed.PUT("/:id", r.clientHandler.Update)
			managed.DELETE("/:id", r.clientHandler.Delete)
		}
	}
}

func (r *Router) productRoutes(version *gin.RouterGroup) {
	products := version.Group("/products")
	products.Use(r.jwtMw.RequireAuth())
	{
		products.GET("", r.productHandler.List)
		products.GET("/:id", r.productHandler.GetByID)

		managed := products.Group("")
		managed.Use(middleware.RequireRole(constants.RoleSuperAdmin))
		{
			managed.POST("", r.productHandler.Create)
			managed.PUT("/:id", r.productHandler.Update)
			managed.DELETE("/:id", r.productHandler.Delete)
		}
	}
}
