package router

import (
	"github.com/Payphone-Digital/bilemo/internal/constants"
	"github.com/Payphone-Digital/bilemo/internal/middleware"
	"github.com/gin-gonic/gin"
)

func (r *Router) userRoutes(version *gin.RouterGroup) {
	users := version.Group("/users")
	users.Use(r.jwtMw.RequireAuth())
	{
		// Any authenticated user may change their own password
		users.PUT("/:id/password", r.userHandler.UpdatePassword)

		managed := users.Group("")
		managed.Use(middleware.RequireRole(constants.RoleAdmin, constants.RoleSuperAdmin))
		{
			// Admins only see users of their own client
			managed.GET("", r.userHandler.GetAll)
			managed.GET("/:id", r.userHandler.GetByID)
			managed.POST("", r.userHandler.CreateUser)
			managed.PUT("/:id", r.userHandler.UpdateUser)
			managed.DELETE("/:id", r.userHandler.DeleteUser)
		}
	}
}
