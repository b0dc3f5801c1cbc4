package worksite

import (
	"geopunch/internal/middleware"
	"geopunch/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, rbacService rbac.Service) {
	worksites := r.Group("/worksite")
	worksites.Use(middleware.AuthMiddleware())
	{
		worksites.GET("", middleware.RBACAuthorize(rbacService, "worksite", "read"), h.Get)
		worksites.PUT("", middleware.RBACAuthorize(rbacService, "worksite", "update"), h.Update)
	}
}
