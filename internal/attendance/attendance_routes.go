package attendance

import (
	"geopunch/internal/middleware"
	"geopunch/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, rbacService rbac.Service, rdb *redis.Client) {
	attendances := r.Group("/attendances")
	attendances.Use(middleware.AuthMiddleware(), middleware.ExtractUserID())
	{
		attendances.GET("", middleware.RBACAuthorize(rbacService, "attendance", "read"), h.GetAll)
		attendances.GET("/status", h.Status)

		punches := attendances.Group("")
		punches.Use(
			middleware.RBACAuthorize(rbacService, "attendance", "create"),
			middleware.RateLimitByUser(rate.Limit(1), 5),
			middleware.Idempotency(rdb),
		)
		{
			punches.POST("/punch-in", h.PunchIn)
			punches.POST("/punch-out", h.PunchOut)
		}
	}
}
