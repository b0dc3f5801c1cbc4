package app

import (
	"database/sql"
	"path/filepath"

	"geopunch/internal/attendance"
	"geopunch/internal/auth"
	"geopunch/internal/messaging/kafka"
	"geopunch/internal/rbac"
	"geopunch/internal/rbac/infra"
	"geopunch/internal/worksite"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	// --- Repositories ---
	rbacRepo := rbac.NewRepository(gormDB)
	authRepo := auth.NewRepository(gormDB)
	attendanceRepo := attendance.NewRepository(gormDB)
	worksiteRepo := worksite.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer(filepath.Join("internal", "rbac", "infra", "model.conf"))
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(rbacRepo, enforcer)

	// --- Services ---
	authService := auth.NewService(authRepo, rbacService)
	worksiteService := worksite.NewService(worksiteRepo, rdb)
	attendanceService := attendance.NewService(db, attendanceRepo, outboxRepo, worksiteService)

	// --- Handlers ---
	authHandler := auth.NewHandler(authService)
	attendanceHandler := attendance.NewHandlerWithRedis(attendanceService, rdb)
	worksiteHandler := worksite.NewHandler(worksiteService)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		auth.RegisterRoutes(api, authHandler)
		attendance.RegisterRoutes(api, attendanceHandler, rbacService, rdb)
		worksite.RegisterRoutes(api, worksiteHandler, rbacService)
	}

	return nil
}
