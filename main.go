package main

import (
	"log"
	"time"

	"designhive/config"
	"designhive/handler"
	"designhive/middleware"
	"designhive/model"
	"designhive/service"
	"designhive/utils"

	"github.com/gin-gonic/gin"
)

func init() {
	// 服务端统一使用 UTC
	time.Local = time.UTC
}

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化数据库
	if err := utils.InitDB(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer utils.CloseDB()

	if err := utils.GetDB().AutoMigrate(
		&model.User{},
		&model.FollowRequest{},
		&model.Notification{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// 初始化 Redis
	if err := utils.InitRedis(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer utils.CloseRedis()

	// 初始化认证中间件（redis 做登出黑名单）
	middleware.InitAuth(cfg.JWTSecret, utils.GetRedis())

	// 创建 WebSocket Hub（关注事件推送）
	hub := handler.NewHub(utils.GetRedis())

	// 创建服务
	userSvc := service.NewUserService(utils.GetDB())
	notifSvc := service.NewNotificationService(utils.GetDB())
	notifSvc.SetHubNotifier(hub)
	followSvc := service.NewFollowService(utils.GetDB())
	followSvc.SetNotificationService(notifSvc)

	// 创建处理器
	authHandler := handler.NewAuthHandler(userSvc, time.Duration(cfg.TokenTTLHours)*time.Hour)
	userHandler := handler.NewUserHandler(userSvc)
	followHandler := handler.NewFollowHandler(followSvc, userSvc)
	notifHandler := handler.NewNotificationHandler(notifSvc)

	// 创建 Gin 路由
	r := gin.Default()

	// 注册统一错误处理中间件
	r.Use(middleware.ErrorHandlerMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		utils.SuccessResponse(c, gin.H{"status": "ok"})
	})

	// WebSocket 连接（使用 token 认证，不需要 HTTP 中间件）
	r.GET("/ws", handler.HandleWebSocket(hub))

	// 公开路由
	api := r.Group("/api")
	{
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)
	}

	// 需要认证的路由
	authed := api.Group("")
	authed.Use(middleware.AuthMiddleware())
	{
		authed.POST("/auth/logout", func(c *gin.Context) {
			if userID, ok := middleware.GetUserID(c); ok {
				hub.ForceOffline(userID)
			}
			authHandler.Logout(c)
		})

		// 用户
		authed.GET("/user/all", userHandler.ListAll)
		authed.GET("/user/profile", userHandler.GetProfile)
		authed.PUT("/user/update", userHandler.UpdateProfile)

		// 关注关系
		authed.POST("/follow/send", followHandler.Send)
		authed.POST("/follow/accept", followHandler.Accept)
		authed.POST("/follow/cancel", followHandler.Cancel)
		authed.POST("/follow/unfollow", followHandler.Unfollow)
		authed.POST("/follow/remove-follower", followHandler.RemoveFollower)
		authed.GET("/follow/pending", followHandler.Pending)
		authed.GET("/follow/sent", followHandler.PendingSent)
		authed.GET("/follow/pending-sent", followHandler.PendingSent) // 兼容旧前端路径
		authed.GET("/follow/followers", followHandler.Followers)
		authed.GET("/follow/following", followHandler.Following)
		authed.GET("/follow/statuses", followHandler.Statuses)
		authed.GET("/follow/pending-count", followHandler.PendingCount)

		// 通知
		authed.GET("/notifications", notifHandler.List)
		authed.POST("/notifications/read-all", notifHandler.MarkAllRead)
	}

	// 启动服务
	log.Printf("🚀 designhive service starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
