package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"designhive/middleware"
	"designhive/model"
	"designhive/service"
	"designhive/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testJWTSecret = "test-secret"

type testEnv struct {
	router    *gin.Engine
	db        *gorm.DB
	userSvc   *service.UserService
	followSvc *service.FollowService
	notifSvc  *service.NotificationService
}

// setupTestEnv 搭建完整路由 + 内存 SQLite（和 main.go 的接线保持一致）
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:handler_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.FollowRequest{},
		&model.Notification{},
	))

	middleware.InitAuth(testJWTSecret, nil)

	userSvc := service.NewUserService(db)
	notifSvc := service.NewNotificationService(db)
	followSvc := service.NewFollowService(db)
	followSvc.SetNotificationService(notifSvc)

	authHandler := NewAuthHandler(userSvc, time.Hour)
	userHandler := NewUserHandler(userSvc)
	followHandler := NewFollowHandler(followSvc, userSvc)
	notifHandler := NewNotificationHandler(notifSvc)

	r := gin.New()
	r.Use(middleware.ErrorHandlerMiddleware())

	api := r.Group("/api")
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.AuthMiddleware())
	{
		authed.POST("/auth/logout", authHandler.Logout)
		authed.GET("/user/all", userHandler.ListAll)
		authed.GET("/user/profile", userHandler.GetProfile)
		authed.PUT("/user/update", userHandler.UpdateProfile)
		authed.POST("/follow/send", followHandler.Send)
		authed.POST("/follow/accept", followHandler.Accept)
		authed.POST("/follow/cancel", followHandler.Cancel)
		authed.POST("/follow/unfollow", followHandler.Unfollow)
		authed.POST("/follow/remove-follower", followHandler.RemoveFollower)
		authed.GET("/follow/pending", followHandler.Pending)
		authed.GET("/follow/sent", followHandler.PendingSent)
		authed.GET("/follow/pending-sent", followHandler.PendingSent)
		authed.GET("/follow/followers", followHandler.Followers)
		authed.GET("/follow/following", followHandler.Following)
		authed.GET("/follow/statuses", followHandler.Statuses)
		authed.GET("/follow/pending-count", followHandler.PendingCount)
		authed.GET("/notifications", notifHandler.List)
		authed.POST("/notifications/read-all", notifHandler.MarkAllRead)
	}

	return &testEnv{
		router:    r,
		db:        db,
		userSvc:   userSvc,
		followSvc: followSvc,
		notifSvc:  notifSvc,
	}
}

// registerUser 注册测试用户并返回可用的 token
func (e *testEnv) registerUser(t *testing.T, email, username string) (*model.User, string) {
	t.Helper()

	user, err := e.userSvc.Register(email, username, "password123")
	require.NoError(t, err)

	token, err := middleware.GenerateToken(user.ID, user.Email, time.Hour)
	require.NoError(t, err)
	return user, token
}

// request HTTP 请求辅助函数
func (e *testEnv) request(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, utils.Response) {
	t.Helper()

	var bodyReader *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		bodyReader = bytes.NewBuffer(data)
	} else {
		bodyReader = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, bodyReader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var resp utils.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

// decodeData 把 Response.Data 再解码成目标类型
func decodeData(t *testing.T, data interface{}, out interface{}) {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}
