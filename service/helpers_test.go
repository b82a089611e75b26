package service

import (
	"fmt"
	"testing"

	"designhive/model"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB 每个测试一个独立的内存 SQLite
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.FollowRequest{},
		&model.Notification{},
	))
	return db
}

// createTestUser 创建测试用户
func createTestUser(t *testing.T, db *gorm.DB, email, username string) *model.User {
	t.Helper()

	svc := NewUserService(db)
	user, err := svc.Register(email, username, "password123")
	require.NoError(t, err)
	return user
}
