package service

import (
	"fmt"
	"log"
	"time"

	"designhive/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HubNotifier 接口用于发送 WebSocket 推送
type HubNotifier interface {
	SendToUser(userID uuid.UUID, payload interface{}) bool
	IsUserOnline(userID uuid.UUID) bool
}

type NotificationService struct {
	db  *gorm.DB
	hub HubNotifier
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// SetHubNotifier 设置 Hub 通知器（用于依赖注入）
func (s *NotificationService) SetHubNotifier(hub HubNotifier) {
	s.hub = hub
}

// Create 创建通知并推送给在线用户
func (s *NotificationService) Create(userID uuid.UUID, notifType, title, actorEmail string) (*model.Notification, error) {
	notification := &model.Notification{
		UserID:     userID,
		Type:       notifType,
		Title:      title,
		ActorEmail: actorEmail,
	}

	if err := s.db.Create(notification).Error; err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	// 只推送给在线用户
	if s.hub != nil && s.hub.IsUserOnline(userID) {
		s.hub.SendToUser(userID, map[string]interface{}{
			"type": "notification",
			"data": notification,
		})
	}

	return notification, nil
}

// PushPendingCount 推送最新的待处理请求数（导航栏角标实时更新）
func (s *NotificationService) PushPendingCount(userID uuid.UUID, count int64) {
	if s.hub == nil || !s.hub.IsUserOnline(userID) {
		return
	}
	s.hub.SendToUser(userID, map[string]interface{}{
		"type": "pending_count",
		"data": map[string]int64{"count": count},
	})
}

// ListForUser 查询用户的通知
func (s *NotificationService) ListForUser(userID uuid.UUID, unreadOnly bool) ([]model.Notification, error) {
	query := s.db.Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var notifications []model.Notification
	if err := query.Order("created_at DESC").Find(&notifications).Error; err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	if notifications == nil {
		notifications = []model.Notification{}
	}
	return notifications, nil
}

// MarkAllRead 全部标记已读
func (s *NotificationService) MarkAllRead(userID uuid.UUID) error {
	now := time.Now()
	err := s.db.Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": &now}).Error
	if err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}

func (s *NotificationService) logError(scope string, err error) {
	log.Printf("[ERROR] %s: %v", scope, err)
}
