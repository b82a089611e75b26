package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 通知类型
const (
	NotificationFollowRequest  = "follow_request"  // 收到关注请求
	NotificationFollowAccepted = "follow_accepted" // 关注请求被接受
)

// Notification 通知表
type Notification struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	UserID     uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index"`
	Type       string     `json:"type" gorm:"type:varchar(30);not null"`
	Title      string     `json:"title" gorm:"type:varchar(200);not null"`
	ActorEmail string     `json:"actor_email" gorm:"type:varchar(255)"` // 触发通知的用户
	IsRead     bool       `json:"is_read" gorm:"default:false"`
	ReadAt     *time.Time `json:"read_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at" gorm:"autoCreateTime"`
}

func (Notification) TableName() string {
	return "notifications"
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
