package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 关注状态：边上显式存储（status 不靠集合归属推断）
const (
	FollowStatusNone     = "none"
	FollowStatusPending  = "pending"
	FollowStatusAccepted = "accepted"
)

// FollowRequest 关注请求表：sender -> receiver 的有向边
// 内部用用户 UUID 做外键，邮箱只出现在对外的 FollowEdge 上
type FollowRequest struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	SenderID   uuid.UUID  `json:"sender_id" gorm:"type:uuid;not null;uniqueIndex:idx_follow_pair"`
	ReceiverID uuid.UUID  `json:"receiver_id" gorm:"type:uuid;not null;uniqueIndex:idx_follow_pair"`
	Status     string     `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	CreatedAt  time.Time  `json:"created_at" gorm:"autoCreateTime"`
	AcceptedAt *time.Time `json:"accepted_at,omitempty"`
}

func (FollowRequest) TableName() string {
	return "follow_requests"
}

func (r *FollowRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// FollowEdge 对外的关注边表示：带双方邮箱和用户名，status 显式携带
type FollowEdge struct {
	ID               uuid.UUID `json:"id"`
	SenderEmail      string    `json:"senderEmail"`
	SenderUsername   string    `json:"senderUsername"`
	ReceiverEmail    string    `json:"receiverEmail"`
	ReceiverUsername string    `json:"receiverUsername"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"createdAt"`
}
