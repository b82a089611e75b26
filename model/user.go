package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User 用户表
type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Email        string    `json:"email" gorm:"type:varchar(255);not null;uniqueIndex"`
	Username     string    `json:"username" gorm:"type:varchar(100);not null"`
	PasswordHash string    `json:"-" gorm:"type:varchar(100);not null"`
	FullName     string    `json:"fullName,omitempty" gorm:"type:varchar(200)"`
	Bio          string    `json:"bio,omitempty" gorm:"type:text"`
	Location     string    `json:"location,omitempty" gorm:"type:varchar(200)"`
	CreatedAt    time.Time `json:"createdAt" gorm:"autoCreateTime"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// UserSummary 用户摘要（公开信息，用于 /user/all 和推荐列表）
type UserSummary struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	Username string    `json:"username"`
}

// Summary 转换为公开摘要
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:       u.ID,
		Email:    u.Email,
		Username: u.Username,
	}
}
