package service

import (
	"errors"
	"fmt"

	"designhive/model"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// Register 注册用户
func (s *UserService) Register(email, username, password string) (*model.User, error) {
	var count int64
	if err := s.db.Model(&model.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if count > 0 {
		return nil, fmt.Errorf("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
	}

	if err := s.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Authenticate 校验邮箱密码
func (s *UserService) Authenticate(email, password string) (*model.User, error) {
	user, err := s.GetByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("invalid email or password")
	}

	return user, nil
}

// GetByEmail 按邮箱查用户
func (s *UserService) GetByEmail(email string) (*model.User, error) {
	var user model.User
	err := s.db.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user not found: %s", email)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &user, nil
}

// GetByID 按 ID 查用户
func (s *UserService) GetByID(id uuid.UUID) (*model.User, error) {
	var user model.User
	err := s.db.First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &user, nil
}

// ListAll 列出所有用户摘要（用于构建邮箱->用户名映射和推荐列表）
func (s *UserService) ListAll() ([]model.UserSummary, error) {
	var users []model.User
	if err := s.db.Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	summaries := make([]model.UserSummary, 0, len(users))
	for i := range users {
		summaries = append(summaries, users[i].Summary())
	}
	return summaries, nil
}

// ProfileUpdate 可更新的资料字段（邮箱和密码不走这里）
type ProfileUpdate struct {
	Username string `json:"username" binding:"required"`
	FullName string `json:"fullName"`
	Bio      string `json:"bio"`
	Location string `json:"location"`
}

// UpdateProfile 更新资料，保留邮箱、密码等敏感字段
func (s *UserService) UpdateProfile(email string, update ProfileUpdate) (*model.User, error) {
	user, err := s.GetByEmail(email)
	if err != nil {
		return nil, err
	}

	user.Username = update.Username
	user.FullName = update.FullName
	user.Bio = update.Bio
	user.Location = update.Location

	if err := s.db.Save(user).Error; err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}
