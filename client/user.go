package client

import (
	"context"
	"net/http"

	"designhive/model"
)

// Credentials 登录结果
type Credentials struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

// ProfileUpdate 资料更新入参
type ProfileUpdate struct {
	Username string `json:"username"`
	FullName string `json:"fullName,omitempty"`
	Bio      string `json:"bio,omitempty"`
	Location string `json:"location,omitempty"`
}

// Register 注册
func (c *Client) Register(ctx context.Context, email, username, password string) (*model.User, error) {
	body := map[string]string{
		"email":    email,
		"username": username,
		"password": password,
	}
	var user model.User
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", nil, body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login 登录并在客户端上记住 Token
func (c *Client) Login(ctx context.Context, email, password string) (*Credentials, error) {
	body := map[string]string{
		"email":    email,
		"password": password,
	}
	var creds Credentials
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, body, &creds); err != nil {
		return nil, err
	}
	c.SetToken(creds.Token)
	return &creds, nil
}

// Logout 登出并清除本地 Token
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil, nil)
	c.SetToken("")
	return err
}

// AllUsers 所有用户摘要
func (c *Client) AllUsers(ctx context.Context) ([]model.UserSummary, error) {
	var users []model.UserSummary
	err := c.do(ctx, http.MethodGet, "/api/user/all", nil, nil, &users)
	return users, err
}

// Profile 按邮箱查资料
func (c *Client) Profile(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := c.do(ctx, http.MethodGet, "/api/user/profile", params("email", email), nil, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile 更新自己的资料
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (*model.User, error) {
	var user model.User
	err := c.do(ctx, http.MethodPut, "/api/user/update", nil, update, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Notifications 查询通知
func (c *Client) Notifications(ctx context.Context, unreadOnly bool) ([]model.Notification, error) {
	query := params()
	if unreadOnly {
		query = params("unread", "true")
	}
	var notifications []model.Notification
	err := c.do(ctx, http.MethodGet, "/api/notifications", query, nil, &notifications)
	return notifications, err
}

// MarkAllNotificationsRead 全部标记已读
func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/notifications/read-all", nil, nil, nil)
}
