package followstate

import (
	"context"
	"log"
	"sync"
)

// Directory 邮箱 -> 用户名 映射，查不到时回退显示原始邮箱
type Directory struct {
	api API

	mu    sync.RWMutex
	names map[string]string
}

func NewDirectory(api API) *Directory {
	return &Directory{
		api:   api,
		names: make(map[string]string),
	}
}

// Load 拉取全量用户构建映射；失败不致命，回退逻辑仍然可用
func (d *Directory) Load(ctx context.Context) error {
	users, err := d.api.AllUsers(ctx)
	if err != nil {
		log.Printf("[ERROR] Failed to fetch users for directory: %v", err)
		return err
	}

	names := make(map[string]string, len(users))
	for _, user := range users {
		names[user.Email] = user.Username
	}

	d.mu.Lock()
	d.names = names
	d.mu.Unlock()
	return nil
}

// Name 显示名：映射命中返回用户名，否则原样返回邮箱（永不为空）
func (d *Directory) Name(email string) string {
	d.mu.RLock()
	name := d.names[email]
	d.mu.RUnlock()

	if name == "" {
		return email
	}
	return name
}
