package followstate

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"sync"

	"designhive/client"
	"designhive/model"
)

// 持久化键
const (
	storageKeyToken    = "auth_token"
	storageKeyProfile  = "cached_profile"
	storageKeyRemember = "remembered_email"
	storageKeyRedirect = "redirect_path"
)

// Storage 会话持久化接口（对应浏览器 localStorage 的角色）
type Storage interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
}

// MemoryStorage 内存实现（测试和无持久化场景）
type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string]string)}
}

func (m *MemoryStorage) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.data[key]
	return value, ok
}

func (m *MemoryStorage) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemoryStorage) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// FileStorage JSON 文件实现
type FileStorage struct {
	mu   sync.Mutex
	path string
	data map[string]string
}

func NewFileStorage(path string) (*FileStorage, error) {
	fs := &FileStorage{path: path, data: make(map[string]string)}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fs, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(raw, &fs.data); err != nil {
		// 文件损坏就从空状态开始
		log.Printf("[ERROR] Corrupt session storage at %s, starting fresh: %v", path, err)
		fs.data = make(map[string]string)
	}
	return fs, nil
}

func (f *FileStorage) Get(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.data[key]
	return value, ok
}

func (f *FileStorage) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
	return f.flush()
}

func (f *FileStorage) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, key)
	return f.flush()
}

func (f *FileStorage) flush() error {
	raw, err := json.Marshal(f.data)
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, raw, 0600)
}

// AuthAPI 会话依赖的认证操作，由 *client.Client 实现
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*client.Credentials, error)
	Logout(ctx context.Context) error
	Profile(ctx context.Context, email string) (*model.User, error)
}

// Session 显式的应用级认证上下文：
// 持有当前用户，提供 Login/Logout/Refresh，变更通过订阅回调广播，
// 依赖通过构造函数显式传入，不走全局单例
type Session struct {
	api     AuthAPI
	storage Storage

	mu    sync.Mutex
	user  *model.User
	token string
	subs  map[int]func(*model.User)
	nextS int
}

func NewSession(api AuthAPI, storage Storage) *Session {
	s := &Session{
		api:     api,
		storage: storage,
		subs:    make(map[int]func(*model.User)),
	}

	// 恢复缓存的登录态（profile 缓存用于后端不可达时的回退展示）
	if token, ok := storage.Get(storageKeyToken); ok {
		s.token = token
	}
	if raw, ok := storage.Get(storageKeyProfile); ok {
		var user model.User
		if err := json.Unmarshal([]byte(raw), &user); err == nil {
			s.user = &user
		}
	}
	return s
}

// Current 当前用户（未登录返回 nil）
func (s *Session) Current() *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Token 当前认证 Token
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Subscribe 订阅用户变更，返回取消订阅函数
func (s *Session) Subscribe(fn func(*model.User)) func() {
	s.mu.Lock()
	id := s.nextS
	s.nextS++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Session) broadcast(user *model.User) {
	s.mu.Lock()
	fns := make([]func(*model.User), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(user)
	}
}

// Login 登录；remember 为 true 时记住邮箱供下次预填
func (s *Session) Login(ctx context.Context, email, password string, remember bool) (*model.User, error) {
	creds, err := s.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	user := creds.User
	s.mu.Lock()
	s.user = &user
	s.token = creds.Token
	s.mu.Unlock()

	s.storage.Set(storageKeyToken, creds.Token)
	if raw, err := json.Marshal(&user); err == nil {
		s.storage.Set(storageKeyProfile, string(raw))
	}
	if remember {
		s.storage.Set(storageKeyRemember, email)
	} else {
		s.storage.Delete(storageKeyRemember)
	}

	s.broadcast(&user)
	return &user, nil
}

// Logout 登出：即使后端调用失败也清除本地状态
func (s *Session) Logout(ctx context.Context) error {
	err := s.api.Logout(ctx)
	if err != nil {
		log.Printf("[ERROR] Logout request failed: %v", err)
	}

	s.mu.Lock()
	s.user = nil
	s.token = ""
	s.mu.Unlock()

	// 记住的邮箱保留，下次登录预填
	s.storage.Delete(storageKeyToken)
	s.storage.Delete(storageKeyProfile)

	s.broadcast(nil)
	return err
}

// Refresh 重新拉取当前用户资料；失败时保留缓存副本用于回退展示
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	current := s.user
	s.mu.Unlock()
	if current == nil {
		return nil
	}

	user, err := s.api.Profile(ctx, current.Email)
	if err != nil {
		log.Printf("[ERROR] Profile refresh failed, keeping cached copy: %v", err)
		return err
	}

	s.mu.Lock()
	s.user = user
	s.mu.Unlock()

	if raw, err := json.Marshal(user); err == nil {
		s.storage.Set(storageKeyProfile, string(raw))
	}

	s.broadcast(user)
	return nil
}

// RememberedEmail 上次记住的登录邮箱
func (s *Session) RememberedEmail() string {
	email, _ := s.storage.Get(storageKeyRemember)
	return email
}

// SetRedirectPath 记录认证前的目标路径（OAuth 跳转场景）
func (s *Session) SetRedirectPath(path string) {
	s.storage.Set(storageKeyRedirect, path)
}

// ConsumeRedirectPath 取出并清除认证前的目标路径
func (s *Session) ConsumeRedirectPath() string {
	path, ok := s.storage.Get(storageKeyRedirect)
	if !ok {
		return ""
	}
	s.storage.Delete(storageKeyRedirect)
	return path
}
