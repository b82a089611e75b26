package followstate

import (
	"context"
	"log"
	"sync"

	"designhive/model"
)

// DefaultSuggestionStep 每次展开的推荐数量
const DefaultSuggestionStep = 5

// Suggestion 一条推荐项：用户 + 当前关注状态
type Suggestion struct {
	User   model.UserSummary
	Status string // none | pending | accepted
}

// Suggestions 推荐列表：排除自己和已关注用户，保留 pending
//（pending 的用户渲染成禁用的 "Requested"），展示用客户端切片翻页，
// 数据一次拉全，不走服务端分页
type Suggestions struct {
	api     API
	self    string
	step    int
	notices *Notices

	mu       sync.Mutex
	phase    Phase
	users    []model.UserSummary
	statuses map[string]string
	visible  int
	mutating map[string]bool
}

func NewSuggestions(api API, selfEmail string, step int, notices *Notices) *Suggestions {
	if step <= 0 {
		step = DefaultSuggestionStep
	}
	return &Suggestions{
		api:      api,
		self:     selfEmail,
		step:     step,
		notices:  notices,
		phase:    PhaseIdle,
		statuses: make(map[string]string),
		mutating: make(map[string]bool),
	}
}

// Load 拉取全量用户和状态映射
func (s *Suggestions) Load(ctx context.Context) error {
	s.mu.Lock()
	s.phase = PhaseLoading
	s.mu.Unlock()

	users, err := s.api.AllUsers(ctx)
	if err == nil {
		var statuses map[string]string
		statuses, err = s.api.Statuses(ctx, s.self)
		if err == nil {
			s.mu.Lock()
			s.phase = PhaseReady
			s.users = users
			s.statuses = statuses
			s.visible = s.step
			s.mu.Unlock()
			return nil
		}
	}

	s.mu.Lock()
	s.phase = PhaseError
	s.mu.Unlock()
	log.Printf("[ERROR] Failed to load suggestions: %v", err)
	return err
}

// Phase 当前阶段
func (s *Suggestions) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Status 某用户相对自己的状态
func (s *Suggestions) Status(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status, ok := s.statuses[email]; ok {
		return status
	}
	return model.FollowStatusNone
}

// candidates 过滤后的候选：排除自己和 accepted，保留 pending
func (s *Suggestions) candidates() []Suggestion {
	out := make([]Suggestion, 0, len(s.users))
	for _, user := range s.users {
		if user.Email == s.self {
			continue
		}
		status := s.statuses[user.Email]
		if status == model.FollowStatusAccepted {
			continue
		}
		if status == "" {
			status = model.FollowStatusNone
		}
		out = append(out, Suggestion{User: user, Status: status})
	}
	return out
}

// Visible 当前展示的推荐切片
func (s *Suggestions) Visible() []Suggestion {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.candidates()
	if s.visible >= len(all) {
		return all
	}
	return all[:s.visible]
}

// HasMore 是否还有未展开的推荐
func (s *Suggestions) HasMore() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible < len(s.candidates())
}

// ShowMore 再展开一批
func (s *Suggestions) ShowMore() {
	s.mu.Lock()
	s.visible += s.step
	s.mu.Unlock()
}

// Following 已关注用户（accepted），用于页面顶部的 Following 区块
func (s *Suggestions) Following() []Suggestion {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Suggestion, 0)
	for _, user := range s.users {
		if s.statuses[user.Email] == model.FollowStatusAccepted {
			out = append(out, Suggestion{User: user, Status: model.FollowStatusAccepted})
		}
	}
	return out
}

// Mutating 某用户的关注操作是否进行中
func (s *Suggestions) Mutating(email string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mutating[email]
}

// Follow 发送关注请求；成功后重新拉取状态映射（而不是本地改写）
func (s *Suggestions) Follow(ctx context.Context, receiverEmail string) error {
	return s.mutate(ctx, receiverEmail, func() error {
		_, err := s.api.Send(ctx, s.self, receiverEmail)
		return err
	}, "Follow request sent", "Failed to send follow request")
}

// Unfollow 取消关注；成功后重新拉取状态映射
func (s *Suggestions) Unfollow(ctx context.Context, receiverEmail string) error {
	return s.mutate(ctx, receiverEmail, func() error {
		return s.api.Unfollow(ctx, s.self, receiverEmail)
	}, "Unfollowed successfully", "Failed to unfollow")
}

func (s *Suggestions) mutate(ctx context.Context, email string, call func() error, okMsg, failMsg string) error {
	s.mu.Lock()
	if s.mutating[email] {
		s.mu.Unlock()
		return ErrMutationInFlight
	}
	s.mutating[email] = true
	s.mu.Unlock()

	err := call()

	if err == nil {
		// 刷新状态映射，保持和后端一致
		if statuses, refreshErr := s.api.Statuses(ctx, s.self); refreshErr == nil {
			s.mu.Lock()
			s.statuses = statuses
			s.mu.Unlock()
		}
	}

	s.mu.Lock()
	delete(s.mutating, email)
	s.mu.Unlock()

	if err != nil {
		log.Printf("[ERROR] Follow mutation for %s failed: %v", email, err)
		if s.notices != nil {
			s.notices.Push(NoticeError, failMsg)
		}
		return err
	}
	if s.notices != nil {
		s.notices.Push(NoticeSuccess, okMsg)
	}
	return nil
}
