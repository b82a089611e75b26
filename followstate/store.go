// Package followstate 是各视图复用的关注关系状态模块：
// 统一的 加载/就绪/出错 状态机、按行跟踪的 mutating 子状态、
// 成功后的乐观本地更新，以及 3 秒自动消失的通知横幅。
// 每个视图组合自己的 Store 实例，各自持有独立的数据副本。
package followstate

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"designhive/model"

	"github.com/google/uuid"
)

// API 视图层依赖的后端操作集合，由 *client.Client 实现
type API interface {
	PendingIncoming(ctx context.Context, receiverEmail string) ([]model.FollowEdge, error)
	PendingOutgoing(ctx context.Context, senderEmail string) ([]model.FollowEdge, error)
	Followers(ctx context.Context, email string) ([]model.FollowEdge, error)
	Following(ctx context.Context, email string) ([]model.FollowEdge, error)
	Statuses(ctx context.Context, senderEmail string) (map[string]string, error)
	Send(ctx context.Context, senderEmail, receiverEmail string) (*model.FollowEdge, error)
	Accept(ctx context.Context, requestID uuid.UUID) error
	Cancel(ctx context.Context, senderEmail, receiverEmail string) error
	Unfollow(ctx context.Context, senderEmail, receiverEmail string) error
	RemoveFollower(ctx context.Context, receiverEmail, senderEmail string) error
	AllUsers(ctx context.Context) ([]model.UserSummary, error)
}

// 视图状态机阶段
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseReady   Phase = "ready"
	PhaseError   Phase = "error"
)

// View 列表视图类型（决定加载哪个投影）
type View string

const (
	ViewPendingIncoming View = "pending_incoming" // 收到的请求（Profile 页）
	ViewPendingOutgoing View = "pending_outgoing" // 发出的请求（SentRequests 页）
	ViewFollowers       View = "followers"
	ViewFollowing       View = "following"
)

// Action 行级操作
type Action string

const (
	ActionAccept         Action = "accept"
	ActionCancel         Action = "cancel" // 撤回发出的请求，或拒绝收到的请求
	ActionUnfollow       Action = "unfollow"
	ActionRemoveFollower Action = "remove_follower"
)

// ErrMutationInFlight 同一行的操作还在进行中（按钮禁用期间的重复触发）
var ErrMutationInFlight = errors.New("mutation already in flight for this row")

// Store 单个视图的关注关系状态
type Store struct {
	api     API
	view    View
	self    string // 当前登录用户邮箱
	notices *Notices

	mu       sync.Mutex
	phase    Phase
	loadErr  error
	edges    []model.FollowEdge
	mutating map[string]bool
	onChange func()
}

func NewStore(api API, view View, selfEmail string, notices *Notices) *Store {
	return &Store{
		api:      api,
		view:     view,
		self:     selfEmail,
		notices:  notices,
		phase:    PhaseIdle,
		mutating: make(map[string]bool),
	}
}

// OnChange 注册变更回调（视图重绘）
func (s *Store) OnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

func (s *Store) notify() {
	s.mu.Lock()
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Load 拉取当前视图的列表；失败进入 error 状态，Retry 再调用即可
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	s.phase = PhaseLoading
	s.mu.Unlock()
	s.notify()

	edges, err := s.fetch(ctx)

	s.mu.Lock()
	if err != nil {
		s.phase = PhaseError
		s.loadErr = err
	} else {
		s.phase = PhaseReady
		s.loadErr = nil
		s.edges = edges
	}
	s.mu.Unlock()
	s.notify()

	if err != nil {
		log.Printf("[ERROR] Failed to load %s list: %v", s.view, err)
	}
	return err
}

// Retry 错误状态下的手动重试
func (s *Store) Retry(ctx context.Context) error {
	return s.Load(ctx)
}

func (s *Store) fetch(ctx context.Context) ([]model.FollowEdge, error) {
	switch s.view {
	case ViewPendingIncoming:
		return s.api.PendingIncoming(ctx, s.self)
	case ViewPendingOutgoing:
		return s.api.PendingOutgoing(ctx, s.self)
	case ViewFollowers:
		return s.api.Followers(ctx, s.self)
	case ViewFollowing:
		return s.api.Following(ctx, s.self)
	default:
		return nil, fmt.Errorf("unknown view: %s", s.view)
	}
}

// Phase 当前阶段
func (s *Store) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Err 最近一次加载错误
func (s *Store) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadErr
}

// Edges 当前列表快照
func (s *Store) Edges() []model.FollowEdge {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.FollowEdge, len(s.edges))
	copy(out, s.edges)
	return out
}

// Mutating 某行是否正在操作中（渲染行内 spinner、禁用按钮）
func (s *Store) Mutating(edge model.FollowEdge) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mutating[edge.ID.String()]
}

// Mutate 执行行级操作：成功后直接从内存列表中剔除该行（乐观更新），
// 失败则列表保持不变，推送错误横幅并记录日志
func (s *Store) Mutate(ctx context.Context, action Action, edge model.FollowEdge) error {
	key := edge.ID.String()

	s.mu.Lock()
	if s.mutating[key] {
		s.mu.Unlock()
		return ErrMutationInFlight
	}
	s.mutating[key] = true
	s.mu.Unlock()
	s.notify()

	err := s.perform(ctx, action, edge)

	s.mu.Lock()
	delete(s.mutating, key)
	if err == nil {
		for i := range s.edges {
			if s.edges[i].ID == edge.ID {
				s.edges = append(s.edges[:i], s.edges[i+1:]...)
				break
			}
		}
	}
	s.mu.Unlock()
	s.notify()

	if err != nil {
		log.Printf("[ERROR] Failed to %s follow edge %s: %v", action, edge.ID, err)
		if s.notices != nil {
			s.notices.Push(NoticeError, failureMessage(action))
		}
		return err
	}

	if s.notices != nil {
		s.notices.Push(NoticeSuccess, successMessage(action))
	}
	return nil
}

func (s *Store) perform(ctx context.Context, action Action, edge model.FollowEdge) error {
	switch action {
	case ActionAccept:
		return s.api.Accept(ctx, edge.ID)
	case ActionCancel:
		return s.api.Cancel(ctx, edge.SenderEmail, edge.ReceiverEmail)
	case ActionUnfollow:
		return s.api.Unfollow(ctx, edge.SenderEmail, edge.ReceiverEmail)
	case ActionRemoveFollower:
		return s.api.RemoveFollower(ctx, edge.ReceiverEmail, edge.SenderEmail)
	default:
		return fmt.Errorf("unknown action: %s", action)
	}
}

func successMessage(action Action) string {
	switch action {
	case ActionAccept:
		return "Follow request accepted"
	case ActionCancel:
		return "Follow request canceled successfully"
	case ActionUnfollow:
		return "Unfollowed successfully"
	case ActionRemoveFollower:
		return "Follower removed successfully"
	}
	return "Done"
}

func failureMessage(action Action) string {
	switch action {
	case ActionAccept:
		return "Failed to accept request"
	case ActionCancel:
		return "Failed to cancel follow request"
	case ActionUnfollow:
		return "Failed to unfollow"
	case ActionRemoveFollower:
		return "Failed to remove follower"
	}
	return "Operation failed"
}
