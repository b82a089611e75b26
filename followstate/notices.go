package followstate

import (
	"sync"
	"time"
)

// 通知横幅级别
const (
	NoticeSuccess = "success"
	NoticeError   = "error"
)

// DefaultNoticeTTL 横幅自动消失时间
const DefaultNoticeTTL = 3 * time.Second

// Notice 一条瞬时通知横幅
type Notice struct {
	ID      int64
	Level   string
	Message string
}

// Notices 瞬时通知中心：推送后到期自动消失，也可手动关闭
type Notices struct {
	mu       sync.Mutex
	ttl      time.Duration
	nextID   int64
	active   []Notice
	timers   map[int64]*time.Timer
	onChange func()
}

func NewNotices(ttl time.Duration) *Notices {
	if ttl <= 0 {
		ttl = DefaultNoticeTTL
	}
	return &Notices{
		ttl:    ttl,
		timers: make(map[int64]*time.Timer),
	}
}

// OnChange 注册变更回调（视图重绘）
func (n *Notices) OnChange(fn func()) {
	n.mu.Lock()
	n.onChange = fn
	n.mu.Unlock()
}

// Push 推送一条通知，到期自动消失
func (n *Notices) Push(level, message string) int64 {
	n.mu.Lock()
	n.nextID++
	id := n.nextID
	n.active = append(n.active, Notice{ID: id, Level: level, Message: message})
	n.timers[id] = time.AfterFunc(n.ttl, func() {
		n.Dismiss(id)
	})
	fn := n.onChange
	n.mu.Unlock()

	if fn != nil {
		fn()
	}
	return id
}

// Dismiss 手动关闭一条通知
func (n *Notices) Dismiss(id int64) {
	n.mu.Lock()
	if timer, ok := n.timers[id]; ok {
		timer.Stop()
		delete(n.timers, id)
	}
	removed := false
	for i, notice := range n.active {
		if notice.ID == id {
			n.active = append(n.active[:i], n.active[i+1:]...)
			removed = true
			break
		}
	}
	fn := n.onChange
	n.mu.Unlock()

	if removed && fn != nil {
		fn()
	}
}

// Active 当前可见的通知
func (n *Notices) Active() []Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Notice, len(n.active))
	copy(out, n.active)
	return out
}
