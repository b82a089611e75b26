package service

import (
	"fmt"
	"time"

	"designhive/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FollowService struct {
	db       *gorm.DB
	notifSvc *NotificationService
}

func NewFollowService(db *gorm.DB) *FollowService {
	return &FollowService{db: db}
}

// SetNotificationService 设置通知服务（用于依赖注入）
func (s *FollowService) SetNotificationService(notifSvc *NotificationService) {
	s.notifSvc = notifSvc
}

// Send 发送关注请求 sender -> receiver
func (s *FollowService) Send(senderID, receiverID uuid.UUID) (*model.FollowRequest, error) {
	if senderID == receiverID {
		return nil, fmt.Errorf("cannot follow yourself")
	}

	// 同一对用户最多一条存活的边
	var existing model.FollowRequest
	err := s.db.Where("sender_id = ? AND receiver_id = ?", senderID, receiverID).First(&existing).Error
	if err == nil {
		if existing.Status == model.FollowStatusAccepted {
			return nil, fmt.Errorf("already following this user")
		}
		return nil, fmt.Errorf("follow request already pending")
	}
	if err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("failed to check existing request: %w", err)
	}

	request := &model.FollowRequest{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Status:     model.FollowStatusPending,
	}

	if err := s.db.Create(request).Error; err != nil {
		return nil, fmt.Errorf("failed to create follow request: %w", err)
	}

	s.notifyFollowEvent(receiverID, senderID, model.NotificationFollowRequest)
	s.pushPendingCount(receiverID)

	return request, nil
}

// Accept 接受关注请求：pending -> accepted
func (s *FollowService) Accept(requestID uuid.UUID) (*model.FollowRequest, error) {
	var request model.FollowRequest
	err := s.db.Where("id = ? AND status = ?", requestID, model.FollowStatusPending).First(&request).Error
	if err == gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("pending request not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query request: %w", err)
	}

	now := time.Now()
	request.Status = model.FollowStatusAccepted
	request.AcceptedAt = &now

	if err := s.db.Save(&request).Error; err != nil {
		return nil, fmt.Errorf("failed to accept request: %w", err)
	}

	s.notifyFollowEvent(request.SenderID, request.ReceiverID, model.NotificationFollowAccepted)
	s.pushPendingCount(request.ReceiverID)

	return &request, nil
}

// Cancel 取消 pending 请求（发送方撤回，或接收方拒绝，走同一个删除）
func (s *FollowService) Cancel(senderID, receiverID uuid.UUID) error {
	if err := s.deleteEdge(senderID, receiverID, model.FollowStatusPending, "no pending request"); err != nil {
		return err
	}
	s.pushPendingCount(receiverID)
	return nil
}

// Unfollow 取消关注：删除 accepted 边（发送方视角）
func (s *FollowService) Unfollow(senderID, receiverID uuid.UUID) error {
	return s.deleteEdge(senderID, receiverID, model.FollowStatusAccepted, "not following this user")
}

// RemoveFollower 移除粉丝：同一条 accepted 边，从接收方视角删除
func (s *FollowService) RemoveFollower(receiverID, senderID uuid.UUID) error {
	return s.deleteEdge(senderID, receiverID, model.FollowStatusAccepted, "follower not found")
}

func (s *FollowService) deleteEdge(senderID, receiverID uuid.UUID, status, missing string) error {
	result := s.db.Where("sender_id = ? AND receiver_id = ? AND status = ?", senderID, receiverID, status).
		Delete(&model.FollowRequest{})

	if result.Error != nil {
		return fmt.Errorf("failed to delete follow edge: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%s", missing)
	}
	return nil
}

// PendingIncoming 收到的待处理请求
func (s *FollowService) PendingIncoming(receiverID uuid.UUID) ([]model.FollowEdge, error) {
	return s.listEdges("fr.receiver_id = ? AND fr.status = ?", receiverID, model.FollowStatusPending)
}

// PendingOutgoing 发出的待处理请求
func (s *FollowService) PendingOutgoing(senderID uuid.UUID) ([]model.FollowEdge, error) {
	return s.listEdges("fr.sender_id = ? AND fr.status = ?", senderID, model.FollowStatusPending)
}

// Followers 粉丝列表（指向我的 accepted 边）
func (s *FollowService) Followers(userID uuid.UUID) ([]model.FollowEdge, error) {
	return s.listEdges("fr.receiver_id = ? AND fr.status = ?", userID, model.FollowStatusAccepted)
}

// Following 关注列表（我发出的 accepted 边）
func (s *FollowService) Following(userID uuid.UUID) ([]model.FollowEdge, error) {
	return s.listEdges("fr.sender_id = ? AND fr.status = ?", userID, model.FollowStatusAccepted)
}

func (s *FollowService) listEdges(cond string, args ...interface{}) ([]model.FollowEdge, error) {
	var edges []model.FollowEdge
	err := s.db.Table("follow_requests AS fr").
		Select("fr.id, fr.status, fr.created_at, " +
			"su.email AS sender_email, su.username AS sender_username, " +
			"ru.email AS receiver_email, ru.username AS receiver_username").
		Joins("JOIN users su ON su.id = fr.sender_id").
		Joins("JOIN users ru ON ru.id = fr.receiver_id").
		Where(cond, args...).
		Order("fr.created_at DESC").
		Scan(&edges).Error

	if err != nil {
		return nil, fmt.Errorf("failed to list follow edges: %w", err)
	}
	if edges == nil {
		edges = []model.FollowEdge{}
	}
	return edges, nil
}

// Statuses 以 sender 视角的状态映射：receiverEmail -> pending|accepted
func (s *FollowService) Statuses(senderID uuid.UUID) (map[string]string, error) {
	var rows []struct {
		Email  string
		Status string
	}
	err := s.db.Table("follow_requests AS fr").
		Select("ru.email AS email, fr.status AS status").
		Joins("JOIN users ru ON ru.id = fr.receiver_id").
		Where("fr.sender_id = ?", senderID).
		Scan(&rows).Error

	if err != nil {
		return nil, fmt.Errorf("failed to query statuses: %w", err)
	}

	statuses := make(map[string]string, len(rows))
	for _, row := range rows {
		statuses[row.Email] = row.Status
	}
	return statuses, nil
}

// PendingCount 待处理请求数（导航栏角标）
func (s *FollowService) PendingCount(receiverID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.Model(&model.FollowRequest{}).
		Where("receiver_id = ? AND status = ?", receiverID, model.FollowStatusPending).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count pending requests: %w", err)
	}
	return count, nil
}

// Edge 把存储行展开为对外表示
func (s *FollowService) Edge(request *model.FollowRequest) (*model.FollowEdge, error) {
	edges, err := s.listEdges("fr.id = ?", request.ID)
	if err != nil {
		return nil, err
	}
	if len(edges) == 0 {
		return nil, fmt.Errorf("follow edge not found")
	}
	return &edges[0], nil
}

func (s *FollowService) notifyFollowEvent(userID, actorID uuid.UUID, notifType string) {
	if s.notifSvc == nil {
		return
	}

	var actor model.User
	if err := s.db.First(&actor, "id = ?", actorID).Error; err != nil {
		return
	}

	title := actor.Username + " sent you a follow request"
	if notifType == model.NotificationFollowAccepted {
		title = actor.Username + " accepted your follow request"
	}

	// 通知失败不影响主流程，记录日志即可
	if _, err := s.notifSvc.Create(userID, notifType, title, actor.Email); err != nil {
		s.notifSvc.logError("follow notification", err)
	}
}

func (s *FollowService) pushPendingCount(receiverID uuid.UUID) {
	if s.notifSvc == nil {
		return
	}
	count, err := s.PendingCount(receiverID)
	if err != nil {
		return
	}
	s.notifSvc.PushPendingCount(receiverID, count)
}
