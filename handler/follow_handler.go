package handler

import (
	"designhive/model"
	"designhive/service"
	"designhive/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type FollowHandler struct {
	followSvc *service.FollowService
	userSvc   *service.UserService
}

func NewFollowHandler(followSvc *service.FollowService, userSvc *service.UserService) *FollowHandler {
	return &FollowHandler{followSvc: followSvc, userSvc: userSvc}
}

// 对外契约按邮箱传参，内部统一换算成用户 UUID
func (h *FollowHandler) resolvePair(c *gin.Context, senderEmail, receiverEmail string) (*model.User, *model.User, bool) {
	if senderEmail == "" || receiverEmail == "" {
		utils.BadRequest(c, "senderEmail and receiverEmail are required")
		return nil, nil, false
	}
	if senderEmail == receiverEmail {
		utils.BadRequest(c, "cannot follow yourself")
		return nil, nil, false
	}

	sender, err := h.userSvc.GetByEmail(senderEmail)
	if err != nil {
		utils.NotFound(c, err.Error())
		return nil, nil, false
	}
	receiver, err := h.userSvc.GetByEmail(receiverEmail)
	if err != nil {
		utils.NotFound(c, err.Error())
		return nil, nil, false
	}
	return sender, receiver, true
}

func (h *FollowHandler) resolveUser(c *gin.Context, param string) (*model.User, bool) {
	email := c.Query(param)
	if email == "" {
		utils.BadRequest(c, param+" is required")
		return nil, false
	}
	user, err := h.userSvc.GetByEmail(email)
	if err != nil {
		utils.NotFound(c, err.Error())
		return nil, false
	}
	return user, true
}

// Send 发送关注请求
func (h *FollowHandler) Send(c *gin.Context) {
	sender, receiver, ok := h.resolvePair(c, c.Query("senderEmail"), c.Query("receiverEmail"))
	if !ok {
		return
	}

	request, err := h.followSvc.Send(sender.ID, receiver.ID)
	if err != nil {
		utils.Conflict(c, err.Error())
		return
	}

	edge, err := h.followSvc.Edge(request)
	if err != nil {
		utils.InternalServerError(c, err.Error())
		return
	}

	utils.SuccessWithMessage(c, "Follow request sent", edge)
}

// Accept 接受关注请求
func (h *FollowHandler) Accept(c *gin.Context) {
	requestID, err := uuid.Parse(c.Query("requestId"))
	if err != nil {
		utils.BadRequest(c, "invalid requestId")
		return
	}

	if _, err := h.followSvc.Accept(requestID); err != nil {
		utils.NotFound(c, err.Error())
		return
	}

	utils.SuccessWithMessage(c, "Follow request accepted", nil)
}

// Cancel 取消待处理请求（发送方撤回或接收方拒绝）
func (h *FollowHandler) Cancel(c *gin.Context) {
	sender, receiver, ok := h.resolvePair(c, c.Query("senderEmail"), c.Query("receiverEmail"))
	if !ok {
		return
	}

	if err := h.followSvc.Cancel(sender.ID, receiver.ID); err != nil {
		utils.NotFound(c, err.Error())
		return
	}

	utils.SuccessWithMessage(c, "Follow request canceled", nil)
}

// Unfollow 取消关注
func (h *FollowHandler) Unfollow(c *gin.Context) {
	sender, receiver, ok := h.resolvePair(c, c.Query("senderEmail"), c.Query("receiverEmail"))
	if !ok {
		return
	}

	if err := h.followSvc.Unfollow(sender.ID, receiver.ID); err != nil {
		utils.NotFound(c, err.Error())
		return
	}

	utils.SuccessWithMessage(c, "Unfollowed successfully", nil)
}

// RemoveFollower 移除粉丝（接收方视角删除同一条边）
func (h *FollowHandler) RemoveFollower(c *gin.Context) {
	sender, receiver, ok := h.resolvePair(c, c.Query("senderEmail"), c.Query("receiverEmail"))
	if !ok {
		return
	}

	if err := h.followSvc.RemoveFollower(receiver.ID, sender.ID); err != nil {
		utils.NotFound(c, err.Error())
		return
	}

	utils.SuccessWithMessage(c, "Follower removed", nil)
}

// Pending 收到的待处理请求
func (h *FollowHandler) Pending(c *gin.Context) {
	receiver, ok := h.resolveUser(c, "receiverEmail")
	if !ok {
		return
	}

	edges, err := h.followSvc.PendingIncoming(receiver.ID)
	if err != nil {
		utils.InternalServerError(c, err.Error())
		return
	}
	utils.SuccessResponse(c, edges)
}

// PendingSent 发出的待处理请求
func (h *FollowHandler) PendingSent(c *gin.Context) {
	sender, ok := h.resolveUser(c, "senderEmail")
	if !ok {
		return
	}

	edges, err := h.followSvc.PendingOutgoing(sender.ID)
	if err != nil {
		utils.InternalServerError(c, err.Error())
		return
	}
	utils.SuccessResponse(c, edges)
}

// Followers 粉丝列表
func (h *FollowHandler) Followers(c *gin.Context) {
	user, ok := h.resolveUser(c, "email")
	if !ok {
		return
	}

	edges, err := h.followSvc.Followers(user.ID)
	if err != nil {
		utils.InternalServerError(c, err.Error())
		return
	}
	utils.SuccessResponse(c, edges)
}

// Following 关注列表
func (h *FollowHandler) Following(c *gin.Context) {
	user, ok := h.resolveUser(c, "email")
	if !ok {
		return
	}

	edges, err := h.followSvc.Following(user.ID)
	if err != nil {
		utils.InternalServerError(c, err.Error())
		return
	}
	utils.SuccessResponse(c, edges)
}

// Statuses 以 sender 视角的状态映射
func (h *FollowHandler) Statuses(c *gin.Context) {
	sender, ok := h.resolveUser(c, "senderEmail")
	if !ok {
		return
	}

	statuses, err := h.followSvc.Statuses(sender.ID)
	if err != nil {
		utils.InternalServerError(c, err.Error())
		return
	}
	utils.SuccessResponse(c, statuses)
}

// PendingCount 待处理请求数（导航栏角标）
func (h *FollowHandler) PendingCount(c *gin.Context) {
	receiver, ok := h.resolveUser(c, "receiverEmail")
	if !ok {
		return
	}

	count, err := h.followSvc.PendingCount(receiver.ID)
	if err != nil {
		utils.InternalServerError(c, err.Error())
		return
	}
	utils.SuccessResponse(c, gin.H{"count": count})
}
