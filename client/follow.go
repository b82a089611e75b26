package client

import (
	"context"
	"net/http"

	"designhive/model"

	"github.com/google/uuid"
)

// Send 发送关注请求，返回创建的边
func (c *Client) Send(ctx context.Context, senderEmail, receiverEmail string) (*model.FollowEdge, error) {
	var edge model.FollowEdge
	err := c.do(ctx, http.MethodPost, "/api/follow/send",
		params("senderEmail", senderEmail, "receiverEmail", receiverEmail), nil, &edge)
	if err != nil {
		return nil, err
	}
	return &edge, nil
}

// Accept 接受关注请求
func (c *Client) Accept(ctx context.Context, requestID uuid.UUID) error {
	return c.do(ctx, http.MethodPost, "/api/follow/accept",
		params("requestId", requestID.String()), nil, nil)
}

// Cancel 取消待处理请求（撤回或拒绝）
func (c *Client) Cancel(ctx context.Context, senderEmail, receiverEmail string) error {
	return c.do(ctx, http.MethodPost, "/api/follow/cancel",
		params("senderEmail", senderEmail, "receiverEmail", receiverEmail), nil, nil)
}

// Unfollow 取消关注
func (c *Client) Unfollow(ctx context.Context, senderEmail, receiverEmail string) error {
	return c.do(ctx, http.MethodPost, "/api/follow/unfollow",
		params("senderEmail", senderEmail, "receiverEmail", receiverEmail), nil, nil)
}

// RemoveFollower 移除粉丝
func (c *Client) RemoveFollower(ctx context.Context, receiverEmail, senderEmail string) error {
	return c.do(ctx, http.MethodPost, "/api/follow/remove-follower",
		params("receiverEmail", receiverEmail, "senderEmail", senderEmail), nil, nil)
}

// PendingIncoming 收到的待处理请求
func (c *Client) PendingIncoming(ctx context.Context, receiverEmail string) ([]model.FollowEdge, error) {
	var edges []model.FollowEdge
	err := c.do(ctx, http.MethodGet, "/api/follow/pending",
		params("receiverEmail", receiverEmail), nil, &edges)
	return edges, err
}

// PendingOutgoing 发出的待处理请求
func (c *Client) PendingOutgoing(ctx context.Context, senderEmail string) ([]model.FollowEdge, error) {
	var edges []model.FollowEdge
	err := c.do(ctx, http.MethodGet, "/api/follow/pending-sent",
		params("senderEmail", senderEmail), nil, &edges)
	return edges, err
}

// Followers 粉丝列表
func (c *Client) Followers(ctx context.Context, email string) ([]model.FollowEdge, error) {
	var edges []model.FollowEdge
	err := c.do(ctx, http.MethodGet, "/api/follow/followers",
		params("email", email), nil, &edges)
	return edges, err
}

// Following 关注列表
func (c *Client) Following(ctx context.Context, email string) ([]model.FollowEdge, error) {
	var edges []model.FollowEdge
	err := c.do(ctx, http.MethodGet, "/api/follow/following",
		params("email", email), nil, &edges)
	return edges, err
}

// Statuses 以 sender 视角的状态映射 email -> pending|accepted
func (c *Client) Statuses(ctx context.Context, senderEmail string) (map[string]string, error) {
	statuses := make(map[string]string)
	err := c.do(ctx, http.MethodGet, "/api/follow/statuses",
		params("senderEmail", senderEmail), nil, &statuses)
	return statuses, err
}

// PendingCount 待处理请求数
func (c *Client) PendingCount(ctx context.Context, receiverEmail string) (int64, error) {
	var out struct {
		Count int64 `json:"count"`
	}
	err := c.do(ctx, http.MethodGet, "/api/follow/pending-count",
		params("receiverEmail", receiverEmail), nil, &out)
	return out.Count, err
}
