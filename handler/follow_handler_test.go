package handler

import (
	"net/http"
	"testing"

	"designhive/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFollowFlow_SendAcceptLists 完整 HTTP 闭环：
// 1. A 发送请求，响应里带创建的边（senderEmail/receiverEmail/status）
// 2. B 的 /follow/pending 能看到这条请求
// 3. B 接受后 followers/following 各出现一条，pending 清空
func TestFollowFlow_SendAcceptLists(t *testing.T) {
	env := setupTestEnv(t)
	_, tokenA := env.registerUser(t, "a@example.com", "alice")
	_, tokenB := env.registerUser(t, "b@example.com", "bob")

	w, resp := env.request(t, http.MethodPost,
		"/api/follow/send?senderEmail=a@example.com&receiverEmail=b@example.com", tokenA, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var edge model.FollowEdge
	decodeData(t, resp.Data, &edge)
	assert.Equal(t, "a@example.com", edge.SenderEmail)
	assert.Equal(t, "b@example.com", edge.ReceiverEmail)
	assert.Equal(t, model.FollowStatusPending, edge.Status)
	assert.NotEmpty(t, edge.ID)

	// B 查看待处理列表
	w, resp = env.request(t, http.MethodGet,
		"/api/follow/pending?receiverEmail=b@example.com", tokenB, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var pending []model.FollowEdge
	decodeData(t, resp.Data, &pending)
	require.Len(t, pending, 1)
	assert.Equal(t, edge.ID, pending[0].ID)

	// B 接受
	w, _ = env.request(t, http.MethodPost,
		"/api/follow/accept?requestId="+edge.ID.String(), tokenB, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// followers / following 各一条
	w, resp = env.request(t, http.MethodGet,
		"/api/follow/followers?email=b@example.com", tokenB, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var followers []model.FollowEdge
	decodeData(t, resp.Data, &followers)
	require.Len(t, followers, 1)
	assert.Equal(t, "a@example.com", followers[0].SenderEmail)

	w, resp = env.request(t, http.MethodGet,
		"/api/follow/following?email=a@example.com", tokenA, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var following []model.FollowEdge
	decodeData(t, resp.Data, &following)
	require.Len(t, following, 1)
	assert.Equal(t, "b@example.com", following[0].ReceiverEmail)

	// pending 清空
	w, resp = env.request(t, http.MethodGet,
		"/api/follow/pending?receiverEmail=b@example.com", tokenB, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var left []model.FollowEdge
	decodeData(t, resp.Data, &left)
	assert.Empty(t, left)
}

func TestFollowSend_Validation(t *testing.T) {
	env := setupTestEnv(t)
	_, tokenA := env.registerUser(t, "a@example.com", "alice")

	// 缺参数
	w, _ := env.request(t, http.MethodPost,
		"/api/follow/send?senderEmail=a@example.com", tokenA, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 关注自己
	w, _ = env.request(t, http.MethodPost,
		"/api/follow/send?senderEmail=a@example.com&receiverEmail=a@example.com", tokenA, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 接收方不存在
	w, _ = env.request(t, http.MethodPost,
		"/api/follow/send?senderEmail=a@example.com&receiverEmail=ghost@example.com", tokenA, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFollowSend_DuplicateConflict(t *testing.T) {
	env := setupTestEnv(t)
	_, tokenA := env.registerUser(t, "a@example.com", "alice")
	env.registerUser(t, "b@example.com", "bob")

	w, _ := env.request(t, http.MethodPost,
		"/api/follow/send?senderEmail=a@example.com&receiverEmail=b@example.com", tokenA, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = env.request(t, http.MethodPost,
		"/api/follow/send?senderEmail=a@example.com&receiverEmail=b@example.com", tokenA, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestFollowAccept_InvalidRequestID(t *testing.T) {
	env := setupTestEnv(t)
	_, tokenA := env.registerUser(t, "a@example.com", "alice")

	w, _ := env.request(t, http.MethodPost,
		"/api/follow/accept?requestId=not-a-uuid", tokenA, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = env.request(t, http.MethodPost,
		"/api/follow/accept?requestId=6e0c4ceb-0b5a-4b9f-b6a7-8f1e3b6a7d01", tokenA, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// TestFollowCancel_BothDirections cancel 既用于发送方撤回也用于接收方拒绝
func TestFollowCancel_BothDirections(t *testing.T) {
	env := setupTestEnv(t)
	_, tokenA := env.registerUser(t, "a@example.com", "alice")
	_, tokenB := env.registerUser(t, "b@example.com", "bob")

	w, _ := env.request(t, http.MethodPost,
		"/api/follow/send?senderEmail=a@example.com&receiverEmail=b@example.com", tokenA, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// 接收方 B 拒绝：参数仍然是 sender/receiver 的原始方向
	w, _ = env.request(t, http.MethodPost,
		"/api/follow/cancel?senderEmail=a@example.com&receiverEmail=b@example.com", tokenB, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// 再取消：已经没有 pending
	w, _ = env.request(t, http.MethodPost,
		"/api/follow/cancel?senderEmail=a@example.com&receiverEmail=b@example.com", tokenA, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFollowStatuses_Map(t *testing.T) {
	env := setupTestEnv(t)
	userA, tokenA := env.registerUser(t, "a@example.com", "alice")
	userB, _ := env.registerUser(t, "b@example.com", "bob")
	userC, _ := env.registerUser(t, "c@example.com", "carol")

	// A -> B pending, A -> C accepted
	_, err := env.followSvc.Send(userA.ID, userB.ID)
	require.NoError(t, err)
	request, err := env.followSvc.Send(userA.ID, userC.ID)
	require.NoError(t, err)
	_, err = env.followSvc.Accept(request.ID)
	require.NoError(t, err)

	w, resp := env.request(t, http.MethodGet,
		"/api/follow/statuses?senderEmail=a@example.com", tokenA, nil)
	require.Equal(t, http.StatusOK, w.Code)

	statuses := map[string]string{}
	decodeData(t, resp.Data, &statuses)
	assert.Equal(t, model.FollowStatusPending, statuses["b@example.com"])
	assert.Equal(t, model.FollowStatusAccepted, statuses["c@example.com"])
	_, exists := statuses["a@example.com"]
	assert.False(t, exists)
}

func TestFollowRemoveFollower(t *testing.T) {
	env := setupTestEnv(t)
	userA, _ := env.registerUser(t, "a@example.com", "alice")
	userB, tokenB := env.registerUser(t, "b@example.com", "bob")

	request, err := env.followSvc.Send(userA.ID, userB.ID)
	require.NoError(t, err)
	_, err = env.followSvc.Accept(request.ID)
	require.NoError(t, err)

	w, _ := env.request(t, http.MethodPost,
		"/api/follow/remove-follower?receiverEmail=b@example.com&senderEmail=a@example.com", tokenB, nil)
	require.Equal(t, http.StatusOK, w.Code)

	followers, err := env.followSvc.Followers(userB.ID)
	require.NoError(t, err)
	assert.Empty(t, followers)
}

func TestFollowRoutes_RequireAuth(t *testing.T) {
	env := setupTestEnv(t)

	w, _ := env.request(t, http.MethodGet,
		"/api/follow/pending?receiverEmail=b@example.com", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = env.request(t, http.MethodPost,
		"/api/follow/send?senderEmail=a@example.com&receiverEmail=b@example.com", "bad-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestFollowPendingCount(t *testing.T) {
	env := setupTestEnv(t)
	userA, _ := env.registerUser(t, "a@example.com", "alice")
	_, tokenB := env.registerUser(t, "b@example.com", "bob")
	userB, err := env.userSvc.GetByEmail("b@example.com")
	require.NoError(t, err)

	_, err = env.followSvc.Send(userA.ID, userB.ID)
	require.NoError(t, err)

	w, resp := env.request(t, http.MethodGet,
		"/api/follow/pending-count?receiverEmail=b@example.com", tokenB, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var out struct {
		Count int64 `json:"count"`
	}
	decodeData(t, resp.Data, &out)
	assert.EqualValues(t, 1, out.Count)
}
