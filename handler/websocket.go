package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"designhive/middleware"
	"designhive/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// TODO: 生产环境需要检查 Origin
		return true
	},
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	presenceExpire = 90 * time.Second
)

// Client WebSocket 客户端
type Client struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Conn   *websocket.Conn
	Send   chan []byte
	Hub    *Hub

	mu     sync.Mutex
	closed bool // Send channel 是否已关闭
}

// Hub WebSocket 连接管理中心：只负责关注事件推送（通知、角标数）
type Hub struct {
	// 在线用户 map[userID]map[clientID]*Client（支持多设备）
	Clients map[uuid.UUID]map[uuid.UUID]*Client
	mu      sync.RWMutex

	// 每个用户的最大连接数
	MaxConnectionsPerUser int

	rdb *redis.Client // 在线状态（可为 nil）
}

// NewHub 创建 Hub
func NewHub(rdb *redis.Client) *Hub {
	return &Hub{
		Clients:               make(map[uuid.UUID]map[uuid.UUID]*Client),
		MaxConnectionsPerUser: 8,
		rdb:                   rdb,
	}
}

// Register 注册客户端（支持多设备，限制最大连接数）
func (h *Hub) Register(client *Client) bool {
	h.mu.Lock()

	if h.Clients[client.UserID] == nil {
		h.Clients[client.UserID] = make(map[uuid.UUID]*Client)
	}

	if len(h.Clients[client.UserID]) >= h.MaxConnectionsPerUser {
		h.mu.Unlock()

		log.Printf("[ERROR] User %s exceeds max connections (%d), rejecting client %s",
			client.UserID, h.MaxConnectionsPerUser, client.ID)

		client.Conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "too many devices"))
		client.Conn.Close()
		return false
	}

	h.Clients[client.UserID][client.ID] = client
	h.mu.Unlock()

	h.setPresence(client.UserID)
	return true
}

// Unregister 注销客户端
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	if clients, ok := h.Clients[client.UserID]; ok {
		if _, ok := clients[client.ID]; ok {
			delete(clients, client.ID)
			client.close()
			if len(clients) == 0 {
				delete(h.Clients, client.UserID)
				defer h.clearPresence(client.UserID)
			}
		}
	}
	h.mu.Unlock()
}

// SendToUser 推送消息给某个用户的所有在线设备
func (h *Hub) SendToUser(userID uuid.UUID, payload interface{}) bool {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[ERROR] Failed to marshal ws payload: %v", err)
		return false
	}

	h.mu.RLock()
	clients := make([]*Client, 0, len(h.Clients[userID]))
	for _, client := range h.Clients[userID] {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	sent := false
	for _, client := range clients {
		if client.trySend(data) {
			sent = true
		}
	}
	return sent
}

// IsUserOnline 用户是否有在线设备
func (h *Hub) IsUserOnline(userID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.Clients[userID]) > 0
}

// ForceOffline 强制下线（登出时调用）
func (h *Hub) ForceOffline(userID uuid.UUID) {
	h.mu.Lock()
	clients := h.Clients[userID]
	delete(h.Clients, userID)
	h.mu.Unlock()

	for _, client := range clients {
		client.close()
		client.Conn.Close()
	}
	h.clearPresence(userID)
}

func (h *Hub) setPresence(userID uuid.UUID) {
	if h.rdb == nil {
		return
	}
	h.rdb.Set(context.Background(), "online:"+userID.String(), "1", presenceExpire)
}

func (h *Hub) clearPresence(userID uuid.UUID) {
	if h.rdb == nil {
		return
	}
	h.rdb.Del(context.Background(), "online:"+userID.String())
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}

func (c *Client) trySend(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- data:
		return true
	default:
		// 发送缓冲已满，丢弃该设备的这条推送
		return false
	}
}

// HandleWebSocket WebSocket 连接入口（token 认证走 query 参数）
func HandleWebSocket(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			utils.Unauthorized(c, "missing token")
			return
		}

		claims, err := middleware.ValidateToken(token)
		if err != nil {
			utils.Unauthorized(c, "invalid token")
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("[ERROR] WebSocket upgrade failed: %v", err)
			return
		}

		client := &Client{
			ID:     uuid.New(),
			UserID: claims.UserID,
			Conn:   conn,
			Send:   make(chan []byte, 64),
			Hub:    hub,
		}

		if !hub.Register(client) {
			return
		}

		go client.writePump()
		go client.readPump()
	}
}

// readPump 只消费心跳，客户端不通过 WebSocket 发业务数据
func (c *Client) readPump() {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(512)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		c.Hub.setPresence(c.UserID)
		return nil
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
