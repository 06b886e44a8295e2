package ws

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Hub 管理在线连接：后台管理员接收全站订单动态，顾客只接收自己的订单消息
type Hub struct {
	// 每个用户可以有多个连接（多标签页、重连等场景）
	clients map[int64]map[*Client]struct{}
	mu      sync.RWMutex
	log     *logrus.Entry
}

type Client struct {
	UserID int64
	Admin  bool
	Conn   *websocket.Conn
	mu     sync.Mutex // 写锁，防止并发写入
}

type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		clients: make(map[int64]map[*Client]struct{}),
		log:     log.WithField("component", "ws"),
	}
}

func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[client.UserID] == nil {
		h.clients[client.UserID] = make(map[*Client]struct{})
	}
	h.clients[client.UserID][client] = struct{}{}

	h.log.WithFields(logrus.Fields{
		"user_id":    client.UserID,
		"admin":      client.Admin,
		"user_conns": len(h.clients[client.UserID]),
	}).Debug("client connected")
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, ok := h.clients[client.UserID]; ok {
		delete(conns, client)
		if len(conns) == 0 {
			delete(h.clients, client.UserID)
		}
	}
	h.log.WithField("user_id", client.UserID).Debug("client disconnected")
}

// SendToUser 向指定用户的所有连接发送消息
func (h *Hub) SendToUser(userID int64, msg *Message) error {
	return h.send(msg, func(c *Client) bool { return c.UserID == userID })
}

// BroadcastAdmins 向所有管理员连接广播
func (h *Hub) BroadcastAdmins(msg *Message) error {
	return h.send(msg, func(c *Client) bool { return c.Admin })
}

func (h *Hub) send(msg *Message, match func(*Client) bool) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	// 复制一份引用，避免长时间持锁
	h.mu.RLock()
	var targets []*Client
	for _, conns := range h.clients {
		for c := range conns {
			if match(c) {
				targets = append(targets, c)
			}
		}
	}
	h.mu.RUnlock()

	for _, c := range targets {
		c.mu.Lock()
		err := c.Conn.WriteMessage(websocket.TextMessage, data)
		c.mu.Unlock()
		if err != nil {
			h.log.WithError(err).WithField("user_id", c.UserID).Warn("websocket write failed")
		}
	}
	return nil
}

// IsOnline 检查用户是否在线
func (h *Hub) IsOnline(userID int64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	conns, ok := h.clients[userID]
	return ok && len(conns) > 0
}

// ConnectionCount 获取在线连接数
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	total := 0
	for _, conns := range h.clients {
		total += len(conns)
	}
	return total
}
