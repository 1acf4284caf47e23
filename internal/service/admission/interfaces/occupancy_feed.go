package interfaces

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	park "skypark/domain"
	"skypark/internal/pkg/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool { // 简化处理，允许所有跨域
		return true
	},
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// occupancyUpdate 是推给订阅端的实时人数消息。
type occupancyUpdate struct {
	Type       string    `json:"type"` // "ENTER" / "EXIT"
	Attraction string    `json:"attraction"`
	Occupancy  int64     `json:"occupancy"`
	At         time.Time `json:"at"`
}

// OccupancyHub 维护所有活跃的订阅连接，并把入场/离场产生的
// 在园人数变化广播给它们。实现了 AdmissionNotifier，失败只记录。
type OccupancyHub struct {
	clients    map[*feedClient]bool
	register   chan *feedClient
	unregister chan *feedClient
	broadcast  chan []byte
}

func NewOccupancyHub() *OccupancyHub {
	return &OccupancyHub{
		clients:    make(map[*feedClient]bool),
		register:   make(chan *feedClient),
		unregister: make(chan *feedClient),
		broadcast:  make(chan []byte, 64),
	}
}

// Run 驱动 Hub 的注册/注销/广播循环，ctx 结束时关闭所有连接。
func (h *OccupancyHub) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			return nil
		case client := <-h.register:
			h.clients[client] = true
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// 消费不动的连接直接踢掉
					delete(h.clients, client)
					close(client.send)
				}
			}
		}
	}
}

func (h *OccupancyHub) AdmissionRecorded(ctx context.Context, visit *park.Visit, occupancy int64) error {
	return h.publish("ENTER", visit.AttractionName, occupancy)
}

func (h *OccupancyHub) ExitRecorded(ctx context.Context, visit *park.Visit, occupancy int64) error {
	return h.publish("EXIT", visit.AttractionName, occupancy)
}

func (h *OccupancyHub) publish(eventType, attraction string, occupancy int64) error {
	payload, err := json.Marshal(occupancyUpdate{
		Type:       eventType,
		Attraction: attraction,
		Occupancy:  occupancy,
		At:         time.Now(),
	})
	if err != nil {
		return err
	}
	select {
	case h.broadcast <- payload:
	default:
		// 广播队列满则丢弃，实时推送不值得阻塞准入流程
	}
	return nil
}

// ServeWS 把 HTTP 请求升级为 WebSocket 订阅连接。
func (h *OccupancyHub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Ctx(r.Context()).Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &feedClient{hub: h, conn: conn, send: make(chan []byte, 256)}
	h.register <- client

	go client.writePump()
	go client.readPump()
}

// feedClient 是一个订阅连接的代表。
type feedClient struct {
	hub  *OccupancyHub
	conn *websocket.Conn
	send chan []byte
}

// writePump 把 send channel 中的消息写入连接，并定期发送心跳。
func (c *feedClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump 消费心跳响应，连接断开时从 Hub 注销。
func (c *feedClient) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
