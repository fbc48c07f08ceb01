package websocket

import (
	"context"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Таймаут записи сообщения клиенту
	writeWait = 10 * time.Second

	// Таймаут ожидания pong от клиента
	pongWait = 60 * time.Second

	// Интервал отправки ping; должен быть меньше pongWait
	pingPeriod = (pongWait * 9) / 10

	// Максимальный размер входящего сообщения. Клиенты ничего не
	// присылают по этому каналу, кроме контрольных фреймов.
	maxMessageSize = 512
)

// Client - одно WebSocket-соединение, подписанное на события сессии
type Client struct {
	conn      *websocket.Conn
	sessionID uint
	events    <-chan []byte
	cancel    context.CancelFunc
}

func newClient(conn *websocket.Conn, sessionID uint, events <-chan []byte, cancel context.CancelFunc) *Client {
	return &Client{
		conn:      conn,
		sessionID: sessionID,
		events:    events,
		cancel:    cancel,
	}
}

// writePump пересылает события из pub/sub в соединение и пингует клиента
func (c *Client) writePump(onClose func()) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
		onClose()
	}()

	for {
		select {
		case event, ok := <-c.events:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Подписка закрыта, прощаемся с клиентом
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, event); err != nil {
				log.Printf("[Relay] Ошибка записи клиенту сессии #%d: %v", c.sessionID, err)
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

// readPump вычитывает входящие фреймы ради контроля соединения.
// Полезных сообщений от клиента по этому каналу нет.
func (c *Client) readPump() {
	defer c.close()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[Relay] Неожиданное закрытие соединения сессии #%d: %v", c.sessionID, err)
			}
			return
		}
	}
}

// close отменяет подписку и закрывает соединение
func (c *Client) close() {
	c.cancel()
	c.conn.Close()
}
