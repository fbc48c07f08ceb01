package websocket

import (
	"context"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/yourusername/ququiz-api/internal/notify"
)

// Relay ретранслирует события сессии из pub/sub подписчикам WebSocket.
// Сервер не шлет состояние по WebSocket, только подсказки "перечитай
// ресурс": клиент после события сам запрашивает REST API.
type Relay struct {
	provider notify.PubSubProvider
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*Client]struct{}
}

// NewRelay создает новый ретранслятор событий
func NewRelay(provider notify.PubSubProvider, checkOrigin func(r *http.Request) bool) *Relay {
	if checkOrigin == nil {
		checkOrigin = func(r *http.Request) bool { return true }
	}
	return &Relay{
		provider: provider,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		clients: make(map[*Client]struct{}),
	}
}

// ServeSession апгрейдит HTTP-соединение и подписывает его на события сессии
func (rl *Relay) ServeSession(w http.ResponseWriter, r *http.Request, sessionID uint) error {
	conn, err := rl.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Relay] Ошибка апгрейда соединения для сессии #%d: %v", sessionID, err)
		return err
	}

	ctx, cancel := context.WithCancel(r.Context())
	events, err := rl.provider.Subscribe(ctx, notify.ChannelName(sessionID))
	if err != nil {
		cancel()
		conn.Close()
		log.Printf("[Relay] Ошибка подписки на события сессии #%d: %v", sessionID, err)
		return err
	}

	client := newClient(conn, sessionID, events, cancel)
	rl.add(client)

	go client.writePump(func() { rl.remove(client) })
	go client.readPump()

	log.Printf("[Relay] Клиент подключен к событиям сессии #%d (всего: %d)", sessionID, rl.Count())
	return nil
}

// Count возвращает число подключенных клиентов
func (rl *Relay) Count() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

// Close отключает всех клиентов
func (rl *Relay) Close() {
	rl.mu.Lock()
	clients := make([]*Client, 0, len(rl.clients))
	for c := range rl.clients {
		clients = append(clients, c)
	}
	rl.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
}

func (rl *Relay) add(c *Client) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.clients[c] = struct{}{}
}

func (rl *Relay) remove(c *Client) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.clients, c)
}
