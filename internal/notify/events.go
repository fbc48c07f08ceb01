package notify

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Виды событий сессии. Событие не несет состояние, а лишь подсказывает
// клиенту, что пора перечитать соответствующий ресурс.
const (
	EventStatusChanged      = "status_changed"
	EventQuestionAdvanced   = "question_advanced"
	EventPlayerJoined       = "player_joined"
	EventAnswerRecorded     = "answer_recorded"
	EventLeaderboardUpdated = "leaderboard_updated"
)

// Event представляет событие сессии, рассылаемое подписчикам.
// Доставка at-least-once: клиенты обязаны переживать дубликаты.
type Event struct {
	// ID уникален для каждой публикации, позволяет клиентам дедуплицировать
	ID        string          `json:"id"`
	SessionID uint            `json:"session_id"`
	Kind      string          `json:"kind"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	At        time.Time       `json:"at"`
}

// NewEvent создает событие с уникальным ID и текущим временем
func NewEvent(sessionID uint, kind string, payload interface{}) (Event, error) {
	evt := Event{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Kind:      kind,
		At:        time.Now(),
	}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return Event{}, fmt.Errorf("marshal event payload: %w", err)
		}
		evt.Payload = data
	}
	return evt, nil
}

// ChannelName возвращает имя pub/sub канала событий сессии
func ChannelName(sessionID uint) string {
	return fmt.Sprintf("session:%d:events", sessionID)
}

// Publisher определяет интерфейс для публикации событий сессии
type Publisher interface {
	// PublishEvent публикует событие в канал сессии
	PublishEvent(event Event) error
}
