package entity

import (
	"time"
)

// Answer представляет ответ игрока на вопрос сессии.
// Уникальный индекс (session_id, question_id, player_code) — ключ
// идемпотентности всей системы: максимум один ответ на игрока на вопрос,
// дубликаты отсекаются ограничением БД, а не проверками на клиенте.
type Answer struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	SessionID     uint      `gorm:"not null;index;uniqueIndex:idx_session_question_player" json:"session_id"`
	QuestionID    uint      `gorm:"not null;uniqueIndex:idx_session_question_player" json:"question_id"`
	PlayerCode    string    `gorm:"size:7;not null;uniqueIndex:idx_session_question_player" json:"player_code"`
	SelectedIndex int       `gorm:"not null;default:-1" json:"selected_index"`
	SubmittedAt   time.Time `gorm:"not null" json:"submitted_at"`
	CreatedAt     time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (Answer) TableName() string {
	return "answers"
}
