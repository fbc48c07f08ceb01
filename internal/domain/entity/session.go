package entity

import (
	"time"
)

// Константы статусов сессии
const (
	SessionStatusWaiting  = "waiting"
	SessionStatusPlaying  = "playing"
	SessionStatusFinished = "finished"
)

// Session представляет живой запуск викторины: свои игроки, ответы
// и курсор текущего вопроса.
//
// Инварианты:
//   - CurrentQuestionID либо nil, либо ID вопроса этой викторины;
//   - Started == true влечёт Status != waiting;
//   - в статусе finished курсор всегда nil.
type Session struct {
	ID                uint   `gorm:"primaryKey" json:"id"`
	QuizID            uint   `gorm:"not null;index" json:"quiz_id"`
	Status            string `gorm:"size:20;not null;default:'waiting';index" json:"status"`
	Started           bool   `gorm:"not null;default:false" json:"started"`
	CurrentQuestionID *uint  `json:"current_question_id"`
	// QuestionStartedAt - серверное время последнего advance. От него
	// считается затухание очков при приеме ответа и подсказка "сколько
	// осталось" при ресинке клиента; дедлайн не навязывается сервером,
	// advance выполняет хост.
	QuestionStartedAt *time.Time `json:"question_started_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Session) TableName() string {
	return "sessions"
}

// IsWaiting проверяет, находится ли сессия в зале ожидания
func (s *Session) IsWaiting() bool {
	return s.Status == SessionStatusWaiting
}

// IsPlaying проверяет, идет ли сессия
func (s *Session) IsPlaying() bool {
	return s.Status == SessionStatusPlaying
}

// IsFinished проверяет, завершена ли сессия
func (s *Session) IsFinished() bool {
	return s.Status == SessionStatusFinished
}
