package entity

import (
	"time"
)

// Quiz представляет викторину (контент: заголовок и упорядоченный список вопросов).
// Контент неизменяем, пока хотя бы одна сессия по этой викторине находится
// в статусе playing — это проверяется на уровне сервиса.
type Quiz struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	OwnerID       uint       `gorm:"not null;index" json:"owner_id"`
	Title         string     `gorm:"size:100;not null" json:"title"`
	ShortID       string     `gorm:"size:4;not null;index" json:"short_id"`
	QuestionCount int        `gorm:"not null;default:0" json:"question_count"`
	Questions     []Question `gorm:"foreignKey:QuizID" json:"questions,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Quiz) TableName() string {
	return "quizzes"
}

// QuestionByID возвращает вопрос викторины по его ID или nil.
func (q *Quiz) QuestionByID(questionID uint) *Question {
	for i := range q.Questions {
		if q.Questions[i].ID == questionID {
			return &q.Questions[i]
		}
	}
	return nil
}

// QuestionIndex возвращает позицию вопроса в викторине или -1.
func (q *Quiz) QuestionIndex(questionID uint) int {
	for i := range q.Questions {
		if q.Questions[i].ID == questionID {
			return i
		}
	}
	return -1
}
