package dto

import (
	"time"

	"github.com/yourusername/ququiz-api/internal/domain/entity"
)

// QuizResponse представляет викторину в ответах API.
// Вопросы сериализуются через entity.Question, который скрывает
// правильный вариант от клиента.
type QuizResponse struct {
	ID            uint              `json:"id"`
	Title         string            `json:"title"`
	ShortID       string            `json:"short_id"`
	QuestionCount int               `json:"question_count"`
	Questions     []entity.Question `json:"questions,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}

// NewQuizResponse преобразует entity.Quiz в DTO.
// withQuestions управляет включением списка вопросов.
func NewQuizResponse(q *entity.Quiz, withQuestions bool) QuizResponse {
	resp := QuizResponse{
		ID:            q.ID,
		Title:         q.Title,
		ShortID:       q.ShortID,
		QuestionCount: q.QuestionCount,
		CreatedAt:     q.CreatedAt,
	}
	if withQuestions {
		resp.Questions = q.Questions
	}
	return resp
}

// NewQuizListResponse преобразует срез викторин в DTO без вопросов
func NewQuizListResponse(quizzes []entity.Quiz) []QuizResponse {
	out := make([]QuizResponse, 0, len(quizzes))
	for i := range quizzes {
		out = append(out, NewQuizResponse(&quizzes[i], false))
	}
	return out
}
