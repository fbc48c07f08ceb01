package dto

import (
	"time"

	"github.com/yourusername/ququiz-api/internal/domain/entity"
)

// SessionResponse представляет сессию в ответах API
type SessionResponse struct {
	ID                uint       `json:"id"`
	QuizID            uint       `json:"quiz_id"`
	Status            string     `json:"status"`
	Started           bool       `json:"started"`
	CurrentQuestionID *uint      `json:"current_question_id,omitempty"`
	QuestionStartedAt *time.Time `json:"question_started_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// NewSessionResponse преобразует entity.Session в DTO
func NewSessionResponse(s *entity.Session) SessionResponse {
	return SessionResponse{
		ID:                s.ID,
		QuizID:            s.QuizID,
		Status:            s.Status,
		Started:           s.Started,
		CurrentQuestionID: s.CurrentQuestionID,
		QuestionStartedAt: s.QuestionStartedAt,
		CreatedAt:         s.CreatedAt,
	}
}

// PlayerResponse представляет игрока в ответах API
type PlayerResponse struct {
	PlayerCode string    `json:"player_code"`
	Score      int       `json:"score"`
	Finished   bool      `json:"finished"`
	JoinedAt   time.Time `json:"joined_at"`
}

// NewPlayerResponse преобразует entity.Player в DTO
func NewPlayerResponse(p *entity.Player) PlayerResponse {
	return PlayerResponse{
		PlayerCode: p.PlayerCode,
		Score:      p.Score,
		Finished:   p.Finished,
		JoinedAt:   p.CreatedAt,
	}
}

// NewPlayerListResponse преобразует срез игроков в DTO
func NewPlayerListResponse(players []entity.Player) []PlayerResponse {
	out := make([]PlayerResponse, 0, len(players))
	for i := range players {
		out = append(out, NewPlayerResponse(&players[i]))
	}
	return out
}
