package repository

import (
	"github.com/yourusername/ququiz-api/internal/domain/entity"
)

// AnswerRepository определяет методы для работы с ответами игроков
type AnswerRepository interface {
	// SaveAndScore сохраняет ответ и начисляет points очков игроку в одной
	// транзакции: либо записаны и ответ, и очки, либо ничего.
	// Дедупликация — уникальным индексом БД (session_id, question_id,
	// player_code), потому что две отправки могут гнаться друг с другом:
	// - ErrAnswerExists при нарушении уникальности;
	// - ErrPlayerMissing, если игрок исчез между проверкой и записью
	//   (конкурентный рестарт удалил строку игрока).
	SaveAndScore(answer *entity.Answer, points int) error
	// CountByPlayer возвращает число ответов игрока в сессии
	// (вход предиката завершения).
	CountByPlayer(sessionID uint, playerCode string) (int64, error)
	ListByQuestion(sessionID uint, questionID uint) ([]entity.Answer, error)
	// CountByOption возвращает распределение ответов по вариантам вопроса:
	// срез длины optionCount, ответы с индексом вне диапазона игнорируются.
	CountByOption(sessionID uint, questionID uint, optionCount int) ([]int64, error)
}
