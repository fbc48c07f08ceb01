package repository

import (
	"github.com/yourusername/ququiz-api/internal/domain/entity"
)

// PlayerRepository определяет методы для работы с игроками сессии
type PlayerRepository interface {
	// CreateInWaiting регистрирует игрока одним условным INSERT: строка
	// вставляется, только пока сессия в статусе waiting, так что join не
	// проскакивает мимо конкурентного старта. Уникальность
	// (session_id, player_code) гарантируется ограничением БД:
	// - ErrPlayerCodeTaken при дубликате кода в этой сессии;
	// - ErrSessionNotWaiting, если сессия уже не ждет игроков.
	CreateInWaiting(player *entity.Player) error
	GetByCode(sessionID uint, playerCode string) (*entity.Player, error)
	// ListBySession возвращает игроков в порядке присоединения (id ASC)
	ListBySession(sessionID uint) ([]entity.Player, error)
	// ListByScore возвращает игроков для лидерборда: score DESC,
	// при равенстве очков — порядок присоединения (id ASC).
	ListByScore(sessionID uint) ([]entity.Player, error)
	CountBySession(sessionID uint) (int64, error)
	CountUnfinished(sessionID uint) (int64, error)

	// MarkFinished условно выставляет finished=true (CAS по finished=false).
	// Возвращает true, если переход произошел именно в этом вызове —
	// конкурентные повторные вызовы получают false без ошибки.
	MarkFinished(sessionID uint, playerCode string) (bool, error)
}
