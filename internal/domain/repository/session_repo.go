package repository

import (
	"time"

	"github.com/yourusername/ququiz-api/internal/domain/entity"
)

// SessionRepository определяет методы для работы с сессиями.
//
// Все мутации статуса/курсора выполняются условными UPDATE (compare-and-swap
// по текущему значению): при RowsAffected == 0 возвращается соответствующая
// sentinel-ошибка, состояние в базе остается нетронутым.
type SessionRepository interface {
	Create(session *entity.Session) error
	GetByID(id uint) (*entity.Session, error)
	ListByQuiz(quizID uint) ([]entity.Session, error)

	// StartSession атомарно переводит waiting → playing:
	// started=true, курсор на первый вопрос, фиксируется время старта вопроса.
	// - ErrSessionNotWaiting, если сессия не в статусе waiting.
	StartSession(sessionID uint, firstQuestionID uint, startedAt time.Time) error

	// AdvanceCursor условно сдвигает курсор от fromQuestionID к toQuestionID.
	// toQuestionID == nil означает конец викторины: статус становится finished,
	// курсор обнуляется. Условие CAS: status = playing И курсор = fromQuestionID,
	// поэтому два гонящихся advance сдвигают курсор на один шаг, а не на два.
	// - ErrCursorMoved, если курсор уже не на fromQuestionID или сессия не playing.
	AdvanceCursor(sessionID uint, fromQuestionID uint, toQuestionID *uint, startedAt time.Time) error

	// FinishSession атомарно завершает сессию из любого незавершенного статуса:
	// status=finished, курсор обнуляется.
	// - ErrSessionAlreadyFinished, если сессия уже finished.
	FinishSession(sessionID uint) error

	// FinishIfPlaying атомарно переводит playing → finished.
	// Используется детектором завершения; безопасен при конкурентных вызовах:
	// возвращает (false, nil), если сессия уже не playing.
	FinishIfPlaying(sessionID uint) (bool, error)

	// ResetSession выполняет destructive restart одной транзакцией:
	// удаляет все ответы и всех игроков сессии, возвращает сессию в
	// waiting/started=false/курсор nil. После коммита любые join/answer,
	// ссылающиеся на старые строки, получают UnknownPlayer/NotActive.
	ResetSession(sessionID uint) error

	// FindWaitingByShortID находит сессию в статусе waiting по 4-значному
	// коду викторины. Коды коллизируют между викторинами намеренно и
	// разрешаются по состоянию: среди waiting-сессий код уникален.
	FindWaitingByShortID(shortID string) (*entity.Session, error)
}
