package postgres

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yourusername/ququiz-api/internal/domain/entity"
	"github.com/yourusername/ququiz-api/internal/domain/repository"
	apperrors "github.com/yourusername/ququiz-api/internal/pkg/errors"
)

// SessionRepo реализует repository.SessionRepository
type SessionRepo struct {
	db *gorm.DB
}

// NewSessionRepo создает новый репозиторий сессий
func NewSessionRepo(db *gorm.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// Create создает новую сессию
func (r *SessionRepo) Create(session *entity.Session) error {
	return r.db.Create(session).Error
}

// GetByID возвращает сессию по ID
func (r *SessionRepo) GetByID(id uint) (*entity.Session, error) {
	var session entity.Session
	err := r.db.First(&session, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// ListByQuiz возвращает все сессии викторины
func (r *SessionRepo) ListByQuiz(quizID uint) ([]entity.Session, error) {
	var sessions []entity.Session
	err := r.db.Where("quiz_id = ?", quizID).Order("id DESC").Find(&sessions).Error
	return sessions, err
}

// StartSession атомарно переводит waiting → playing.
// CAS по статусу: RowsAffected == 0 → сессия не waiting.
func (r *SessionRepo) StartSession(sessionID uint, firstQuestionID uint, startedAt time.Time) error {
	result := r.db.Model(&entity.Session{}).
		Where("id = ? AND status = ?", sessionID, entity.SessionStatusWaiting).
		Updates(map[string]interface{}{
			"status":              entity.SessionStatusPlaying,
			"started":             true,
			"current_question_id": firstQuestionID,
			"question_started_at": startedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("start session #%d failed: %w", sessionID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: session #%d", repository.ErrSessionNotWaiting, sessionID)
	}
	return nil
}

// AdvanceCursor условно сдвигает курсор. CAS по паре (status, current_question_id),
// поэтому два гонящихся advance сдвинут курсор на один шаг, а не на два.
func (r *SessionRepo) AdvanceCursor(sessionID uint, fromQuestionID uint, toQuestionID *uint, startedAt time.Time) error {
	updates := map[string]interface{}{
		"current_question_id": toQuestionID,
		"question_started_at": startedAt,
	}
	if toQuestionID == nil {
		// Курсор ушел за последний вопрос — терминальный переход
		updates["status"] = entity.SessionStatusFinished
		updates["question_started_at"] = nil
	}

	result := r.db.Model(&entity.Session{}).
		Where("id = ? AND status = ? AND current_question_id = ?",
			sessionID, entity.SessionStatusPlaying, fromQuestionID).
		Updates(updates)

	if result.Error != nil {
		return fmt.Errorf("advance session #%d failed: %w", sessionID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: session #%d", repository.ErrCursorMoved, sessionID)
	}
	return nil
}

// FinishSession завершает сессию из любого незавершенного статуса
func (r *SessionRepo) FinishSession(sessionID uint) error {
	result := r.db.Model(&entity.Session{}).
		Where("id = ? AND status <> ?", sessionID, entity.SessionStatusFinished).
		Updates(map[string]interface{}{
			"status":              entity.SessionStatusFinished,
			"current_question_id": nil,
			"question_started_at": nil,
		})

	if result.Error != nil {
		return fmt.Errorf("finish session #%d failed: %w", sessionID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: session #%d", repository.ErrSessionAlreadyFinished, sessionID)
	}
	return nil
}

// FinishIfPlaying атомарно переводит playing → finished.
// Монотонный предикат завершения может срабатывать из нескольких горутин
// одновременно — проигравший CAS получает (false, nil), не ошибку.
func (r *SessionRepo) FinishIfPlaying(sessionID uint) (bool, error) {
	result := r.db.Model(&entity.Session{}).
		Where("id = ? AND status = ?", sessionID, entity.SessionStatusPlaying).
		Updates(map[string]interface{}{
			"status":              entity.SessionStatusFinished,
			"current_question_id": nil,
			"question_started_at": nil,
		})

	if result.Error != nil {
		return false, fmt.Errorf("finish session #%d failed: %w", sessionID, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// ResetSession выполняет destructive restart одной транзакцией:
// ответы и игроки удаляются, сессия возвращается в waiting.
func (r *SessionRepo) ResetSession(sessionID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", sessionID).Delete(&entity.Answer{}).Error; err != nil {
			return fmt.Errorf("reset session #%d: delete answers: %w", sessionID, err)
		}
		if err := tx.Where("session_id = ?", sessionID).Delete(&entity.Player{}).Error; err != nil {
			return fmt.Errorf("reset session #%d: delete players: %w", sessionID, err)
		}

		result := tx.Model(&entity.Session{}).
			Where("id = ?", sessionID).
			Updates(map[string]interface{}{
				"status":              entity.SessionStatusWaiting,
				"started":             false,
				"current_question_id": nil,
				"question_started_at": nil,
			})
		if result.Error != nil {
			return fmt.Errorf("reset session #%d: %w", sessionID, result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: session #%d", apperrors.ErrNotFound, sessionID)
		}
		return nil
	})
}

// FindWaitingByShortID находит waiting-сессию по 4-значному коду викторины.
// Код намеренно коллизирует между викторинами; среди waiting-сессий он уникален.
func (r *SessionRepo) FindWaitingByShortID(shortID string) (*entity.Session, error) {
	var session entity.Session
	err := r.db.
		Joins("JOIN quizzes ON quizzes.id = sessions.quiz_id").
		Where("quizzes.short_id = ? AND sessions.status = ?", shortID, entity.SessionStatusWaiting).
		Order("sessions.id DESC").
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}
