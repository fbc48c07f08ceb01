package sessionmanager

import (
	"errors"
	"fmt"
	"log"

	"github.com/yourusername/ququiz-api/internal/domain/entity"
	"github.com/yourusername/ququiz-api/internal/domain/repository"
	"github.com/yourusername/ququiz-api/internal/notify"
	apperrors "github.com/yourusername/ququiz-api/internal/pkg/errors"
)

// CursorController управляет жизненным циклом сессии: старт, продвижение
// курсора по вопросам, завершение и перезапуск. Все переходы выполняются
// условными UPDATE в БД, поэтому конкурирующие команды ведущего безопасны.
type CursorController struct {
	config *Config
	deps   *Dependencies
	loader *QuizLoader
}

// NewCursorController создает новый контроллер курсора
func NewCursorController(config *Config, deps *Dependencies, loader *QuizLoader) *CursorController {
	return &CursorController{
		config: config,
		deps:   deps,
		loader: loader,
	}
}

// StartSession переводит сессию waiting → playing и ставит курсор
// на первый вопрос
func (c *CursorController) StartSession(sessionID uint) (*entity.Session, error) {
	session, err := c.deps.SessionRepo.GetByID(sessionID)
	if err != nil {
		return nil, err
	}

	snap, err := c.loader.Snapshot(session.QuizID)
	if err != nil {
		return nil, fmt.Errorf("load quiz #%d: %w", session.QuizID, err)
	}
	if len(snap.Questions) == 0 {
		return nil, fmt.Errorf("%w: quiz #%d has no questions", apperrors.ErrValidation, session.QuizID)
	}

	now := c.deps.Clock.Now()
	firstID := snap.Questions[0].ID
	if err := c.deps.SessionRepo.StartSession(sessionID, firstID, now); err != nil {
		if errors.Is(err, repository.ErrSessionNotWaiting) {
			return nil, fmt.Errorf("%w: session #%d is not waiting", apperrors.ErrInvalidTransition, sessionID)
		}
		return nil, err
	}

	log.Printf("[CursorController] Сессия #%d запущена, первый вопрос #%d", sessionID, firstID)

	publishEvent(c.deps, sessionID, notify.EventStatusChanged, map[string]string{
		"status": entity.SessionStatusPlaying,
	})
	publishEvent(c.deps, sessionID, notify.EventQuestionAdvanced, map[string]uint{
		"question_id": firstID,
	})

	return c.deps.SessionRepo.GetByID(sessionID)
}

// AdvanceQuestion сдвигает курсор на следующий вопрос. За последним
// вопросом курсор уходит в nil и сессия завершается.
// Возвращает true, если этот вызов завершил сессию.
func (c *CursorController) AdvanceQuestion(sessionID uint) (bool, error) {
	session, err := c.deps.SessionRepo.GetByID(sessionID)
	if err != nil {
		return false, err
	}
	if !session.IsPlaying() || session.CurrentQuestionID == nil {
		return false, fmt.Errorf("%w: session #%d is not playing", apperrors.ErrNotActive, sessionID)
	}

	snap, err := c.loader.Snapshot(session.QuizID)
	if err != nil {
		return false, fmt.Errorf("load quiz #%d: %w", session.QuizID, err)
	}

	currentID := *session.CurrentQuestionID
	idx := snap.QuestionIndex(currentID)
	if idx < 0 {
		return false, fmt.Errorf("%w: question #%d not in quiz #%d", apperrors.ErrValidation, currentID, session.QuizID)
	}

	var nextID *uint
	if idx+1 < len(snap.Questions) {
		nextID = &snap.Questions[idx+1].ID
	}

	now := c.deps.Clock.Now()
	if err := c.deps.SessionRepo.AdvanceCursor(sessionID, currentID, nextID, now); err != nil {
		if errors.Is(err, repository.ErrCursorMoved) {
			// Курсор уже сдвинут конкурирующей командой или завершением
			return false, fmt.Errorf("%w: session #%d cursor already moved", apperrors.ErrConflict, sessionID)
		}
		return false, err
	}

	if nextID == nil {
		log.Printf("[CursorController] Сессия #%d завершена: курсор ушел за последний вопрос", sessionID)
		publishEvent(c.deps, sessionID, notify.EventStatusChanged, map[string]string{
			"status": entity.SessionStatusFinished,
		})
		publishEvent(c.deps, sessionID, notify.EventLeaderboardUpdated, nil)
		return true, nil
	}

	log.Printf("[CursorController] Сессия #%d: курсор сдвинут с вопроса #%d на #%d", sessionID, currentID, *nextID)
	publishEvent(c.deps, sessionID, notify.EventQuestionAdvanced, map[string]uint{
		"question_id": *nextID,
	})
	return false, nil
}

// FinishSession принудительно завершает сессию командой ведущего
func (c *CursorController) FinishSession(sessionID uint) error {
	if err := c.deps.SessionRepo.FinishSession(sessionID); err != nil {
		if errors.Is(err, repository.ErrSessionAlreadyFinished) {
			return fmt.Errorf("%w: session #%d already finished", apperrors.ErrInvalidTransition, sessionID)
		}
		return err
	}

	log.Printf("[CursorController] Сессия #%d завершена командой ведущего", sessionID)
	publishEvent(c.deps, sessionID, notify.EventStatusChanged, map[string]string{
		"status": entity.SessionStatusFinished,
	})
	publishEvent(c.deps, sessionID, notify.EventLeaderboardUpdated, nil)
	return nil
}

// RestartSession выполняет деструктивный перезапуск: удаляет игроков
// и ответы, возвращает сессию в waiting. Из незавершенной сессии
// перезапуск требует явного force.
func (c *CursorController) RestartSession(sessionID uint, force bool) error {
	session, err := c.deps.SessionRepo.GetByID(sessionID)
	if err != nil {
		return err
	}
	if !session.IsFinished() && !force {
		return fmt.Errorf("%w: session #%d is %s, restart requires force",
			apperrors.ErrInvalidTransition, sessionID, session.Status)
	}

	if err := c.deps.SessionRepo.ResetSession(sessionID); err != nil {
		return err
	}

	if c.deps.CacheRepo != nil {
		if err := c.deps.CacheRepo.Delete(leaderboardKey(sessionID)); err != nil {
			log.Printf("[CursorController] Ошибка сброса кеша лидерборда сессии #%d: %v", sessionID, err)
		}
	}

	log.Printf("[CursorController] Сессия #%d перезапущена, игроки и ответы удалены", sessionID)
	publishEvent(c.deps, sessionID, notify.EventStatusChanged, map[string]string{
		"status": entity.SessionStatusWaiting,
	})
	return nil
}
