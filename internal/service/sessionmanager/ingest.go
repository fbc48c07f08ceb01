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

// AnswerProcessor отвечает за прием и оценку ответов игроков
type AnswerProcessor struct {
	config   *Config
	deps     *Dependencies
	loader   *QuizLoader
	detector *CompletionDetector
}

// NewAnswerProcessor создает новый процессор ответов
func NewAnswerProcessor(config *Config, deps *Dependencies, loader *QuizLoader, detector *CompletionDetector) *AnswerProcessor {
	return &AnswerProcessor{
		config:   config,
		deps:     deps,
		loader:   loader,
		detector: detector,
	}
}

// SubmitAnswer принимает ответ игрока на текущий вопрос сессии.
// Очки начисляются ровно один раз на пару (игрок, вопрос): дубликат
// отсекается уникальным индексом БД до любого изменения счета.
func (ap *AnswerProcessor) SubmitAnswer(sessionID uint, playerCode string, questionID uint, selectedOption int) (*SubmitResult, error) {
	session, err := ap.deps.SessionRepo.GetByID(sessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: session #%d", apperrors.ErrUnknownSession, sessionID)
		}
		return nil, err
	}

	if !session.IsPlaying() {
		return nil, fmt.Errorf("%w: session #%d is %s", apperrors.ErrNotActive, sessionID, session.Status)
	}
	// Ответ принимается только на текущий вопрос. Запоздавший ответ на
	// вопрос, с которого курсор уже ушел, отклоняется.
	if session.CurrentQuestionID == nil || *session.CurrentQuestionID != questionID {
		return nil, fmt.Errorf("%w: question #%d is not current in session #%d",
			apperrors.ErrNotActive, questionID, sessionID)
	}

	if _, err := ap.deps.PlayerRepo.GetByCode(sessionID, playerCode); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s in session #%d", apperrors.ErrUnknownPlayer, playerCode, sessionID)
		}
		return nil, err
	}

	snap, err := ap.loader.Snapshot(session.QuizID)
	if err != nil {
		return nil, fmt.Errorf("load quiz #%d: %w", session.QuizID, err)
	}
	qs := snap.QuestionByID(questionID)
	if qs == nil {
		return nil, fmt.Errorf("%w: question #%d not in quiz #%d", apperrors.ErrValidation, questionID, session.QuizID)
	}
	question := qs.Question()

	if !question.IsValidOption(selectedOption) {
		return nil, fmt.Errorf("%w: option %d out of range for question #%d",
			apperrors.ErrValidation, selectedOption, questionID)
	}

	// Серверное время приема; от него же считается затухание очков
	now := ap.deps.Clock.Now()
	elapsed := question.Duration()
	if session.QuestionStartedAt != nil {
		elapsed = now.Sub(*session.QuestionStartedAt)
	}

	earned := Score(question, selectedOption, elapsed)
	correct := question.IsCorrect(selectedOption)

	answer := &entity.Answer{
		SessionID:     sessionID,
		QuestionID:    questionID,
		PlayerCode:    playerCode,
		SelectedIndex: selectedOption,
		SubmittedAt:   now,
	}
	// Ответ и очки пишутся одной транзакцией: сбой начисления откатывает
	// и ответ, поэтому повтор запроса проходит заново, а не упирается в дубликат
	if err := ap.deps.AnswerRepo.SaveAndScore(answer, earned); err != nil {
		switch {
		case errors.Is(err, repository.ErrAnswerExists):
			log.Printf("[AnswerProcessor] Игрок %s уже отвечал на вопрос #%d сессии #%d (определено по DB unique constraint)",
				playerCode, questionID, sessionID)
			return nil, fmt.Errorf("%w: question #%d", apperrors.ErrDuplicateAnswer, questionID)
		case errors.Is(err, repository.ErrPlayerMissing):
			// Конкурентный рестарт удалил игрока между проверкой и записью;
			// транзакция не оставила осиротевшего ответа в новой сессии
			log.Printf("[AnswerProcessor] Игрок %s исчез из сессии #%d во время приема ответа (конкурентный рестарт)",
				playerCode, sessionID)
			return nil, fmt.Errorf("%w: %s in session #%d", apperrors.ErrUnknownPlayer, playerCode, sessionID)
		default:
			log.Printf("[AnswerProcessor] CRITICAL: Ошибка сохранения ответа игрока %s на вопрос #%d: %v",
				playerCode, questionID, err)
			return nil, fmt.Errorf("failed to save answer: %w", err)
		}
	}

	log.Printf("[AnswerProcessor] Ответ игрока %s на вопрос #%d сессии #%d: вариант %d, очки %d",
		playerCode, questionID, sessionID, selectedOption, earned)

	publishEvent(ap.deps, sessionID, notify.EventAnswerRecorded, map[string]interface{}{
		"player_code": playerCode,
		"question_id": questionID,
	})
	if earned > 0 {
		publishEvent(ap.deps, sessionID, notify.EventLeaderboardUpdated, nil)
	}

	result := &SubmitResult{
		Correct:      correct,
		EarnedPoints: earned,
		ElapsedMs:    elapsed.Milliseconds(),
	}

	playerDone, sessionClosed, err := ap.detector.OnAnswer(sessionID, playerCode, len(snap.Questions))
	if err != nil {
		// Ответ принят и оценен, сбой детектора не откатывает его.
		// Следующий ответ или ручное завершение доведут сессию до конца.
		log.Printf("[AnswerProcessor] Ошибка детектора завершения для сессии #%d: %v", sessionID, err)
		return result, nil
	}
	result.PlayerDone = playerDone
	result.SessionClosed = sessionClosed
	return result, nil
}
