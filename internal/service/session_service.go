package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/yourusername/ququiz-api/internal/domain/entity"
	"github.com/yourusername/ququiz-api/internal/domain/repository"
	"github.com/yourusername/ququiz-api/internal/notify"
	apperrors "github.com/yourusername/ququiz-api/internal/pkg/errors"
	"github.com/yourusername/ququiz-api/internal/service/sessionmanager"
)

// SessionService - фасад над движком сессий: регистрация игроков,
// команды ведущего, прием ответов и чтение состояния.
type SessionService struct {
	deps     *sessionmanager.Dependencies
	loader   *sessionmanager.QuizLoader
	cursor   *sessionmanager.CursorController
	detector *sessionmanager.CompletionDetector
	ingest   *sessionmanager.AnswerProcessor
}

// NewSessionService создает сервис сессий и собирает компоненты движка
func NewSessionService(deps *sessionmanager.Dependencies) *SessionService {
	if deps.Clock == nil {
		deps.Clock = sessionmanager.RealClock{}
	}
	if deps.Config == nil {
		deps.Config = sessionmanager.DefaultConfig()
	}
	loader := sessionmanager.NewQuizLoader(deps)
	detector := sessionmanager.NewCompletionDetector(deps.Config, deps)
	return &SessionService{
		deps:     deps,
		loader:   loader,
		cursor:   sessionmanager.NewCursorController(deps.Config, deps, loader),
		detector: detector,
		ingest:   sessionmanager.NewAnswerProcessor(deps.Config, deps, loader, detector),
	}
}

// Loader возвращает загрузчик снапшотов викторин для соседних сервисов
func (s *SessionService) Loader() *sessionmanager.QuizLoader {
	return s.loader
}

// QuestionView - вопрос, каким его видят игроки: без правильного ответа
type QuestionView struct {
	ID          uint               `json:"id"`
	Position    int                `json:"position"`
	Text        string             `json:"text"`
	ImageURL    string             `json:"image_url,omitempty"`
	Options     entity.OptionArray `json:"options"`
	DurationSec int                `json:"duration_sec"`
}

// SessionState - снимок состояния сессии для ресинка клиента после
// переподключения или пропущенного события.
type SessionState struct {
	SessionID       uint          `json:"session_id"`
	QuizID          uint          `json:"quiz_id"`
	QuizTitle       string        `json:"quiz_title"`
	Status          string        `json:"status"`
	QuestionCount   int           `json:"question_count"`
	PlayerCount     int64         `json:"player_count"`
	CurrentQuestion *QuestionView `json:"current_question,omitempty"`
	QuestionNumber  int           `json:"question_number,omitempty"`
	// RemainingMs - подсказка, сколько осталось до дедлайна текущего вопроса.
	// Сервер дедлайн не навязывает, advance выполняет ведущий.
	RemainingMs int64 `json:"remaining_ms,omitempty"`
	// Данные запросившего игрока, если передан его код
	PlayerScore    *int `json:"player_score,omitempty"`
	PlayerFinished bool `json:"player_finished,omitempty"`
}

// QuestionStats - распределение ответов по вариантам вопроса
type QuestionStats struct {
	QuestionID  uint    `json:"question_id"`
	TotalCount  int64   `json:"total_count"`
	OptionCount []int64 `json:"option_counts"`
}

// CreateSession создает новую сессию викторины в статусе waiting
func (s *SessionService) CreateSession(quizID uint, ownerID uint) (*entity.Session, error) {
	quiz, err := s.deps.QuizRepo.GetByID(quizID)
	if err != nil {
		return nil, err
	}
	if quiz.OwnerID != ownerID {
		return nil, fmt.Errorf("%w: quiz #%d belongs to another owner", apperrors.ErrForbidden, quizID)
	}

	session := &entity.Session{
		QuizID: quizID,
		Status: entity.SessionStatusWaiting,
	}
	if err := s.deps.SessionRepo.Create(session); err != nil {
		return nil, fmt.Errorf("create session for quiz #%d: %w", quizID, err)
	}
	log.Printf("[SessionService] Создана сессия #%d викторины #%d", session.ID, quizID)
	return session, nil
}

// ResolveJoinCode находит waiting-сессию по 4-значному коду викторины
func (s *SessionService) ResolveJoinCode(shortID string) (*entity.Session, error) {
	if len(shortID) != 4 {
		return nil, fmt.Errorf("%w: join code must be 4 digits", apperrors.ErrValidation)
	}
	session, err := s.deps.SessionRepo.FindWaitingByShortID(shortID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: no waiting session for code %s", apperrors.ErrNotFound, shortID)
		}
		return nil, err
	}
	return session, nil
}

// JoinSession регистрирует игрока в зале ожидания.
// Код игрока выбирает клиент; уникальность в рамках сессии гарантирует БД.
func (s *SessionService) JoinSession(sessionID uint, playerCode string) (*entity.Player, error) {
	if !entity.IsValidPlayerCode(playerCode) {
		return nil, fmt.Errorf("%w: player code must be %d digits", apperrors.ErrValidation, entity.PlayerCodeLength)
	}

	session, err := s.deps.SessionRepo.GetByID(sessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: session #%d", apperrors.ErrUnknownSession, sessionID)
		}
		return nil, err
	}
	// Быстрый отказ по прочитанному статусу; гонку со стартом закрывает
	// условная вставка ниже
	if !session.IsWaiting() {
		return nil, fmt.Errorf("%w: session #%d is %s, joining is closed",
			apperrors.ErrInvalidTransition, sessionID, session.Status)
	}

	if max := s.deps.Config.MaxPlayersPerSession; max > 0 {
		count, err := s.deps.PlayerRepo.CountBySession(sessionID)
		if err != nil {
			return nil, err
		}
		if count >= int64(max) {
			return nil, fmt.Errorf("%w: session #%d is full", apperrors.ErrValidation, sessionID)
		}
	}

	player := &entity.Player{
		SessionID:  sessionID,
		PlayerCode: playerCode,
	}
	if err := s.deps.PlayerRepo.CreateInWaiting(player); err != nil {
		switch {
		case errors.Is(err, repository.ErrPlayerCodeTaken):
			return nil, fmt.Errorf("%w: %s", apperrors.ErrDuplicateJoin, playerCode)
		case errors.Is(err, repository.ErrSessionNotWaiting):
			// Сессия стартовала между чтением статуса и вставкой
			return nil, fmt.Errorf("%w: session #%d is no longer waiting, joining is closed",
				apperrors.ErrInvalidTransition, sessionID)
		default:
			return nil, fmt.Errorf("join session #%d: %w", sessionID, err)
		}
	}

	log.Printf("[SessionService] Игрок %s присоединился к сессии #%d", playerCode, sessionID)
	s.publish(sessionID, notify.EventPlayerJoined, map[string]string{"player_code": playerCode})
	return player, nil
}

// StartSession запускает сессию командой ведущего
func (s *SessionService) StartSession(sessionID uint, ownerID uint) (*entity.Session, error) {
	if err := s.authorizeHost(sessionID, ownerID); err != nil {
		return nil, err
	}
	return s.cursor.StartSession(sessionID)
}

// AdvanceQuestion сдвигает курсор на следующий вопрос.
// Возвращает true, если сессия завершилась этим вызовом.
func (s *SessionService) AdvanceQuestion(sessionID uint, ownerID uint) (bool, error) {
	if err := s.authorizeHost(sessionID, ownerID); err != nil {
		return false, err
	}
	return s.cursor.AdvanceQuestion(sessionID)
}

// FinishSession принудительно завершает сессию
func (s *SessionService) FinishSession(sessionID uint, ownerID uint) error {
	if err := s.authorizeHost(sessionID, ownerID); err != nil {
		return err
	}
	return s.cursor.FinishSession(sessionID)
}

// RestartSession перезапускает сессию, удаляя игроков и ответы.
// force разрешает перезапуск незавершенной сессии.
func (s *SessionService) RestartSession(sessionID uint, ownerID uint, force bool) error {
	if err := s.authorizeHost(sessionID, ownerID); err != nil {
		return err
	}
	return s.cursor.RestartSession(sessionID, force)
}

// SubmitAnswer принимает ответ игрока на текущий вопрос
func (s *SessionService) SubmitAnswer(sessionID uint, playerCode string, questionID uint, selectedOption int) (*sessionmanager.SubmitResult, error) {
	return s.ingest.SubmitAnswer(sessionID, playerCode, questionID, selectedOption)
}

// GetLeaderboard возвращает таблицу лидеров сессии
func (s *SessionService) GetLeaderboard(sessionID uint) ([]sessionmanager.LeaderboardEntry, error) {
	if _, err := s.deps.SessionRepo.GetByID(sessionID); err != nil {
		return nil, err
	}
	return s.detector.Leaderboard(sessionID)
}

// GetSessionState возвращает снимок состояния для ресинка клиента.
// Непустой playerCode добавляет в снимок очки этого игрока.
func (s *SessionService) GetSessionState(sessionID uint, playerCode string) (*SessionState, error) {
	session, err := s.deps.SessionRepo.GetByID(sessionID)
	if err != nil {
		return nil, err
	}

	snap, err := s.loader.Snapshot(session.QuizID)
	if err != nil {
		return nil, fmt.Errorf("load quiz #%d: %w", session.QuizID, err)
	}

	playerCount, err := s.deps.PlayerRepo.CountBySession(sessionID)
	if err != nil {
		return nil, err
	}

	state := &SessionState{
		SessionID:     session.ID,
		QuizID:        session.QuizID,
		QuizTitle:     snap.Title,
		Status:        session.Status,
		QuestionCount: len(snap.Questions),
		PlayerCount:   playerCount,
	}

	if playerCode != "" {
		player, err := s.deps.PlayerRepo.GetByCode(sessionID, playerCode)
		if err != nil {
			if !errors.Is(err, apperrors.ErrNotFound) {
				return nil, err
			}
			// Неизвестный код не мешает ресинку: снимок просто без очков
		} else {
			state.PlayerScore = &player.Score
			state.PlayerFinished = player.Finished
		}
	}

	if session.IsPlaying() && session.CurrentQuestionID != nil {
		qs := snap.QuestionByID(*session.CurrentQuestionID)
		if qs != nil {
			state.CurrentQuestion = &QuestionView{
				ID:          qs.ID,
				Position:    qs.Position,
				Text:        qs.Text,
				ImageURL:    qs.ImageURL,
				Options:     qs.Options,
				DurationSec: qs.DurationSec,
			}
			state.QuestionNumber = snap.QuestionIndex(qs.ID) + 1
			if session.QuestionStartedAt != nil {
				elapsed := s.deps.Clock.Now().Sub(*session.QuestionStartedAt)
				remaining := time.Duration(qs.DurationSec)*time.Second - elapsed
				if remaining < 0 {
					remaining = 0
				}
				state.RemainingMs = remaining.Milliseconds()
			}
		}
	}
	return state, nil
}

// GetQuestionStats возвращает распределение ответов по вариантам вопроса.
// Доступно только ведущему.
func (s *SessionService) GetQuestionStats(sessionID uint, questionID uint, ownerID uint) (*QuestionStats, error) {
	session, err := s.deps.SessionRepo.GetByID(sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeOwner(session.QuizID, ownerID); err != nil {
		return nil, err
	}

	snap, err := s.loader.Snapshot(session.QuizID)
	if err != nil {
		return nil, fmt.Errorf("load quiz #%d: %w", session.QuizID, err)
	}
	qs := snap.QuestionByID(questionID)
	if qs == nil {
		return nil, fmt.Errorf("%w: question #%d not in quiz #%d", apperrors.ErrNotFound, questionID, session.QuizID)
	}

	counts, err := s.deps.AnswerRepo.CountByOption(sessionID, questionID, len(qs.Options))
	if err != nil {
		return nil, err
	}

	var total int64
	for _, c := range counts {
		total += c
	}
	return &QuestionStats{
		QuestionID:  questionID,
		TotalCount:  total,
		OptionCount: counts,
	}, nil
}

// ListSessions возвращает сессии викторины ведущего
func (s *SessionService) ListSessions(quizID uint, ownerID uint) ([]entity.Session, error) {
	if err := s.authorizeOwner(quizID, ownerID); err != nil {
		return nil, err
	}
	return s.deps.SessionRepo.ListByQuiz(quizID)
}

// authorizeHost проверяет, что команда к сессии пришла от владельца викторины
func (s *SessionService) authorizeHost(sessionID uint, ownerID uint) error {
	session, err := s.deps.SessionRepo.GetByID(sessionID)
	if err != nil {
		return err
	}
	return s.authorizeOwner(session.QuizID, ownerID)
}

func (s *SessionService) authorizeOwner(quizID uint, ownerID uint) error {
	quiz, err := s.deps.QuizRepo.GetByID(quizID)
	if err != nil {
		return err
	}
	if quiz.OwnerID != ownerID {
		return fmt.Errorf("%w: quiz #%d belongs to another owner", apperrors.ErrForbidden, quizID)
	}
	return nil
}

func (s *SessionService) publish(sessionID uint, kind string, payload interface{}) {
	if s.deps.Publisher == nil {
		return
	}
	evt, err := notify.NewEvent(sessionID, kind, payload)
	if err != nil {
		log.Printf("[SessionService] Ошибка создания события %s для сессии #%d: %v", kind, sessionID, err)
		return
	}
	if err := s.deps.Publisher.PublishEvent(evt); err != nil {
		log.Printf("[SessionService] Ошибка публикации события %s для сессии #%d: %v", kind, sessionID, err)
	}
}
