package service

import (
	"fmt"
	"log"
	"math/rand"

	"github.com/yourusername/ququiz-api/internal/domain/entity"
	"github.com/yourusername/ququiz-api/internal/domain/repository"
	apperrors "github.com/yourusername/ququiz-api/internal/pkg/errors"
	"github.com/yourusername/ququiz-api/internal/service/sessionmanager"
)

// QuizService отвечает за контент викторин: создание, чтение, удаление
type QuizService struct {
	quizRepo    repository.QuizRepository
	sessionRepo repository.SessionRepository
	loader      *sessionmanager.QuizLoader
}

// NewQuizService создает новый сервис викторин
func NewQuizService(quizRepo repository.QuizRepository, sessionRepo repository.SessionRepository, loader *sessionmanager.QuizLoader) *QuizService {
	return &QuizService{
		quizRepo:    quizRepo,
		sessionRepo: sessionRepo,
		loader:      loader,
	}
}

// QuestionInput - вопрос при создании викторины
type QuestionInput struct {
	Text          string             `json:"text"`
	ImageURL      string             `json:"image_url"`
	Options       entity.OptionArray `json:"options"`
	CorrectOption *int               `json:"correct_option"`
	DurationSec   int                `json:"duration_sec"`
}

// CreateQuiz создает викторину с вопросами. Вопросы получают позиции
// в порядке следования; викторине назначается 4-значный код присоединения.
func (s *QuizService) CreateQuiz(ownerID uint, title string, questions []QuestionInput) (*entity.Quiz, error) {
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", apperrors.ErrValidation)
	}
	if len(title) > 100 {
		return nil, fmt.Errorf("%w: title is too long", apperrors.ErrValidation)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: quiz must have at least one question", apperrors.ErrValidation)
	}

	quiz := &entity.Quiz{
		OwnerID:       ownerID,
		Title:         title,
		ShortID:       generateShortID(),
		QuestionCount: len(questions),
		Questions:     make([]entity.Question, 0, len(questions)),
	}

	for i, in := range questions {
		durationSec := in.DurationSec
		if durationSec == 0 {
			durationSec = entity.DefaultDurationSec
		}
		q := entity.Question{
			Position:      i,
			Text:          in.Text,
			ImageURL:      in.ImageURL,
			Options:       in.Options,
			CorrectOption: in.CorrectOption,
			DurationSec:   durationSec,
		}
		if err := q.Validate(); err != nil {
			return nil, fmt.Errorf("%w: question %d: %v", apperrors.ErrValidation, i+1, err)
		}
		quiz.Questions = append(quiz.Questions, q)
	}

	if err := s.quizRepo.Create(quiz); err != nil {
		return nil, fmt.Errorf("create quiz: %w", err)
	}

	log.Printf("[QuizService] Создана викторина #%d '%s' (%d вопросов, код %s)",
		quiz.ID, quiz.Title, len(quiz.Questions), quiz.ShortID)
	return quiz, nil
}

// GetQuiz возвращает викторину с вопросами. Правильные ответы скрыты
// от клиента на уровне сериализации entity.Question.
func (s *QuizService) GetQuiz(quizID uint) (*entity.Quiz, error) {
	return s.quizRepo.GetWithQuestions(quizID)
}

// ListQuizzes возвращает викторины владельца с пагинацией
func (s *QuizService) ListQuizzes(ownerID uint, limit, offset int) ([]entity.Quiz, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.quizRepo.ListByOwner(ownerID, limit, offset)
}

// DeleteQuiz удаляет викторину владельца вместе с вопросами.
// Контент под идущей сессией неприкосновенен: удаление отклоняется,
// пока хотя бы одна сессия викторины в статусе playing.
func (s *QuizService) DeleteQuiz(quizID uint, ownerID uint) error {
	quiz, err := s.quizRepo.GetByID(quizID)
	if err != nil {
		return err
	}
	if quiz.OwnerID != ownerID {
		return fmt.Errorf("%w: quiz #%d belongs to another owner", apperrors.ErrForbidden, quizID)
	}

	sessions, err := s.sessionRepo.ListByQuiz(quizID)
	if err != nil {
		return err
	}
	for i := range sessions {
		if sessions[i].IsPlaying() {
			return fmt.Errorf("%w: quiz #%d has a playing session #%d",
				apperrors.ErrConflict, quizID, sessions[i].ID)
		}
	}

	if err := s.quizRepo.Delete(quizID); err != nil {
		return fmt.Errorf("delete quiz #%d: %w", quizID, err)
	}
	if s.loader != nil {
		s.loader.Invalidate(quizID)
	}
	log.Printf("[QuizService] Удалена викторина #%d", quizID)
	return nil
}

// generateShortID возвращает случайный 4-значный код присоединения.
// Коды не уникальны между викторинами; коллизия разрешается по статусу
// сессии при ResolveJoinCode.
func generateShortID() string {
	return fmt.Sprintf("%04d", 1000+rand.Intn(9000))
}
