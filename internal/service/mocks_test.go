package service

import (
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/yourusername/ququiz-api/internal/domain/entity"
)

// ============================================================================
// Моки репозиториев для тестов сервисов
// ============================================================================

// MockQuizRepository реализует repository.QuizRepository
type MockQuizRepository struct {
	mock.Mock
}

func (m *MockQuizRepository) Create(quiz *entity.Quiz) error {
	args := m.Called(quiz)
	return args.Error(0)
}

func (m *MockQuizRepository) GetByID(id uint) (*entity.Quiz, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Quiz), args.Error(1)
}

func (m *MockQuizRepository) GetWithQuestions(id uint) (*entity.Quiz, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Quiz), args.Error(1)
}

func (m *MockQuizRepository) ListByOwner(ownerID uint, limit, offset int) ([]entity.Quiz, int64, error) {
	args := m.Called(ownerID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]entity.Quiz), args.Get(1).(int64), args.Error(2)
}

func (m *MockQuizRepository) Delete(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

// MockSessionRepository реализует repository.SessionRepository
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(session *entity.Session) error {
	args := m.Called(session)
	return args.Error(0)
}

func (m *MockSessionRepository) GetByID(id uint) (*entity.Session, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Session), args.Error(1)
}

func (m *MockSessionRepository) ListByQuiz(quizID uint) ([]entity.Session, error) {
	args := m.Called(quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Session), args.Error(1)
}

func (m *MockSessionRepository) StartSession(sessionID uint, firstQuestionID uint, startedAt time.Time) error {
	args := m.Called(sessionID, firstQuestionID, startedAt)
	return args.Error(0)
}

func (m *MockSessionRepository) AdvanceCursor(sessionID uint, fromQuestionID uint, toQuestionID *uint, startedAt time.Time) error {
	args := m.Called(sessionID, fromQuestionID, toQuestionID, startedAt)
	return args.Error(0)
}

func (m *MockSessionRepository) FinishSession(sessionID uint) error {
	args := m.Called(sessionID)
	return args.Error(0)
}

func (m *MockSessionRepository) FinishIfPlaying(sessionID uint) (bool, error) {
	args := m.Called(sessionID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSessionRepository) ResetSession(sessionID uint) error {
	args := m.Called(sessionID)
	return args.Error(0)
}

func (m *MockSessionRepository) FindWaitingByShortID(shortID string) (*entity.Session, error) {
	args := m.Called(shortID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Session), args.Error(1)
}

// MockPlayerRepository реализует repository.PlayerRepository
type MockPlayerRepository struct {
	mock.Mock
}

func (m *MockPlayerRepository) CreateInWaiting(player *entity.Player) error {
	args := m.Called(player)
	return args.Error(0)
}

func (m *MockPlayerRepository) GetByCode(sessionID uint, playerCode string) (*entity.Player, error) {
	args := m.Called(sessionID, playerCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Player), args.Error(1)
}

func (m *MockPlayerRepository) ListBySession(sessionID uint) ([]entity.Player, error) {
	args := m.Called(sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Player), args.Error(1)
}

func (m *MockPlayerRepository) ListByScore(sessionID uint) ([]entity.Player, error) {
	args := m.Called(sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Player), args.Error(1)
}

func (m *MockPlayerRepository) CountBySession(sessionID uint) (int64, error) {
	args := m.Called(sessionID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPlayerRepository) CountUnfinished(sessionID uint) (int64, error) {
	args := m.Called(sessionID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPlayerRepository) MarkFinished(sessionID uint, playerCode string) (bool, error) {
	args := m.Called(sessionID, playerCode)
	return args.Bool(0), args.Error(1)
}

// MockAnswerRepository реализует repository.AnswerRepository
type MockAnswerRepository struct {
	mock.Mock
}

func (m *MockAnswerRepository) SaveAndScore(answer *entity.Answer, points int) error {
	args := m.Called(answer, points)
	return args.Error(0)
}

func (m *MockAnswerRepository) CountByPlayer(sessionID uint, playerCode string) (int64, error) {
	args := m.Called(sessionID, playerCode)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAnswerRepository) ListByQuestion(sessionID uint, questionID uint) ([]entity.Answer, error) {
	args := m.Called(sessionID, questionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Answer), args.Error(1)
}

func (m *MockAnswerRepository) CountByOption(sessionID uint, questionID uint, optionCount int) ([]int64, error) {
	args := m.Called(sessionID, questionID, optionCount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}
