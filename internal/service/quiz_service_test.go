package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/ququiz-api/internal/domain/entity"
	apperrors "github.com/yourusername/ququiz-api/internal/pkg/errors"
)

func intPtr(v int) *int { return &v }

func validQuestions() []QuestionInput {
	return []QuestionInput{
		{
			Text:          "Столица Франции?",
			Options:       entity.OptionArray{{Text: "Париж"}, {Text: "Лион"}},
			CorrectOption: intPtr(0),
			DurationSec:   15,
		},
		{
			Text:        "Любимый сезон?",
			Options:     entity.OptionArray{{Text: "Лето"}, {Text: "Зима"}},
			DurationSec: 30,
		},
	}
}

func TestCreateQuiz_Success(t *testing.T) {
	quizRepo := new(MockQuizRepository)
	svc := NewQuizService(quizRepo, new(MockSessionRepository), nil)

	quizRepo.On("Create", mock.AnythingOfType("*entity.Quiz")).Return(nil)

	quiz, err := svc.CreateQuiz(10, "Столицы мира", validQuestions())
	require.NoError(t, err)

	assert.Equal(t, uint(10), quiz.OwnerID)
	assert.Equal(t, "Столицы мира", quiz.Title)
	assert.Len(t, quiz.ShortID, 4)
	assert.Equal(t, 2, quiz.QuestionCount)
	require.Len(t, quiz.Questions, 2)
	assert.Equal(t, 0, quiz.Questions[0].Position)
	assert.Equal(t, 1, quiz.Questions[1].Position)
	// Второй вопрос опросный
	assert.Nil(t, quiz.Questions[1].CorrectOption)

	quizRepo.AssertExpectations(t)
}

func TestCreateQuiz_DefaultDuration(t *testing.T) {
	quizRepo := new(MockQuizRepository)
	svc := NewQuizService(quizRepo, new(MockSessionRepository), nil)

	quizRepo.On("Create", mock.AnythingOfType("*entity.Quiz")).Return(nil)

	questions := validQuestions()
	questions[0].DurationSec = 0

	quiz, err := svc.CreateQuiz(10, "Тест", questions)
	require.NoError(t, err)
	assert.Equal(t, entity.DefaultDurationSec, quiz.Questions[0].DurationSec)
}

func TestCreateQuiz_ValidationErrors(t *testing.T) {
	quizRepo := new(MockQuizRepository)
	svc := NewQuizService(quizRepo, new(MockSessionRepository), nil)

	tests := []struct {
		name      string
		title     string
		questions []QuestionInput
	}{
		{"пустой заголовок", "", validQuestions()},
		{"без вопросов", "Тест", nil},
		{"один вариант ответа", "Тест", []QuestionInput{
			{Text: "Вопрос?", Options: entity.OptionArray{{Text: "А"}}, DurationSec: 15},
		}},
		{"индекс правильного ответа вне диапазона", "Тест", []QuestionInput{
			{Text: "Вопрос?", Options: entity.OptionArray{{Text: "А"}, {Text: "Б"}},
				CorrectOption: intPtr(5), DurationSec: 15},
		}},
		{"слишком короткая длительность", "Тест", []QuestionInput{
			{Text: "Вопрос?", Options: entity.OptionArray{{Text: "А"}, {Text: "Б"}},
				CorrectOption: intPtr(0), DurationSec: 1},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateQuiz(10, tt.title, tt.questions)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}

	quizRepo.AssertNotCalled(t, "Create")
}

func TestDeleteQuiz_OwnerOnly(t *testing.T) {
	quizRepo := new(MockQuizRepository)
	svc := NewQuizService(quizRepo, new(MockSessionRepository), nil)

	quizRepo.On("GetByID", uint(1)).Return(&entity.Quiz{ID: 1, OwnerID: 10}, nil)

	err := svc.DeleteQuiz(1, 99)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	quizRepo.AssertNotCalled(t, "Delete")
}

func TestDeleteQuiz_Success(t *testing.T) {
	quizRepo := new(MockQuizRepository)
	sessionRepo := new(MockSessionRepository)
	svc := NewQuizService(quizRepo, sessionRepo, nil)

	quizRepo.On("GetByID", uint(1)).Return(&entity.Quiz{ID: 1, OwnerID: 10}, nil)
	sessionRepo.On("ListByQuiz", uint(1)).Return([]entity.Session{
		{ID: 5, QuizID: 1, Status: entity.SessionStatusFinished},
	}, nil)
	quizRepo.On("Delete", uint(1)).Return(nil)

	require.NoError(t, svc.DeleteQuiz(1, 10))
	quizRepo.AssertExpectations(t)
}

func TestDeleteQuiz_BlockedByPlayingSession(t *testing.T) {
	quizRepo := new(MockQuizRepository)
	sessionRepo := new(MockSessionRepository)
	svc := NewQuizService(quizRepo, sessionRepo, nil)

	quizRepo.On("GetByID", uint(1)).Return(&entity.Quiz{ID: 1, OwnerID: 10}, nil)
	sessionRepo.On("ListByQuiz", uint(1)).Return([]entity.Session{
		{ID: 5, QuizID: 1, Status: entity.SessionStatusPlaying},
	}, nil)

	err := svc.DeleteQuiz(1, 10)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	quizRepo.AssertNotCalled(t, "Delete")
}

func TestListQuizzes_ClampsPagination(t *testing.T) {
	quizRepo := new(MockQuizRepository)
	svc := NewQuizService(quizRepo, new(MockSessionRepository), nil)

	quizRepo.On("ListByOwner", uint(10), 20, 0).Return([]entity.Quiz{}, int64(0), nil)

	_, _, err := svc.ListQuizzes(10, -5, -1)
	require.NoError(t, err)
	quizRepo.AssertExpectations(t)
}

func TestGenerateShortID_Format(t *testing.T) {
	for i := 0; i < 100; i++ {
		code := generateShortID()
		require.Len(t, code, 4)
		assert.GreaterOrEqual(t, code, "1000")
		assert.LessOrEqual(t, code, "9999")
	}
}
