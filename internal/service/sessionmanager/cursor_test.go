package sessionmanager

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/ququiz-api/internal/domain/entity"
	"github.com/yourusername/ququiz-api/internal/notify"
	apperrors "github.com/yourusername/ququiz-api/internal/pkg/errors"
)

func TestCursorController_StartSession(t *testing.T) {
	env := newTestEnv()
	quiz := env.seedQuiz()
	session := env.seedSession(quiz.ID)

	started, err := env.cursor.StartSession(session.ID)
	require.NoError(t, err)

	assert.Equal(t, entity.SessionStatusPlaying, started.Status)
	assert.True(t, started.Started)
	require.NotNil(t, started.CurrentQuestionID)
	assert.Equal(t, uint(101), *started.CurrentQuestionID)
	require.NotNil(t, started.QuestionStartedAt)

	assert.Contains(t, env.publisher.kinds(), notify.EventStatusChanged)
	assert.Contains(t, env.publisher.kinds(), notify.EventQuestionAdvanced)
}

func TestCursorController_StartSessionTwice(t *testing.T) {
	env := newTestEnv()
	quiz := env.seedQuiz()
	session := env.seedSession(quiz.ID)

	_, err := env.cursor.StartSession(session.ID)
	require.NoError(t, err)

	_, err = env.cursor.StartSession(session.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
}

func TestCursorController_StartEmptyQuiz(t *testing.T) {
	env := newTestEnv()
	require.NoError(t, env.quizzes.Create(&entity.Quiz{ID: 5, Title: "Пустая"}))
	session := env.seedSession(5)

	_, err := env.cursor.StartSession(session.ID)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestCursorController_AdvanceWalksAllQuestions(t *testing.T) {
	env := newTestEnv()
	quiz := env.seedQuiz()
	session := env.seedSession(quiz.ID)

	_, err := env.cursor.StartSession(session.ID)
	require.NoError(t, err)

	finished, err := env.cursor.AdvanceQuestion(session.ID)
	require.NoError(t, err)
	assert.False(t, finished)

	s, err := env.sessions.GetByID(session.ID)
	require.NoError(t, err)
	require.NotNil(t, s.CurrentQuestionID)
	assert.Equal(t, uint(102), *s.CurrentQuestionID)

	finished, err = env.cursor.AdvanceQuestion(session.ID)
	require.NoError(t, err)
	assert.False(t, finished)

	// Advance за последним вопросом завершает сессию
	finished, err = env.cursor.AdvanceQuestion(session.ID)
	require.NoError(t, err)
	assert.True(t, finished)

	s, err = env.sessions.GetByID(session.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SessionStatusFinished, s.Status)
	assert.Nil(t, s.CurrentQuestionID)
	assert.Nil(t, s.QuestionStartedAt)
}

func TestCursorController_AdvanceNotPlaying(t *testing.T) {
	env := newTestEnv()
	quiz := env.seedQuiz()
	session := env.seedSession(quiz.ID)

	_, err := env.cursor.AdvanceQuestion(session.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotActive)
}

func TestCursorController_AdvanceUpdatesQuestionStartedAt(t *testing.T) {
	env := newTestEnv()
	quiz := env.seedQuiz()
	session := env.seedSession(quiz.ID)

	_, err := env.cursor.StartSession(session.ID)
	require.NoError(t, err)

	first, err := env.sessions.GetByID(session.ID)
	require.NoError(t, err)

	env.clock.Advance(30 * time.Second)

	_, err = env.cursor.AdvanceQuestion(session.ID)
	require.NoError(t, err)

	second, err := env.sessions.GetByID(session.ID)
	require.NoError(t, err)
	assert.True(t, second.QuestionStartedAt.After(*first.QuestionStartedAt))
}

func TestCursorController_FinishSession(t *testing.T) {
	env := newTestEnv()
	quiz := env.seedQuiz()
	session := env.seedSession(quiz.ID)

	_, err := env.cursor.StartSession(session.ID)
	require.NoError(t, err)

	require.NoError(t, env.cursor.FinishSession(session.ID))

	s, err := env.sessions.GetByID(session.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SessionStatusFinished, s.Status)

	// Повторное завершение - нарушение предусловия
	err = env.cursor.FinishSession(session.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
}

func TestCursorController_FinishFromWaiting(t *testing.T) {
	env := newTestEnv()
	quiz := env.seedQuiz()
	session := env.seedSession(quiz.ID)

	// Ведущий может закрыть зал ожидания, не начиная игру
	require.NoError(t, env.cursor.FinishSession(session.ID))

	s, err := env.sessions.GetByID(session.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SessionStatusFinished, s.Status)
}

func TestCursorController_RestartClearsEverything(t *testing.T) {
	env := newTestEnv()
	quiz := env.seedQuiz()
	session := env.seedSession(quiz.ID)
	env.seedPlayer(session.ID, "1234567")

	_, err := env.cursor.StartSession(session.ID)
	require.NoError(t, err)

	_, err = env.ingest.SubmitAnswer(session.ID, "1234567", 101, 0)
	require.NoError(t, err)

	// Без force перезапуск идущей сессии запрещен
	err = env.cursor.RestartSession(session.ID, false)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	require.NoError(t, env.cursor.RestartSession(session.ID, true))

	s, err := env.sessions.GetByID(session.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SessionStatusWaiting, s.Status)
	assert.False(t, s.Started)
	assert.Nil(t, s.CurrentQuestionID)

	count, err := env.players.CountBySession(session.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	answered, err := env.answers.CountByPlayer(session.ID, "1234567")
	require.NoError(t, err)
	assert.Zero(t, answered)
}

func TestCursorController_RestartedSessionPlayableAgain(t *testing.T) {
	env := newTestEnv()
	quiz := env.seedQuiz()
	session := env.seedSession(quiz.ID)

	_, err := env.cursor.StartSession(session.ID)
	require.NoError(t, err)
	require.NoError(t, env.cursor.FinishSession(session.ID))
	require.NoError(t, env.cursor.RestartSession(session.ID, false))

	started, err := env.cursor.StartSession(session.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SessionStatusPlaying, started.Status)
}
