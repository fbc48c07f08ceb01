package sessionmanager

import (
	"errors"
	"fmt"
	"log"

	"github.com/yourusername/ququiz-api/internal/domain/entity"
	apperrors "github.com/yourusername/ququiz-api/internal/pkg/errors"
)

// QuestionSnapshot - кешируемая копия вопроса. В отличие от entity.Question
// сериализует CorrectOption, поэтому снапшот нельзя отдавать клиентам как есть.
type QuestionSnapshot struct {
	ID            uint               `json:"id"`
	Position      int                `json:"position"`
	Text          string             `json:"text"`
	ImageURL      string             `json:"image_url,omitempty"`
	Options       entity.OptionArray `json:"options"`
	CorrectOption *int               `json:"correct_option"`
	DurationSec   int                `json:"duration_sec"`
}

// Question восстанавливает entity.Question из снапшота
func (s *QuestionSnapshot) Question() *entity.Question {
	return &entity.Question{
		ID:            s.ID,
		Position:      s.Position,
		Text:          s.Text,
		ImageURL:      s.ImageURL,
		Options:       s.Options,
		CorrectOption: s.CorrectOption,
		DurationSec:   s.DurationSec,
	}
}

// QuizSnapshot - кешируемая копия викторины с вопросами в порядке position
type QuizSnapshot struct {
	QuizID    uint               `json:"quiz_id"`
	Title     string             `json:"title"`
	ShortID   string             `json:"short_id"`
	Questions []QuestionSnapshot `json:"questions"`
}

// QuestionByID возвращает снапшот вопроса или nil
func (s *QuizSnapshot) QuestionByID(questionID uint) *QuestionSnapshot {
	for i := range s.Questions {
		if s.Questions[i].ID == questionID {
			return &s.Questions[i]
		}
	}
	return nil
}

// QuestionIndex возвращает позицию вопроса в снапшоте или -1
func (s *QuizSnapshot) QuestionIndex(questionID uint) int {
	for i := range s.Questions {
		if s.Questions[i].ID == questionID {
			return i
		}
	}
	return -1
}

// QuizLoader загружает снапшоты викторин, кешируя их в Redis.
// Состав вопросов неизменен во время игры, поэтому кеш с TTL безопасен.
type QuizLoader struct {
	deps *Dependencies
}

// NewQuizLoader создает новый загрузчик викторин
func NewQuizLoader(deps *Dependencies) *QuizLoader {
	return &QuizLoader{deps: deps}
}

func quizQuestionsKey(quizID uint) string {
	return fmt.Sprintf("quiz:%d:questions", quizID)
}

// Snapshot возвращает снапшот викторины из кеша или из БД
func (l *QuizLoader) Snapshot(quizID uint) (*QuizSnapshot, error) {
	key := quizQuestionsKey(quizID)

	if l.deps.CacheRepo != nil {
		var cached QuizSnapshot
		err := l.deps.CacheRepo.GetJSON(key, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			// Кеш недоступен, идем в БД
			log.Printf("[QuizLoader] Ошибка чтения кеша викторины #%d: %v", quizID, err)
		}
	}

	quiz, err := l.deps.QuizRepo.GetWithQuestions(quizID)
	if err != nil {
		return nil, err
	}

	snap := &QuizSnapshot{
		QuizID:    quiz.ID,
		Title:     quiz.Title,
		ShortID:   quiz.ShortID,
		Questions: make([]QuestionSnapshot, 0, len(quiz.Questions)),
	}
	for i := range quiz.Questions {
		q := &quiz.Questions[i]
		snap.Questions = append(snap.Questions, QuestionSnapshot{
			ID:            q.ID,
			Position:      q.Position,
			Text:          q.Text,
			ImageURL:      q.ImageURL,
			Options:       q.Options,
			CorrectOption: q.CorrectOption,
			DurationSec:   q.DurationSec,
		})
	}

	if l.deps.CacheRepo != nil {
		if err := l.deps.CacheRepo.SetJSON(key, snap, l.deps.Config.QuizCacheTTL); err != nil {
			log.Printf("[QuizLoader] Ошибка записи кеша викторины #%d: %v", quizID, err)
		}
	}
	return snap, nil
}

// Invalidate сбрасывает кеш викторины после изменения или удаления
func (l *QuizLoader) Invalidate(quizID uint) {
	if l.deps.CacheRepo == nil {
		return
	}
	if err := l.deps.CacheRepo.Delete(quizQuestionsKey(quizID)); err != nil {
		log.Printf("[QuizLoader] Ошибка сброса кеша викторины #%d: %v", quizID, err)
	}
}
