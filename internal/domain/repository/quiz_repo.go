package repository

import (
	"github.com/yourusername/ququiz-api/internal/domain/entity"
)

// QuizRepository определяет методы для работы с контентом викторин
type QuizRepository interface {
	// Create сохраняет викторину вместе с вложенными вопросами
	Create(quiz *entity.Quiz) error
	GetByID(id uint) (*entity.Quiz, error)
	// GetWithQuestions возвращает викторину с вопросами, упорядоченными по position
	GetWithQuestions(id uint) (*entity.Quiz, error)
	ListByOwner(ownerID uint, limit, offset int) ([]entity.Quiz, int64, error)
	Delete(id uint) error
}
