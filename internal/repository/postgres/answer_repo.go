package postgres

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yourusername/ququiz-api/internal/domain/entity"
	"github.com/yourusername/ququiz-api/internal/domain/repository"
)

// AnswerRepo реализует repository.AnswerRepository
type AnswerRepo struct {
	db *gorm.DB
}

// NewAnswerRepo создает новый репозиторий ответов
func NewAnswerRepo(db *gorm.DB) *AnswerRepo {
	return &AnswerRepo{db: db}
}

// SaveAndScore сохраняет ответ и начисляет очки одной транзакцией.
// Дубликат (session, question, player) отсекается уникальным индексом БД
// (23505), исчезнувший игрок - составным внешним ключом fk_answers_player
// (23503); откат по любой причине не оставляет ни ответа, ни очков.
func (r *AnswerRepo) SaveAndScore(answer *entity.Answer, points int) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(answer).Error; err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: session #%d question #%d player %s",
					repository.ErrAnswerExists, answer.SessionID, answer.QuestionID, answer.PlayerCode)
			}
			if isForeignKeyViolation(err) {
				return fmt.Errorf("%w: %s in session #%d",
					repository.ErrPlayerMissing, answer.PlayerCode, answer.SessionID)
			}
			return err
		}
		if points <= 0 {
			return nil
		}

		// Аддитивное коммутативное обновление - безопасно при конкурентных
		// начислениях, в отличие от read-then-write
		result := tx.Model(&entity.Player{}).
			Where("session_id = ? AND player_code = ?", answer.SessionID, answer.PlayerCode).
			Update("score", gorm.Expr("score + ?", points))
		if result.Error != nil {
			return fmt.Errorf("score %d points for player %s in session #%d: %w",
				points, answer.PlayerCode, answer.SessionID, result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: %s in session #%d",
				repository.ErrPlayerMissing, answer.PlayerCode, answer.SessionID)
		}
		return nil
	})
}

// CountByPlayer возвращает число ответов игрока в сессии
func (r *AnswerRepo) CountByPlayer(sessionID uint, playerCode string) (int64, error) {
	var count int64
	err := r.db.Model(&entity.Answer{}).
		Where("session_id = ? AND player_code = ?", sessionID, playerCode).
		Count(&count).Error
	return count, err
}

// ListByQuestion возвращает все ответы на вопрос в рамках сессии
func (r *AnswerRepo) ListByQuestion(sessionID uint, questionID uint) ([]entity.Answer, error) {
	var answers []entity.Answer
	err := r.db.Where("session_id = ? AND question_id = ?", sessionID, questionID).
		Order("submitted_at ASC").
		Find(&answers).Error
	return answers, err
}

// CountByOption возвращает распределение ответов по вариантам вопроса
func (r *AnswerRepo) CountByOption(sessionID uint, questionID uint, optionCount int) ([]int64, error) {
	type row struct {
		SelectedIndex int
		Cnt           int64
	}
	var rows []row
	err := r.db.Model(&entity.Answer{}).
		Select("selected_index, COUNT(*) as cnt").
		Where("session_id = ? AND question_id = ?", sessionID, questionID).
		Group("selected_index").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make([]int64, optionCount)
	for _, r := range rows {
		// Ответы с индексом вне диапазона вариантов игнорируем
		if r.SelectedIndex >= 0 && r.SelectedIndex < optionCount {
			counts[r.SelectedIndex] = r.Cnt
		}
	}
	return counts, nil
}
