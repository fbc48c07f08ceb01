package postgres

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/yourusername/ququiz-api/internal/domain/entity"
	"github.com/yourusername/ququiz-api/internal/domain/repository"
	apperrors "github.com/yourusername/ququiz-api/internal/pkg/errors"
)

// PlayerRepo реализует repository.PlayerRepository
type PlayerRepo struct {
	db *gorm.DB
}

// NewPlayerRepo создает новый репозиторий игроков
func NewPlayerRepo(db *gorm.DB) *PlayerRepo {
	return &PlayerRepo{db: db}
}

// CreateInWaiting регистрирует игрока условным INSERT: строка вставляется,
// только пока сессия в статусе waiting. Проверка статуса и вставка - один
// оператор, поэтому join не может проскочить мимо конкурентного старта;
// дубликат кода отсекается уникальным индексом.
func (r *PlayerRepo) CreateInWaiting(player *entity.Player) error {
	result := r.db.Raw(
		`INSERT INTO players (session_id, player_code, score, finished, created_at, updated_at)
		 SELECT ?, ?, 0, FALSE, NOW(), NOW()
		 WHERE EXISTS (SELECT 1 FROM sessions WHERE id = ? AND status = ?)
		 RETURNING id, created_at, updated_at`,
		player.SessionID, player.PlayerCode, player.SessionID, entity.SessionStatusWaiting,
	).Scan(player)

	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return fmt.Errorf("%w: %s", repository.ErrPlayerCodeTaken, player.PlayerCode)
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: session #%d", repository.ErrSessionNotWaiting, player.SessionID)
	}
	return nil
}

// GetByCode возвращает игрока по коду в рамках сессии
func (r *PlayerRepo) GetByCode(sessionID uint, playerCode string) (*entity.Player, error) {
	var player entity.Player
	err := r.db.Where("session_id = ? AND player_code = ?", sessionID, playerCode).
		First(&player).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &player, nil
}

// ListBySession возвращает игроков в порядке присоединения
func (r *PlayerRepo) ListBySession(sessionID uint) ([]entity.Player, error) {
	var players []entity.Player
	err := r.db.Where("session_id = ?", sessionID).Order("id ASC").Find(&players).Error
	return players, err
}

// ListByScore возвращает игроков для лидерборда: score DESC,
// при равенстве очков раньше стоит тот, кто раньше присоединился.
func (r *PlayerRepo) ListByScore(sessionID uint) ([]entity.Player, error) {
	var players []entity.Player
	err := r.db.Where("session_id = ?", sessionID).
		Order("score DESC, id ASC").
		Find(&players).Error
	return players, err
}

// CountBySession возвращает число игроков сессии
func (r *PlayerRepo) CountBySession(sessionID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entity.Player{}).Where("session_id = ?", sessionID).Count(&count).Error
	return count, err
}

// CountUnfinished возвращает число игроков, еще не завершивших викторину
func (r *PlayerRepo) CountUnfinished(sessionID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entity.Player{}).
		Where("session_id = ? AND finished = false", sessionID).
		Count(&count).Error
	return count, err
}

// MarkFinished условно выставляет finished=true (CAS по finished=false)
func (r *PlayerRepo) MarkFinished(sessionID uint, playerCode string) (bool, error) {
	result := r.db.Model(&entity.Player{}).
		Where("session_id = ? AND player_code = ? AND finished = false", sessionID, playerCode).
		Update("finished", true)

	if result.Error != nil {
		return false, fmt.Errorf("mark player %s finished in session #%d: %w",
			playerCode, sessionID, result.Error)
	}
	return result.RowsAffected > 0, nil
}
