package entity

import (
	"time"
)

// PlayerCodeLength - длина кода игрока (7 цифр, выбирается клиентом)
const PlayerCodeLength = 7

// Player представляет участника сессии. Создается только пока сессия
// в статусе waiting; уничтожается при restart сессии.
// Score монотонно не убывает на протяжении жизни сессии.
type Player struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	SessionID  uint      `gorm:"not null;index;uniqueIndex:idx_session_player" json:"session_id"`
	PlayerCode string    `gorm:"size:7;not null;uniqueIndex:idx_session_player" json:"player_code"`
	Score      int       `gorm:"not null;default:0" json:"score"`
	Finished   bool      `gorm:"not null;default:false" json:"finished"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Player) TableName() string {
	return "players"
}

// IsValidPlayerCode проверяет формат кода игрока: ровно 7 цифр
func IsValidPlayerCode(code string) bool {
	if len(code) != PlayerCodeLength {
		return false
	}
	for _, c := range code {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
