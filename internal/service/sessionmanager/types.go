package sessionmanager

import (
	"log"
	"time"

	"github.com/yourusername/ququiz-api/internal/domain/repository"
	"github.com/yourusername/ququiz-api/internal/notify"
)

// Constants for default values
const (
	DefaultQuestionScore = 100 // Максимум очков за вопрос
)

// Config содержит настройки для всех компонентов SessionManager
type Config struct {
	// TTL кеша вопросов викторины в Redis
	QuizCacheTTL time.Duration

	// TTL кеша лидерборда. Короткий, чтобы клиенты видели свежие очки,
	// но повторные запросы в пределах TTL не били по БД.
	LeaderboardCacheTTL time.Duration

	// Максимум игроков на сессию; 0 отключает лимит
	MaxPlayersPerSession int
}

// DefaultConfig возвращает конфигурацию по умолчанию
func DefaultConfig() *Config {
	return &Config{
		QuizCacheTTL:         10 * time.Minute,
		LeaderboardCacheTTL:  2 * time.Second,
		MaxPlayersPerSession: 0,
	}
}

// Clock абстрагирует источник времени для детерминированных тестов
type Clock interface {
	Now() time.Time
}

// RealClock реализует Clock через time.Now
type RealClock struct{}

// Now возвращает текущее время
func (RealClock) Now() time.Time {
	return time.Now()
}

// Dependencies содержит зависимости для компонентов SessionManager
type Dependencies struct {
	QuizRepo    repository.QuizRepository
	SessionRepo repository.SessionRepository
	PlayerRepo  repository.PlayerRepository
	AnswerRepo  repository.AnswerRepository
	CacheRepo   repository.CacheRepository
	Publisher   notify.Publisher
	Clock       Clock
	Config      *Config
}

// LeaderboardEntry представляет строку лидерборда
type LeaderboardEntry struct {
	Rank       int    `json:"rank"`
	PlayerCode string `json:"player_code"`
	Score      int    `json:"score"`
	Finished   bool   `json:"finished"`
}

// SubmitResult содержит исход приема ответа
type SubmitResult struct {
	Correct       bool  `json:"correct"`
	EarnedPoints  int   `json:"earned_points"`
	ElapsedMs     int64 `json:"elapsed_ms"`
	PlayerDone    bool  `json:"player_done"`
	SessionClosed bool  `json:"session_closed"`
}

// publishEvent публикует событие сессии. Доставка событий best-effort,
// поэтому ошибка публикации логируется, но не прерывает операцию.
func publishEvent(deps *Dependencies, sessionID uint, kind string, payload interface{}) {
	if deps.Publisher == nil {
		return
	}
	evt, err := notify.NewEvent(sessionID, kind, payload)
	if err != nil {
		log.Printf("[SessionManager] Ошибка создания события %s для сессии #%d: %v", kind, sessionID, err)
		return
	}
	if err := deps.Publisher.PublishEvent(evt); err != nil {
		log.Printf("[SessionManager] Ошибка публикации события %s для сессии #%d: %v", kind, sessionID, err)
	}
}
