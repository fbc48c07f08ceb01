package sessionmanager

import (
	"errors"
	"fmt"
	"log"

	"github.com/yourusername/ququiz-api/internal/domain/entity"
	"github.com/yourusername/ququiz-api/internal/notify"
	apperrors "github.com/yourusername/ququiz-api/internal/pkg/errors"
)

// CompletionDetector отслеживает завершение игроков и сессии.
// Оба предиката монотонны: число ответов и число завершивших игроков
// только растет, поэтому проверки можно выполнять в любом порядке
// и из любого числа горутин, итог не изменится.
type CompletionDetector struct {
	config *Config
	deps   *Dependencies
}

// NewCompletionDetector создает новый детектор завершения
func NewCompletionDetector(config *Config, deps *Dependencies) *CompletionDetector {
	return &CompletionDetector{
		config: config,
		deps:   deps,
	}
}

func leaderboardKey(sessionID uint) string {
	return fmt.Sprintf("session:%d:leaderboard", sessionID)
}

// OnAnswer проверяет предикаты завершения после приема ответа.
// Возвращает (игрок завершил, сессия закрыта этим вызовом).
func (d *CompletionDetector) OnAnswer(sessionID uint, playerCode string, questionCount int) (bool, bool, error) {
	answered, err := d.deps.AnswerRepo.CountByPlayer(sessionID, playerCode)
	if err != nil {
		return false, false, fmt.Errorf("count answers for player %s: %w", playerCode, err)
	}
	if answered < int64(questionCount) {
		return false, false, nil
	}

	marked, err := d.deps.PlayerRepo.MarkFinished(sessionID, playerCode)
	if err != nil {
		return false, false, err
	}
	if marked {
		log.Printf("[CompletionDetector] Игрок %s завершил сессию #%d (%d/%d ответов)",
			playerCode, sessionID, answered, questionCount)
	}

	closed, err := d.CheckSession(sessionID)
	if err != nil {
		return true, false, err
	}
	return true, closed, nil
}

// CheckSession проверяет, завершили ли все игроки, и закрывает сессию.
// Сессия без игроков не закрывается: пустой waiting-зал не считается
// доигранной викториной.
func (d *CompletionDetector) CheckSession(sessionID uint) (bool, error) {
	total, err := d.deps.PlayerRepo.CountBySession(sessionID)
	if err != nil {
		return false, fmt.Errorf("count players in session #%d: %w", sessionID, err)
	}
	if total == 0 {
		return false, nil
	}

	unfinished, err := d.deps.PlayerRepo.CountUnfinished(sessionID)
	if err != nil {
		return false, fmt.Errorf("count unfinished players in session #%d: %w", sessionID, err)
	}
	if unfinished > 0 {
		return false, nil
	}

	closed, err := d.deps.SessionRepo.FinishIfPlaying(sessionID)
	if err != nil {
		return false, err
	}
	if closed {
		log.Printf("[CompletionDetector] Сессия #%d закрыта: все %d игроков завершили", sessionID, total)
		publishEvent(d.deps, sessionID, notify.EventStatusChanged, map[string]string{
			"status": entity.SessionStatusFinished,
		})
		publishEvent(d.deps, sessionID, notify.EventLeaderboardUpdated, nil)
	}
	return closed, nil
}

// Leaderboard возвращает таблицу лидеров: очки по убыванию, при равенстве
// раньше стоит присоединившийся раньше. Результат кешируется на короткий
// TTL, чтобы частые опросы клиентов не били по БД.
func (d *CompletionDetector) Leaderboard(sessionID uint) ([]LeaderboardEntry, error) {
	key := leaderboardKey(sessionID)

	if d.deps.CacheRepo != nil {
		var cached []LeaderboardEntry
		err := d.deps.CacheRepo.GetJSON(key, &cached)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			log.Printf("[CompletionDetector] Ошибка чтения кеша лидерборда сессии #%d: %v", sessionID, err)
		}
	}

	players, err := d.deps.PlayerRepo.ListByScore(sessionID)
	if err != nil {
		return nil, fmt.Errorf("list players by score for session #%d: %w", sessionID, err)
	}

	entries := make([]LeaderboardEntry, 0, len(players))
	for i, p := range players {
		entries = append(entries, LeaderboardEntry{
			Rank:       i + 1,
			PlayerCode: p.PlayerCode,
			Score:      p.Score,
			Finished:   p.Finished,
		})
	}

	if d.deps.CacheRepo != nil {
		if err := d.deps.CacheRepo.SetJSON(key, entries, d.config.LeaderboardCacheTTL); err != nil {
			log.Printf("[CompletionDetector] Ошибка записи кеша лидерборда сессии #%d: %v", sessionID, err)
		}
	}
	return entries, nil
}
