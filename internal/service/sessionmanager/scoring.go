package sessionmanager

import (
	"time"

	"github.com/yourusername/ququiz-api/internal/domain/entity"
)

// Score вычисляет очки за ответ с линейным затуханием по времени.
// Правильный ответ в момент старта вопроса дает DefaultQuestionScore,
// на дедлайне ноль. Неправильный ответ и ответ на опросный вопрос
// (без правильного варианта) всегда дают ноль.
func Score(question *entity.Question, selectedOption int, elapsed time.Duration) int {
	if question.IsSurvey() {
		return 0
	}
	if !question.IsCorrect(selectedOption) {
		return 0
	}
	return decayedPoints(question.Duration(), elapsed)
}

// decayedPoints вычисляет floor((duration-elapsed)/duration*max) в целых
// миллисекундах. elapsed клампится в [0, duration]: отрицательное время
// (рассинхрон часов) считается мгновенным ответом, превышение дедлайна нулем.
func decayedPoints(duration, elapsed time.Duration) int {
	if duration <= 0 {
		return 0
	}
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > duration {
		elapsed = duration
	}
	d := duration.Milliseconds()
	e := elapsed.Milliseconds()
	return int((d - e) * DefaultQuestionScore / d)
}
