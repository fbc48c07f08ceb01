package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Границы длительности вопроса в секундах
const (
	MinDurationSec     = 5
	MaxDurationSec     = 300
	DefaultDurationSec = 15
)

// Option представляет вариант ответа: текст и/или картинка,
// хотя бы одно из двух должно быть заполнено.
type Option struct {
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// IsEmpty проверяет, что вариант не содержит ни текста, ни картинки
func (o Option) IsEmpty() bool {
	return o.Text == "" && o.ImageURL == ""
}

// OptionArray - пользовательский тип для хранения вариантов ответа в JSONB
type OptionArray []Option

// Scan реализует интерфейс sql.Scanner для OptionArray
// Используется GORM для чтения JSONB данных из базы
func (o *OptionArray) Scan(value interface{}) error {
	// Обработка NULL значений из базы данных
	if value == nil {
		*o = OptionArray{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	if len(bytes) == 0 {
		*o = OptionArray{}
		return nil
	}

	return json.Unmarshal(bytes, o)
}

// Value реализует интерфейс driver.Valuer для OptionArray
func (o OptionArray) Value() (driver.Value, error) {
	if len(o) == 0 {
		return []byte("[]"), nil // Возвращаем пустой JSON массив вместо null
	}
	return json.Marshal(o)
}

// Question представляет вопрос викторины.
// CorrectOption == nil означает опросный вопрос (survey): очки за него
// не начисляются, но ответ учитывается в предикате завершения игрока.
type Question struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	QuizID        uint        `gorm:"not null;index" json:"quiz_id"`
	Position      int         `gorm:"not null;default:0;index" json:"position"`
	Text          string      `gorm:"size:500;not null" json:"text"`
	ImageURL      string      `gorm:"size:255;not null;default:''" json:"image_url,omitempty"`
	Options       OptionArray `gorm:"type:jsonb;not null" json:"options"`
	CorrectOption *int        `json:"-"` // Скрыто от клиента
	DurationSec   int         `gorm:"not null;default:15" json:"duration_sec"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Question) TableName() string {
	return "questions"
}

// IsSurvey проверяет, является ли вопрос опросным (без правильного ответа)
func (q *Question) IsSurvey() bool {
	return q.CorrectOption == nil
}

// IsCorrect проверяет, является ли выбранный вариант правильным.
// Для опросных вопросов всегда false.
func (q *Question) IsCorrect(selectedIndex int) bool {
	return q.CorrectOption != nil && selectedIndex == *q.CorrectOption
}

// IsValidOption проверяет, является ли выбранный вариант допустимым
func (q *Question) IsValidOption(selectedIndex int) bool {
	return selectedIndex >= 0 && selectedIndex < len(q.Options)
}

// OptionsCount возвращает количество вариантов ответа
func (q *Question) OptionsCount() int {
	return len(q.Options)
}

// Duration возвращает длительность вопроса как time.Duration
func (q *Question) Duration() time.Duration {
	return time.Duration(q.DurationSec) * time.Second
}

// Validate проверяет инварианты вопроса перед сохранением
func (q *Question) Validate() error {
	if q.Text == "" && q.ImageURL == "" {
		return errors.New("question must have text or an image")
	}
	if len(q.Options) < 2 {
		return errors.New("question must have at least two options")
	}
	for _, opt := range q.Options {
		if opt.IsEmpty() {
			return errors.New("option must have text or an image")
		}
	}
	if q.CorrectOption != nil && (*q.CorrectOption < 0 || *q.CorrectOption >= len(q.Options)) {
		return errors.New("correct option index out of range")
	}
	if q.DurationSec < MinDurationSec || q.DurationSec > MaxDurationSec {
		return errors.New("question duration out of range")
	}
	return nil
}
