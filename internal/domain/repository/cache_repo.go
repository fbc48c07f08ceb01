package repository

import (
	"time"
)

// CacheRepository определяет методы для работы с кешем.
// Кеш — всегда подсказка: авторитетное состояние живет в Session Store,
// промах или устаревание кеша приводят к повторному чтению из базы.
type CacheRepository interface {
	Set(key string, value interface{}, expiration time.Duration) error
	Get(key string) (string, error)
	Delete(key string) error
	// Increment атомарно увеличивает значение на 1 (используется лимитером запросов)
	Increment(key string) (int64, error)
	SetJSON(key string, value interface{}, expiration time.Duration) error
	GetJSON(key string, dest interface{}) error
	Exists(key string) (bool, error)
	ExpireAt(key string, expiration time.Time) error
	// SetNX устанавливает значение, только если ключ не существует.
	// Возвращает true, если ключ был установлен.
	SetNX(key string, value interface{}, expiration time.Duration) (bool, error)
}
