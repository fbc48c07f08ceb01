package errors

import "errors"

// Общие ошибки приложения
var (
	// ErrNotFound используется, когда запись или ресурс не найдены.
	ErrNotFound = errors.New("record not found")

	// ErrUnauthorized используется для ошибок авторизации (неверный токен, нет прав).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden используется, когда у хоста недостаточно прав для действия
	// (например, команда к чужой сессии).
	ErrForbidden = errors.New("forbidden")

	// ErrValidation используется для ошибок валидации входных данных.
	ErrValidation = errors.New("validation failed")

	// ErrConflict используется для конфликтов состояния, когда состояние
	// изменилось под ногами у вызывающего (например, два гонящихся advance).
	ErrConflict = errors.New("resource state conflict")
)

// Ошибки движка сессий. Каждая мутирующая команда безопасно повторяема:
// повторная отправка уже применённого ответа даёт ErrDuplicateAnswer,
// а не двойное начисление очков.
var (
	// ErrInvalidTransition нарушено предусловие по статусу сессии
	// (start не из waiting, restart не из finished без force и т.п.).
	ErrInvalidTransition = errors.New("invalid session status transition")

	// ErrNotActive ответ пришёл не на текущий активный вопрос,
	// либо сессия не в статусе playing. Клиенту следует пересинхронизироваться.
	ErrNotActive = errors.New("question is not active")

	// ErrDuplicateAnswer ответ (session, question, player) уже существует.
	ErrDuplicateAnswer = errors.New("answer already submitted")

	// ErrDuplicateJoin код игрока уже занят в этой сессии.
	ErrDuplicateJoin = errors.New("player code already joined")

	// ErrUnknownPlayer код игрока не зарегистрирован в сессии.
	ErrUnknownPlayer = errors.New("unknown player code")

	// ErrUnknownSession сессия не найдена.
	ErrUnknownSession = errors.New("unknown session")
)
