package repository

import "errors"

var (
	// ErrSessionNotWaiting означает, что сессия не находится в статусе waiting.
	ErrSessionNotWaiting = errors.New("session is not waiting")
	// ErrCursorMoved означает, что курсор сессии уже не на ожидаемом вопросе
	// (или сессия не playing) — CAS не прошел.
	ErrCursorMoved = errors.New("session cursor has moved")
	// ErrSessionAlreadyFinished означает, что сессия уже завершена.
	ErrSessionAlreadyFinished = errors.New("session is already finished")
	// ErrPlayerCodeTaken означает, что код игрока уже занят в этой сессии.
	ErrPlayerCodeTaken = errors.New("player code is already taken in this session")
	// ErrAnswerExists означает, что ответ (session, question, player) уже сохранен.
	ErrAnswerExists = errors.New("answer already exists")
	// ErrPlayerMissing означает, что строка игрока исчезла между проверкой
	// и записью (конкурентный рестарт удалил игроков сессии).
	ErrPlayerMissing = errors.New("player is not registered in this session")
)
