package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/ququiz-api/internal/handler/dto"
	apperrors "github.com/yourusername/ququiz-api/internal/pkg/errors"
	"github.com/yourusername/ququiz-api/internal/service"
)

// SessionHandler обрабатывает жизненный цикл сессий: команды ведущего,
// присоединение игроков, прием ответов и чтение состояния.
type SessionHandler struct {
	sessionService *service.SessionService
}

// NewSessionHandler создает новый обработчик сессий
func NewSessionHandler(sessionService *service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// CreateSession создает новую сессию викторины в статусе waiting
func (h *SessionHandler) CreateSession(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint)
	ownerID := c.MustGet("hostID").(uint)

	session, err := h.sessionService.CreateSession(quizID, ownerID)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewSessionResponse(session))
}

// ListSessions возвращает сессии викторины ведущего
func (h *SessionHandler) ListSessions(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint)
	ownerID := c.MustGet("hostID").(uint)

	sessions, err := h.sessionService.ListSessions(quizID, ownerID)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	response := make([]dto.SessionResponse, 0, len(sessions))
	for i := range sessions {
		response = append(response, dto.NewSessionResponse(&sessions[i]))
	}
	c.JSON(http.StatusOK, gin.H{"sessions": response, "total": len(response)})
}

// ResolveJoinCode находит waiting-сессию по 4-значному коду викторины
func (h *SessionHandler) ResolveJoinCode(c *gin.Context) {
	shortID := c.Param("code")

	session, err := h.sessionService.ResolveJoinCode(shortID)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSessionResponse(session))
}

// JoinSessionRequest представляет запрос игрока на присоединение
type JoinSessionRequest struct {
	PlayerCode string `json:"player_code" binding:"required"`
}

// JoinSession регистрирует игрока в зале ожидания сессии
func (h *SessionHandler) JoinSession(c *gin.Context) {
	sessionID := c.MustGet("sessionID").(uint)

	var req JoinSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	player, err := h.sessionService.JoinSession(sessionID, req.PlayerCode)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewPlayerResponse(player))
}

// StartSession запускает сессию командой ведущего
func (h *SessionHandler) StartSession(c *gin.Context) {
	sessionID := c.MustGet("sessionID").(uint)
	ownerID := c.MustGet("hostID").(uint)

	session, err := h.sessionService.StartSession(sessionID, ownerID)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSessionResponse(session))
}

// AdvanceQuestion сдвигает курсор сессии на следующий вопрос
func (h *SessionHandler) AdvanceQuestion(c *gin.Context) {
	sessionID := c.MustGet("sessionID").(uint)
	ownerID := c.MustGet("hostID").(uint)

	finished, err := h.sessionService.AdvanceQuestion(sessionID, ownerID)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"finished": finished})
}

// FinishSession принудительно завершает сессию
func (h *SessionHandler) FinishSession(c *gin.Context) {
	sessionID := c.MustGet("sessionID").(uint)
	ownerID := c.MustGet("hostID").(uint)

	if err := h.sessionService.FinishSession(sessionID, ownerID); err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Session finished"})
}

// RestartSession перезапускает сессию, удаляя игроков и ответы.
// ?force=true разрешает перезапуск незавершенной сессии.
func (h *SessionHandler) RestartSession(c *gin.Context) {
	sessionID := c.MustGet("sessionID").(uint)
	ownerID := c.MustGet("hostID").(uint)
	force := c.Query("force") == "true"

	if err := h.sessionService.RestartSession(sessionID, ownerID, force); err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Session restarted"})
}

// SubmitAnswerRequest представляет ответ игрока на текущий вопрос
type SubmitAnswerRequest struct {
	PlayerCode     string `json:"player_code" binding:"required"`
	QuestionID     uint   `json:"question_id" binding:"required"`
	SelectedOption *int   `json:"selected_option" binding:"required"`
}

// SubmitAnswer принимает ответ игрока на текущий активный вопрос
func (h *SessionHandler) SubmitAnswer(c *gin.Context) {
	sessionID := c.MustGet("sessionID").(uint)

	var req SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.sessionService.SubmitAnswer(sessionID, req.PlayerCode, req.QuestionID, *req.SelectedOption)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetLeaderboard возвращает таблицу лидеров сессии
func (h *SessionHandler) GetLeaderboard(c *gin.Context) {
	sessionID := c.MustGet("sessionID").(uint)

	entries, err := h.sessionService.GetLeaderboard(sessionID)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"leaderboard": entries, "total": len(entries)})
}

// GetSessionState возвращает снимок состояния для ресинка клиента.
// ?player=<code> добавляет в снимок очки этого игрока.
func (h *SessionHandler) GetSessionState(c *gin.Context) {
	sessionID := c.MustGet("sessionID").(uint)

	state, err := h.sessionService.GetSessionState(sessionID, c.Query("player"))
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, state)
}

// GetQuestionStats возвращает распределение ответов по вариантам вопроса.
// Доступно только ведущему.
func (h *SessionHandler) GetQuestionStats(c *gin.Context) {
	sessionID := c.MustGet("sessionID").(uint)
	questionID := c.MustGet("questionID").(uint)
	ownerID := c.MustGet("hostID").(uint)

	stats, err := h.sessionService.GetQuestionStats(sessionID, questionID, ownerID)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// handleSessionError обрабатывает ошибки сервиса сессий и отправляет соответствующий HTTP ответ
func (h *SessionHandler) handleSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound),
		errors.Is(err, apperrors.ErrUnknownSession),
		errors.Is(err, apperrors.ErrUnknownPlayer):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrInvalidTransition),
		errors.Is(err, apperrors.ErrNotActive),
		errors.Is(err, apperrors.ErrDuplicateAnswer),
		errors.Is(err, apperrors.ErrDuplicateJoin),
		errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Printf("ERROR: Internal server error in SessionHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
