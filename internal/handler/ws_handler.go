package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yourusername/ququiz-api/internal/pkg/errors"
	"github.com/yourusername/ququiz-api/internal/service"
	"github.com/yourusername/ququiz-api/internal/websocket"
)

// WSHandler обрабатывает WebSocket подключения к потоку событий сессии.
// Поток открыт и игрокам, и ведущему: события не содержат секретов,
// только подсказки перечитать состояние по REST.
type WSHandler struct {
	relay          *websocket.Relay
	sessionService *service.SessionService
}

// NewWSHandler создает новый обработчик WebSocket подключений
func NewWSHandler(relay *websocket.Relay, sessionService *service.SessionService) *WSHandler {
	return &WSHandler{
		relay:          relay,
		sessionService: sessionService,
	}
}

// HandleConnection апгрейдит соединение и подписывает клиента на события сессии
func (h *WSHandler) HandleConnection(c *gin.Context) {
	sessionID := c.MustGet("sessionID").(uint)

	// Не апгрейдим соединение к несуществующей сессии
	if _, err := h.sessionService.GetSessionState(sessionID, ""); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, apperrors.ErrUnknownSession) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	// Ошибки апгрейда и подписки логируются внутри Relay;
	// после апгрейда HTTP-ответ писать уже нельзя.
	_ = h.relay.ServeSession(c.Writer, c.Request, sessionID)
}
