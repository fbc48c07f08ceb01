package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/ququiz-api/internal/domain/entity"
	"github.com/yourusername/ququiz-api/internal/handler/dto"
	apperrors "github.com/yourusername/ququiz-api/internal/pkg/errors"
	"github.com/yourusername/ququiz-api/internal/service"
)

// QuizHandler обрабатывает запросы, связанные с контентом викторин
type QuizHandler struct {
	quizService *service.QuizService
}

// NewQuizHandler создает новый обработчик викторин
func NewQuizHandler(quizService *service.QuizService) *QuizHandler {
	return &QuizHandler{quizService: quizService}
}

// CreateQuizRequest представляет запрос на создание викторины
type CreateQuizRequest struct {
	Title     string `json:"title" binding:"required,min=1,max=100"`
	Questions []struct {
		Text          string          `json:"text,omitempty"`
		ImageURL      string          `json:"image_url,omitempty"`
		Options       []entity.Option `json:"options" binding:"required,min=2,max=6"`
		CorrectOption *int            `json:"correct_option"` // nil = survey-вопрос без правильного ответа
		DurationSec   int             `json:"duration_sec,omitempty"`
	} `json:"questions" binding:"required,min=1"`
}

// CreateQuiz обрабатывает запрос на создание викторины с вопросами
func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	ownerID := c.MustGet("hostID").(uint)

	var req CreateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	questions := make([]service.QuestionInput, 0, len(req.Questions))
	for _, q := range req.Questions {
		questions = append(questions, service.QuestionInput{
			Text:          q.Text,
			ImageURL:      q.ImageURL,
			Options:       entity.OptionArray(q.Options),
			CorrectOption: q.CorrectOption,
			DurationSec:   q.DurationSec,
		})
	}

	quiz, err := h.quizService.CreateQuiz(ownerID, req.Title, questions)
	if err != nil {
		h.handleQuizError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewQuizResponse(quiz, true))
}

// GetQuiz возвращает викторину вместе с вопросами
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint) // Получаем из контекста

	quiz, err := h.quizService.GetQuiz(quizID)
	if err != nil {
		h.handleQuizError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuizResponse(quiz, true))
}

// ListQuizzes возвращает викторины ведущего с пагинацией
func (h *QuizHandler) ListQuizzes(c *gin.Context) {
	ownerID := c.MustGet("hostID").(uint)

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 {
		limit = 20
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	quizzes, total, err := h.quizService.ListQuizzes(ownerID, limit, offset)
	if err != nil {
		h.handleQuizError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"quizzes": dto.NewQuizListResponse(quizzes),
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

// DeleteQuiz удаляет викторину ведущего вместе с вопросами
func (h *QuizHandler) DeleteQuiz(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint)
	ownerID := c.MustGet("hostID").(uint)

	if err := h.quizService.DeleteQuiz(quizID, ownerID); err != nil {
		h.handleQuizError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Quiz deleted successfully"})
}

// handleQuizError обрабатывает ошибки сервиса викторин и отправляет соответствующий HTTP ответ
func (h *QuizHandler) handleQuizError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrConflict) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrValidation) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrUnauthorized) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrForbidden) {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	} else {
		log.Printf("ERROR: Internal server error in QuizHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
