package middleware

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/ququiz-api/pkg/auth"
)

// HostIDKey - ключ контекста Gin, под которым хранится ID ведущего
const HostIDKey = "hostID"

// AuthMiddleware обеспечивает аутентификацию ведущих для защищенных маршрутов.
// Игроки токенов не имеют: их идентифицирует код игрока в теле запроса.
type AuthMiddleware struct {
	jwtService *auth.JWTService
}

// NewAuthMiddleware создает новый middleware аутентификации
func NewAuthMiddleware(jwtService *auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{jwtService: jwtService}
}

// RequireHost проверяет Bearer-токен и кладет ID ведущего в контекст
func (m *AuthMiddleware) RequireHost() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required", "error_type": "token_missing"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}", "error_type": "token_format"})
			c.Abort()
			return
		}

		hostID, err := m.jwtService.ParseToken(parts[1])
		if err != nil {
			log.Printf("[AuthMiddleware] Отклонен токен: %v", err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token", "error_type": "token_invalid"})
			c.Abort()
			return
		}

		c.Set(HostIDKey, hostID)
		c.Next()
	}
}
