package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/ququiz-api/internal/config"
	"github.com/yourusername/ququiz-api/internal/handler"
	"github.com/yourusername/ququiz-api/internal/middleware"
	"github.com/yourusername/ququiz-api/internal/notify"
	pgRepo "github.com/yourusername/ququiz-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/ququiz-api/internal/repository/redis"
	"github.com/yourusername/ququiz-api/internal/service"
	"github.com/yourusername/ququiz-api/internal/service/sessionmanager"
	ws "github.com/yourusername/ququiz-api/internal/websocket"
	"github.com/yourusername/ququiz-api/pkg/auth"
	"github.com/yourusername/ququiz-api/pkg/database"
)

func main() {
	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к PostgreSQL
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	// Применяем миграции
	if err := database.MigrateDB(db); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к Redis
	redisClient, err := database.NewUniversalRedisClient(cfg.Redis)
	if err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	log.Println("Successfully connected to Redis")

	// Инициализируем репозитории
	quizRepo := pgRepo.NewQuizRepo(db)
	sessionRepo := pgRepo.NewSessionRepo(db)
	playerRepo := pgRepo.NewPlayerRepo(db)
	answerRepo := pgRepo.NewAnswerRepo(db)

	cacheRepo, err := redisRepo.NewCacheRepo(redisClient)
	if err != nil {
		log.Printf("Failed to initialize CacheRepo: %v", err)
		os.Exit(1)
	}

	// Инициализируем JWT сервис для токенов ведущих
	jwtService, err := auth.NewJWTService(cfg.JWT.SecretKey, cfg.JWT.ExpirationHrs)
	if err != nil {
		log.Printf("Failed to initialize JWTService: %v", err)
		os.Exit(1)
	}

	// PubSub для доставки событий сессий. Отдельный клиент, потому что
	// подписка блокирует соединение.
	var pubSubProvider notify.PubSubProvider = &notify.NoOpPubSub{}
	pubSubClient, err := database.NewUniversalRedisClient(cfg.Redis)
	if err != nil {
		log.Printf("Ошибка при инициализации Redis клиента для PubSub: %v. События будут неактивны.", err)
	} else {
		redisProvider, errProv := notify.NewRedisPubSub(pubSubClient)
		if errProv != nil {
			log.Printf("Ошибка при создании Redis PubSub провайдера: %v. События будут неактивны.", errProv)
			pubSubClient.Close()
		} else {
			log.Println("Redis PubSub провайдер успешно инициализирован")
			pubSubProvider = redisProvider
		}
	}
	publisher := notify.NewEventPublisher(pubSubProvider)

	// Конфигурация движка сессий
	smConfig := sessionmanager.DefaultConfig()
	if cfg.Session.QuizCacheTTLSec > 0 {
		smConfig.QuizCacheTTL = time.Duration(cfg.Session.QuizCacheTTLSec) * time.Second
	}
	if cfg.Session.LeaderboardCacheTTLMs > 0 {
		smConfig.LeaderboardCacheTTL = time.Duration(cfg.Session.LeaderboardCacheTTLMs) * time.Millisecond
	}
	if cfg.Session.MaxPlayers > 0 {
		smConfig.MaxPlayersPerSession = cfg.Session.MaxPlayers
	}

	// Инициализируем сервисы
	sessionService := service.NewSessionService(&sessionmanager.Dependencies{
		QuizRepo:    quizRepo,
		SessionRepo: sessionRepo,
		PlayerRepo:  playerRepo,
		AnswerRepo:  answerRepo,
		CacheRepo:   cacheRepo,
		Publisher:   publisher,
		Config:      smConfig,
	})
	quizService := service.NewQuizService(quizRepo, sessionRepo, sessionService.Loader())

	// WebSocket ретранслятор событий
	relay := ws.NewRelay(pubSubProvider, originChecker(cfg.Server.AllowedOrigins))

	// Инициализируем обработчики
	quizHandler := handler.NewQuizHandler(quizService)
	sessionHandler := handler.NewSessionHandler(sessionService)
	wsHandler := handler.NewWSHandler(relay, sessionService)

	// Инициализируем middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService)
	rateLimiter := middleware.NewRateLimiter(redisClient)

	isProduction := gin.Mode() == gin.ReleaseMode

	// Инициализируем роутер Gin
	router := gin.Default()

	// Настройка доверенных прокси для корректной работы c.ClientIP()
	if isProduction {
		if err := router.SetTrustedProxies(nil); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	} else {
		if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	}

	// Настройка CORS
	allowedOrigins := cfg.Server.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Rate limiting включается конфигом; без Redis лимитер работает fail-open
	joinLimit := passThrough()
	submitLimit := passThrough()
	if cfg.RateLimit.Enabled {
		joinLimit = rateLimiter.Limit(middleware.JoinRateLimitConfig())
		submitLimit = rateLimiter.Limit(middleware.SubmitRateLimitConfig())
	}

	// Настраиваем маршруты API
	api := router.Group("/api")
	{
		// Резолв кода присоединения (публичный, защищен от перебора кодов)
		api.GET("/join/:code", joinLimit, sessionHandler.ResolveJoinCode)

		// Викторины (только ведущие)
		quizzes := api.Group("/quizzes")
		quizzes.Use(authMiddleware.RequireHost())
		{
			quizzes.POST("", quizHandler.CreateQuiz)
			quizzes.GET("", quizHandler.ListQuizzes)

			quizWithID := quizzes.Group("/:id")
			quizWithID.Use(middleware.ExtractUintParam("id", "quizID"))
			{
				quizWithID.GET("", quizHandler.GetQuiz)
				quizWithID.DELETE("", quizHandler.DeleteQuiz)
				quizWithID.POST("/sessions", sessionHandler.CreateSession)
				quizWithID.GET("/sessions", sessionHandler.ListSessions)
			}
		}

		// Сессии
		sessions := api.Group("/sessions/:id")
		sessions.Use(middleware.ExtractUintParam("id", "sessionID"))
		{
			// Публичные маршруты игроков
			sessions.POST("/players", joinLimit, sessionHandler.JoinSession)
			sessions.POST("/answers", submitLimit, sessionHandler.SubmitAnswer)
			sessions.GET("/state", sessionHandler.GetSessionState)
			sessions.GET("/leaderboard", sessionHandler.GetLeaderboard)

			// Команды ведущего
			hostSessions := sessions.Group("")
			hostSessions.Use(authMiddleware.RequireHost())
			{
				hostSessions.POST("/start", sessionHandler.StartSession)
				hostSessions.POST("/advance", sessionHandler.AdvanceQuestion)
				hostSessions.POST("/finish", sessionHandler.FinishSession)
				hostSessions.POST("/restart", sessionHandler.RestartSession)

				questionStats := hostSessions.Group("/questions/:questionID")
				questionStats.Use(middleware.ExtractUintParam("questionID", "questionID"))
				{
					questionStats.GET("/stats", sessionHandler.GetQuestionStats)
				}
			}
		}
	}

	// WebSocket маршрут: поток событий сессии
	router.GET("/ws/sessions/:id",
		middleware.ExtractUintParam("id", "sessionID"),
		wsHandler.HandleConnection,
	)

	// Настраиваем HTTP сервер с тайм-аутами для защиты от slow client attacks
	readTimeout := cfg.Server.ReadTimeout
	if readTimeout == 0 {
		readTimeout = 15
	}
	writeTimeout := cfg.Server.WriteTimeout
	if writeTimeout == 0 {
		writeTimeout = 15
	}
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(readTimeout) * time.Second,
		WriteTimeout: time.Duration(writeTimeout) * time.Second,
	}

	// Запускаем сервер в горутине
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
		}
	}()

	// Ждем сигнал остановки
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Отключаем WebSocket клиентов и закрываем PubSub
	relay.Close()
	if err := pubSubProvider.Close(); err != nil {
		log.Printf("Error closing PubSub provider: %v", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	log.Println("Server exited properly")
}

// originChecker возвращает CheckOrigin для WebSocket, синхронизированный с CORS
func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		// Пустой Origin - не браузерный клиент (мобильное приложение, curl)
		if origin == "" {
			return true
		}
		if len(allowed) == 0 {
			return true
		}
		for _, a := range allowed {
			if origin == a {
				return true
			}
		}
		log.Printf("WebSocket: rejected unauthorized origin: %s", origin)
		return false
	}
}

// passThrough - no-op middleware на месте отключенного лимитера
func passThrough() gin.HandlerFunc {
	return func(c *gin.Context) { c.Next() }
}
