package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"

	"textgame-server/internal/ai"
	"textgame-server/internal/config"
	"textgame-server/internal/database"
	"textgame-server/internal/handler"
	"textgame-server/internal/logger"
	"textgame-server/internal/repository"
	"textgame-server/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("файл .env не найден, используется окружение процесса")
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("не удалось загрузить конфигурацию: %v\n", err)
		os.Exit(1)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.LogLevel,
		Encoding: cfg.LogEncoding,
	})
	if err != nil {
		fmt.Printf("не удалось инициализировать логгер: %v\n", err)
		os.Exit(1)
	}
	defer zapLogger.Sync()

	zap.ReplaceGlobals(zapLogger)
	zap.L().Info("логгер инициализирован", zap.String("logLevel", cfg.LogLevel))
	zap.L().Info("конфигурация загружена", zap.String("dsn", cfg.MaskedDSN()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := database.Connect(ctx, cfg.DSN())
	if err != nil {
		zap.L().Fatal("не удалось подключиться к PostgreSQL", zap.Error(err))
	}
	defer database.Close(pool)

	if err := database.ApplyMigrations(pool); err != nil {
		zap.L().Fatal("не удалось применить миграции", zap.Error(err))
	}

	aiClient, err := ai.New(ai.Config{
		Provider: cfg.AIProvider,
		APIKey:   cfg.AIAPIKey,
		BaseURL:  cfg.AIBaseURL,
		Model:    cfg.AIModel,
		Proxy:    cfg.AIProxy,
		Timeout:  cfg.AITimeout,
	}, zapLogger.Named("AIClient"))
	if err != nil {
		zap.L().Fatal("не удалось создать клиент языковой модели", zap.Error(err))
	}
	zap.L().Info("клиент языковой модели создан", zap.String("model", aiClient.ModelName()))

	styleRepo := repository.NewPgWritingStyleRepository(pool)
	storyRepo := repository.NewPgStoryRepository(pool)

	storySvc := service.NewStoryService(aiClient, styleRepo, storyRepo, service.GenerationConfig{
		OptionsCount:         cfg.GenOptionsCount,
		ChapterLength:        cfg.GenChapterLength,
		SummaryLength:        cfg.GenSummaryLength,
		Language:             cfg.GenLanguage,
		MaxRetries:           cfg.GenMaxRetries,
		MaxSourceTokens:      cfg.GenMaxSourceTokens,
		AutoWriteMaxChapters: cfg.AutoWriteMaxChapters,
	}, zapLogger.Named("StoryService"))

	storyHandler := handler.NewStoryHandler(storySvc, zapLogger.Named("StoryHandler"))

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.RedirectTrailingSlash = true
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:3000"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)

	storyHandler.RegisterRoutes(router)

	p := ginprometheus.NewPrometheus("gin")
	p.Use(router)

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		// генерация главы держит запрос открытым на все стадии с повторами
		WriteTimeout: 30 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	zap.L().Info("запуск HTTP-сервера", zap.String("port", cfg.ServerPort))
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zap.L().Fatal("ошибка HTTP-сервера", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.L().Info("остановка сервера...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("принудительная остановка HTTP-сервера", zap.Error(err))
	}

	zap.L().Info("сервер остановлен")
}
