package main

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"parenting-server/internal/auth"
	"parenting-server/internal/catalog"
	"parenting-server/internal/config"
	delivery "parenting-server/internal/delivery/http"
	ws "parenting-server/internal/delivery/websocket"
	"parenting-server/internal/logger"
	"parenting-server/internal/service"
	"parenting-server/pkg/ai"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}
	if err := cfg.RequireTokenSecret(); err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	zapLogger, err := logger.New(cfg.Logger())
	if err != nil {
		log.Fatalf("Не удалось инициализировать логгер: %v", err)
	}
	defer zapLogger.Sync()
	cfg.LogSummary(zapLogger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	aiClient, err := ai.New(ctx, cfg.AI(), logger.NewZerolog(cfg.Logger(), os.Stdout))
	if err != nil {
		zapLogger.Fatal("Не удалось создать клиента модели", zap.Error(err))
	}

	store, err := setupStorage(ctx, cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("Не удалось инициализировать хранилища", zap.Error(err))
	}
	defer store.Close()

	tokens, err := auth.NewTokenManager(cfg.SessionTokenSecret, cfg.SessionTokenTTL)
	if err != nil {
		zapLogger.Fatal("Не удалось создать менеджер токенов", zap.Error(err))
	}

	hub := ws.NewHub(tokens, cfg.CORSAllowedOrigins, zapLogger)
	hubDone := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(hubDone)
	}()

	opts := service.Options{
		Archive:           store.archive,
		Notifier:          hub,
		MaxResponseLength: cfg.MaxResponseLength,
	}
	if store.publisher != nil {
		opts.Publisher = store.publisher
	}
	gameService := service.NewGameService(
		store.sessions,
		service.NewResponseEvaluator(aiClient, zapLogger),
		catalog.NewSelector(rand.New(rand.NewSource(time.Now().UnixNano()))),
		opts,
		zapLogger,
	)

	gin.SetMode(gin.ReleaseMode)
	if !cfg.IsProduction() {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.Use(delivery.ZapLogger(zapLogger))
	router.Use(gin.Recovery())

	p := ginprometheus.NewPrometheus("gin")

	corsConfig := cors.DefaultConfig()
	if len(cfg.CORSAllowedOrigins) == 0 || (len(cfg.CORSAllowedOrigins) == 1 && cfg.CORSAllowedOrigins[0] == "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Session-Token"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "clients": hub.ClientCount()})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)
	router.GET("/ws", gin.WrapH(hub.Handler()))

	delivery.NewGameHandler(gameService, tokens, zapLogger).RegisterRoutes(router)

	// Метрики подключаем после регистрации маршрутов.
	p.Use(router)

	// WriteTimeout покрывает все попытки запроса к модели.
	writeTimeout := cfg.AITimeout*time.Duration(cfg.AIMaxAttempts) + 15*time.Second
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		zapLogger.Info("Starting HTTP server", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("HTTP Server listen error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLogger.Info("Получен сигнал завершения, начинаем graceful shutdown...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("HTTP Server forced to shutdown", zap.Error(err))
	}
	<-hubDone

	zapLogger.Info("Server exiting")
}
