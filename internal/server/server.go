package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"teamhub/internal/cache"
	"teamhub/internal/config"
	"teamhub/internal/handler"
	"teamhub/internal/logger"
	"teamhub/internal/middleware"
	"teamhub/internal/model"
	"teamhub/internal/realtime"
	"teamhub/internal/repository"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Server struct {
	Engine *gin.Engine
	DB     *gorm.DB
	Config *config.Config
	Log    *logger.Logger
	Hub    *realtime.Hub
	Tokens *cache.TokenStore
}

func Init(cfg *config.Config) (*Server, error) {
	log := logger.New()

	// Setup GORM
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("❌ failed to connect to DB: %w", err)
	}
	log.Info("✅ Connected to database")

	if err := migrate(db); err != nil {
		return nil, fmt.Errorf("❌ failed to run migrations: %w", err)
	}
	log.Info("✅ Migrations applied")

	// Token denylist is optional: without Redis, logout is local-only
	var tokens *cache.TokenStore
	if cfg.RedisAddr != "" {
		tokens, err = cache.NewTokenStore(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return nil, fmt.Errorf("❌ failed to connect to Redis: %w", err)
		}
		log.Info("✅ Connected to Redis", zap.String("addr", cfg.RedisAddr))
	} else {
		log.Warn("⚠️  REDIS_ADDR not set, token revocation disabled")
	}

	hub := realtime.NewHub(cfg.JWTSecret, log)

	// Setup Gin
	r := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = strings.Split(cfg.AllowedOrigins, ",")
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	r.Use(cors.New(corsConfig))
	r.Use(middleware.Metrics())

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	eventRepo := repository.NewEventRepository(db)
	columnRepo := repository.NewColumnRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	chatRepo := repository.NewChatRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(userRepo, tokens)
	userHandler := handler.NewUserHandler(userRepo)
	eventHandler := handler.NewEventHandler(eventRepo, hub)
	columnHandler := handler.NewColumnHandler(columnRepo, eventRepo, hub)
	taskHandler := handler.NewTaskHandler(taskRepo, columnRepo, eventRepo, userRepo, hub)
	chatHandler := handler.NewChatHandler(chatRepo, messageRepo, userRepo, hub)

	// Public routes
	r.POST("/register", authHandler.Register)
	r.POST("/login", authHandler.Login)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Protected routes - require authentication
	authorized := r.Group("/")
	authorized.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret, tokens))
	{
		authorized.POST("/logout", authHandler.Logout)
		authorized.GET("/me", authHandler.Me)

		// User routes
		authorized.GET("/users", userHandler.GetAll)
		authorized.GET("/users/:id", userHandler.GetByID)
		authorized.PUT("/users/:id", userHandler.Update)

		// Event routes
		authorized.POST("/events", eventHandler.Create)
		authorized.GET("/events", eventHandler.GetAll)
		authorized.GET("/events/:id", eventHandler.GetByID)
		authorized.PUT("/events/:id", eventHandler.Update)
		authorized.DELETE("/events/:id", eventHandler.Delete)

		// Column routes
		authorized.POST("/columns", columnHandler.Create)
		authorized.GET("/columns", columnHandler.GetAll)
		authorized.GET("/events/:id/columns", columnHandler.GetByEventID)
		authorized.GET("/columns/:id", columnHandler.GetByID)
		authorized.PUT("/columns/:id", columnHandler.Update)
		authorized.DELETE("/columns/:id", columnHandler.Delete)
		authorized.POST("/events/:id/columns/reorder", columnHandler.ReorderColumns)

		// Task routes
		authorized.POST("/tasks", taskHandler.Create)
		authorized.GET("/tasks", taskHandler.GetAll)
		authorized.GET("/tasks/:id", taskHandler.GetByID)
		authorized.GET("/columns/:id/tasks", taskHandler.GetByColumnID)
		authorized.PUT("/tasks/:id", taskHandler.Update)
		authorized.DELETE("/tasks/:id", taskHandler.Delete)
		authorized.POST("/tasks/:id/move", taskHandler.Move)

		// Chat routes
		authorized.POST("/chats", chatHandler.Create)
		authorized.GET("/chats", chatHandler.GetAll)
		authorized.GET("/chats/:id", chatHandler.GetByID)
		authorized.GET("/chats/:id/messages", chatHandler.GetMessages)
		authorized.POST("/chats/:id/messages", chatHandler.CreateMessage)
		authorized.DELETE("/chats/:id/messages/:message_id", chatHandler.DeleteMessage)
	}

	// Live change feed. The token travels in the query string because the
	// browser WebSocket API cannot set headers.
	r.GET("/ws", hub.HandleWS)

	return &Server{
		Engine: r,
		DB:     db,
		Config: cfg,
		Log:    log,
		Hub:    hub,
		Tokens: tokens,
	}, nil
}

func migrate(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return err
	}
	return db.AutoMigrate(
		&model.User{},
		&model.Event{},
		&model.Column{},
		&model.Task{},
		&model.Chat{},
		&model.ChatMessage{},
	)
}

func (s *Server) Run() {
	srv := &http.Server{
		Addr:    ":" + s.Config.ServerPort,
		Handler: s.Engine,
	}

	go func() {
		s.Log.Info("🚀 Server running", zap.String("port", s.Config.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.Log.Fatal("❌ Failed to listen", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	s.Log.Info("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		s.Log.Fatal("❌ Server forced to shutdown", zap.Error(err))
	}

	s.Log.Info("✅ Server exited properly")
}
