package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"beacon-chat/config"
	"beacon-chat/internal/domain/account"
	"beacon-chat/internal/gateway"
	"beacon-chat/internal/handler"
	"beacon-chat/internal/middleware"
	"beacon-chat/internal/redis"
	"beacon-chat/internal/services"
	"beacon-chat/internal/transport/httpdto"
	"beacon-chat/pkg/database"
	"beacon-chat/pkg/logger"

	"github.com/gin-gonic/gin"
)

type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     *config.Config
	logger     *logger.Logger
}

var (
	ReleaseMode = "release"
	DebugMode   = "debug"
	TestMode    = "test"
)

// Handlers bundles everything SetupRoutes mounts.
type Handlers struct {
	Auth         *handler.AuthHandler
	Account      *handler.AccountHandler
	Conversation *handler.ConversationHandler
	Message      *handler.MessageHandler
	Upload       *handler.UploadHandler
	Admin        *handler.AdminHandler
	Gateway      *gateway.Handler
}

func New(cfg *config.Config, l *logger.Logger) *Server {
	if cfg.AppMode == ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else if cfg.AppMode == TestMode {
		gin.SetMode(gin.TestMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	return &Server{
		httpServer: &http.Server{
			Addr:    fmt.Sprintf(":%s", cfg.AppPort),
			Handler: engine,
		},
		engine: engine,
		config: cfg,
		logger: l,
	}
}

func (s *Server) SetupRoutes(handlers *Handlers, authService *services.AuthService, accountService *services.AccountService, limiter *redis.RateLimiter) {
	s.engine.Use(middleware.RequestIDMiddleware())
	s.engine.Use(middleware.CORSMiddleware())
	s.engine.Use(middleware.LoggingMiddleware(s.logger))
	s.engine.Use(middleware.ErrorHandler(s.logger))

	s.engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"message": "pong"}))
	})

	s.engine.GET("/health", func(c *gin.Context) {
		if err := database.HealthCheck(); err != nil {
			c.JSON(http.StatusServiceUnavailable, httpdto.NewErrorResponse(err.Error(), "UNHEALTHY"))
			return
		}
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"status": "healthy"}))
	})

	requireAuth := middleware.AuthMiddleware(authService)

	auth := s.engine.Group("/v1/auth")
	{
		auth.POST("/register", middleware.AuthRateLimitMiddleware(limiter), handlers.Auth.Register)
		auth.POST("/login", middleware.AuthRateLimitMiddleware(limiter), handlers.Auth.Login)
	}

	accounts := s.engine.Group("/v1/accounts", requireAuth)
	{
		accounts.GET("/me", handlers.Account.Me)
		accounts.PATCH("/me", handlers.Account.UpdateProfile)
		accounts.GET("/search", handlers.Account.Search)
		accounts.GET("/online", handlers.Account.Online)
		accounts.GET("/:id", handlers.Account.Get)
	}

	conversations := s.engine.Group("/v1/conversations", requireAuth)
	{
		conversations.POST("", handlers.Conversation.Create)
		conversations.GET("", handlers.Conversation.List)
		conversations.GET("/:id", handlers.Conversation.Get)
		conversations.POST("/:id/members", handlers.Conversation.AddMember)
		conversations.DELETE("/:id/members/me", handlers.Conversation.Leave)
		conversations.POST("/:id/messages", middleware.MessageRateLimitMiddleware(limiter), handlers.Message.Send)
		conversations.GET("/:id/messages", handlers.Message.List)
		conversations.POST("/:id/read", handlers.Message.MarkRead)
	}

	messages := s.engine.Group("/v1/messages", requireAuth)
	{
		messages.PATCH("/:id", handlers.Message.Edit)
		messages.DELETE("/:id", handlers.Message.Delete)
	}

	uploads := s.engine.Group("/v1/uploads", requireAuth)
	{
		uploads.POST("/presign", handlers.Upload.Presign)
	}

	admin := s.engine.Group("/v1/admin", requireAuth)
	{
		admin.GET("/accounts",
			middleware.RequirePermission(accountService, account.PermManageAccounts),
			handlers.Admin.ListAccounts)
		admin.POST("/accounts/:id/deactivate",
			middleware.RequirePermission(accountService, account.PermManageAccounts),
			handlers.Admin.DeactivateAccount)
		admin.DELETE("/conversations/:id",
			middleware.RequirePermission(accountService, account.PermManageConversations),
			handlers.Admin.DeleteConversation)
	}

	// Token arrives via query param here since browsers cannot set headers
	// on websocket upgrades.
	s.engine.GET("/ws", handlers.Gateway.Handle)
}

func (s *Server) Start() error {
	go func() {
		if s.logger != nil {
			s.logger.Infof("Starting the server on port %s...", s.config.AppPort)
		}
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if s.logger != nil {
				s.logger.Errorf("Error in starting the server: %s", err)
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	if s.logger != nil {
		s.logger.Infof("Server is running on :%s", s.config.AppPort)
	}

	<-quit

	if s.logger != nil {
		s.logger.Infof("Quitting signal received.. Shutting down after 5 seconds")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		if s.logger != nil {
			s.logger.Infof("Error in the graceful shutdown of the server: %s", err)
		}
		return err
	}

	if s.logger != nil {
		s.logger.Infof("Server stopped gracefully")
	}

	return nil
}
