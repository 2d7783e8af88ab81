package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskboard/internal/cache"
	"taskboard/internal/config"
	"taskboard/internal/handler"
	"taskboard/internal/middleware"
	"taskboard/internal/realtime"
	"taskboard/internal/repository"
	"taskboard/internal/service"
	"taskboard/migrations"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
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
	Hub    *realtime.Hub
	Logger *zap.Logger
}

func Init(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to DB: %w", err)
	}
	logger.Info("connected to database", zap.String("host", cfg.DBHost), zap.String("db", cfg.DBName))

	if err := runMigrations(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	logger.Info("database schema up to date")

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pageCache := cache.NewRedisCache(redisClient)

	hub := realtime.NewHub(logger)

	// Setup Gin
	r := gin.Default()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	tenantRepo := repository.NewTenantRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)
	boardRepo := repository.NewBoardRepository(db)
	todoRepo := repository.NewTodoRepository(db)

	// Initialize services
	boardService := service.NewBoardService(boardRepo, membershipRepo, pageCache, hub, logger)
	todoService := service.NewTodoService(todoRepo, boardRepo, membershipRepo, pageCache, hub, logger)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(userRepo)
	tenantHandler := handler.NewTenantHandler(tenantRepo, userRepo, membershipRepo)
	boardHandler := handler.NewBoardHandler(boardService)
	todoHandler := handler.NewTodoHandler(todoService)
	wsHandler := handler.NewWSHandler(hub, membershipRepo, logger)

	// Public routes
	r.POST("/auth/signup", authHandler.Signup)
	r.POST("/auth/login", authHandler.Login)
	r.GET("/ws", wsHandler.Serve)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Protected routes - require authentication
	authorized := r.Group("/")
	authorized.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	{
		authorized.GET("/tenants", tenantHandler.List)
	}

	// Tenant-scoped routes - require membership in the tenant
	tenantScoped := authorized.Group("/tenants/:id")
	tenantScoped.Use(middleware.TenantGuard(membershipRepo))
	{
		tenantScoped.DELETE("", tenantHandler.Delete)

		// Member routes
		tenantScoped.GET("/members", tenantHandler.ListMembers)
		tenantScoped.POST("/members", tenantHandler.AddMember)
		tenantScoped.DELETE("/members/:user_id", tenantHandler.RemoveMember)

		// Board routes
		tenantScoped.GET("/boards", boardHandler.List)
		tenantScoped.POST("/boards", boardHandler.Create)
		tenantScoped.GET("/boards/:board_id", boardHandler.GetByID)
		tenantScoped.PATCH("/boards/:board_id", boardHandler.Update)
		tenantScoped.DELETE("/boards/:board_id", boardHandler.Delete)

		// Todo routes
		tenantScoped.GET("/boards/:board_id/todos", todoHandler.List)
		tenantScoped.POST("/boards/:board_id/todos", todoHandler.Create)
		tenantScoped.GET("/todos/:todo_id", todoHandler.GetByID)
		tenantScoped.PATCH("/todos/:todo_id", todoHandler.Update)
		tenantScoped.DELETE("/todos/:todo_id", todoHandler.Delete)
	}

	return &Server{
		Engine: r,
		DB:     db,
		Config: cfg,
		Hub:    hub,
		Logger: logger,
	}, nil
}

func runMigrations(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return err
	}
	driver, err := migratepg.WithInstance(sqlDB, &migratepg.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

func (s *Server) Run() {
	srv := &http.Server{
		Addr:    ":" + s.Config.ServerPort,
		Handler: s.Engine,
	}

	go func() {
		s.Logger.Info("server running", zap.String("port", s.Config.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.Logger.Fatal("failed to listen", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	s.Logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		s.Logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	s.Logger.Info("server exited properly")
}
