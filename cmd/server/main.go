package main

import (
	"log"

	"github.com/freshkeep/freshkeep/internal/audit"
	"github.com/freshkeep/freshkeep/internal/config"
	"github.com/freshkeep/freshkeep/internal/database"
	"github.com/freshkeep/freshkeep/internal/handler"
	"github.com/freshkeep/freshkeep/internal/middleware"
	"github.com/freshkeep/freshkeep/internal/repository"
	"github.com/freshkeep/freshkeep/internal/service"
	"github.com/freshkeep/freshkeep/internal/session"
	"github.com/freshkeep/freshkeep/pkg/logger"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.Load()

	isProduction := cfg.Environment == "production"
	if err := logger.Init(!isProduction); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	database.Connect(cfg)
	database.Migrate()

	// Audit log for product mutations
	auditLog, err := audit.Open(cfg.AuditLogPath)
	if err != nil {
		log.Fatalf("Failed to open audit log: %v", err)
	}
	defer auditLog.Close()

	// Redis-backed session store
	sessionStore, err := session.NewRedisStore(cfg.RedisURL, cfg.SessionTTL)
	if err != nil {
		log.Fatalf("Failed to connect session store: %v", err)
	}
	defer sessionStore.Close()

	// Redis client for the IP rate limiter on auth routes
	redisOpt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Invalid REDIS_URL: %v", err)
	}
	redisClient := redis.NewClient(redisOpt)
	defer redisClient.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(database.DB)
	productRepo := repository.NewProductRepository(database.DB)

	// Initialize services
	authService := service.NewAuthService(userRepo, cfg.LoginMaxAttempts, cfg.LoginLockout, cfg.Environment)
	productService := service.NewProductService(productRepo, auditLog)

	// Session middleware
	sessionManager := middleware.NewSessionManager(sessionStore, cfg.SessionSecret, cfg.SessionTTL, isProduction)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService, sessionManager)
	productHandler := handler.NewProductHandler(productService)

	rateLimiter := middleware.NewRateLimiter(redisClient, middleware.RateLimiterConfig{
		MaxRequests: cfg.RateLimitMaxRequests,
		Window:      cfg.RateLimitWindow,
	})

	// Setup Gin router
	if isProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.HSTSMiddleware(isProduction))
	router.Use(cors.Default())
	router.Use(sessionManager.Middleware())

	// Auth routes (public, IP rate limited)
	auth := router.Group("/api/auth")
	auth.Use(rateLimiter.Middleware())
	{
		auth.GET("/session", authHandler.Session)
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/login", authHandler.Login)
		auth.POST("/logout", authHandler.Logout)
	}

	// Product routes (require a logged-in session)
	products := router.Group("/api/products")
	products.Use(middleware.RequireAuth())
	{
		products.GET("", productHandler.List)
		products.GET("/expiring", productHandler.ListExpiring)
		products.GET("/meta", productHandler.Meta)
		products.GET("/:id", productHandler.Get)
		products.POST("", productHandler.Create)
		products.PUT("/:id", productHandler.Update)
		products.DELETE("/:id", productHandler.Delete)
	}

	log.Printf("Server starting on %s", cfg.ServerPort)
	if err := router.Run(cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
