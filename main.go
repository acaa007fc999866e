package main

import (
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/Carlostavo/residuos-api/config"
	"github.com/Carlostavo/residuos-api/controllers"
	"github.com/Carlostavo/residuos-api/middleware"
	"github.com/Carlostavo/residuos-api/models"
	"github.com/Carlostavo/residuos-api/pkg/logger"
	"github.com/Carlostavo/residuos-api/pkg/metrics"
	"github.com/Carlostavo/residuos-api/services"
)

func main() {
	// Basic logging
	log.Println("Starting Residuos API server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zl := logger.New(cfg.LogLevel)

	// Connect to database
	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate database models
	db := config.GetDB()
	if err := db.AutoMigrate(&models.Profile{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)

	provider := services.NewAuthProviderService(cfg)
	router := setupRouter(cfg, db, provider, zl)

	// Start server
	port := ":" + cfg.Port
	zl.Info().Str("port", cfg.Port).Msg("server listening")
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupRouter wires middleware, controllers and routes. Tests call it
// with an in-memory store and a mock provider.
func setupRouter(cfg *config.Config, db *gorm.DB, provider services.IdentityProvider, zl zerolog.Logger) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.CORSOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	resolver := services.NewSessionResolver(db, zl)
	accounts := services.NewAccountService(db, provider, cfg, zl)
	authController := controllers.NewAuthController(provider, accounts, resolver)
	accountController := controllers.NewAccountController(accounts, resolver)

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Health check endpoint
		v1.GET("/health", healthCheck)

		// Database status endpoint
		v1.GET("/database/status", databaseStatus)

		auth := v1.Group("/auth")
		{
			// The credential surface is rate limited per client IP
			auth.POST("/login", middleware.RateLimit(1, 5), authController.Login)
			auth.POST("/forgot-password", middleware.RateLimit(1, 5), authController.ForgotPassword)

			protected := auth.Group("", middleware.EnsureValidToken(cfg))
			protected.GET("/me", authController.Me)
			protected.POST("/logout", authController.Logout)
			protected.POST("/reset-password", middleware.RateLimit(1, 5), authController.ResetPassword)
		}

		// Admin-only account administration; the role check itself runs
		// inside the account service on every operation.
		admin := v1.Group("/admin", middleware.EnsureValidToken(cfg))
		{
			admin.POST("/users", accountController.CreateUser)
			admin.GET("/users", accountController.ListUsers)
			admin.POST("/users/reset-email", accountController.SendResetEmail)
			admin.PUT("/users/:id", accountController.UpdateUser)
			admin.DELETE("/users/:id", accountController.DeleteUser)
			admin.PATCH("/users/:id/active", accountController.ToggleActive)
		}
	}

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Residuos API is running",
	})
}

// databaseStatus checks database connectivity and returns table information
func databaseStatus(c *gin.Context) {
	db := config.GetDB()

	// Get the underlying SQL database to check connection
	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	// Ping the database to verify connection
	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	// Get list of tables
	var tables []string
	if err := db.Raw("SELECT tablename FROM pg_tables WHERE schemaname = 'public'").Scan(&tables).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_QUERY_ERROR",
				"message": "Failed to query tables",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
		"tables":  tables,
	})
}
