package main

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/torquehub/torquehub-api/config"
	"github.com/torquehub/torquehub-api/controllers"
	"github.com/torquehub/torquehub-api/middleware"
	"github.com/torquehub/torquehub-api/models"
	"github.com/torquehub/torquehub-api/seed"
	"github.com/torquehub/torquehub-api/services"
	"github.com/torquehub/torquehub-api/utils"
)

func main() {
	// Load configuration and set up structured logging
	cfg, err := config.Load()
	if err != nil {
		utils.InitLogger("development", "info")
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	utils.InitLogger(cfg.GoEnv, cfg.LogLevel)

	log.Info().Msg("Starting TorqueHub Garage API server...")

	// Connect to database
	if err := config.ConnectDatabase(); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}

	// Auto-migrate database models
	db := config.GetDB()
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate database")
	}
	log.Info().Msg("Database migration completed successfully")

	// "torquehub-api seed" populates the demo tenant and exits
	if len(os.Args) > 1 && os.Args[1] == "seed" {
		if err := seed.Run(db, cfg.GracePeriodDays); err != nil {
			log.Fatal().Err(err).Msg("Seeding failed")
		}
		return
	}

	// Initialize the billing engine
	services.InitBillingService(db, cfg.GracePeriodDays)

	// Initialize photo storage (S3). The API still runs without it; photo
	// endpoints will fail until credentials are configured.
	if s3Service, err := services.InitS3Service(); err != nil {
		log.Warn().Err(err).Msg("S3 unavailable, job photo uploads disabled")
	} else {
		services.InitPhotoService(s3Service)
	}

	// Initialize Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.TenantHeader},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Health check endpoint
		v1.GET("/health", healthCheck)

		// Database status endpoint
		v1.GET("/database/status", databaseStatus)
	}

	// All business routes require a valid JWT and a resolved tenant
	authed := v1.Group("", middleware.EnsureValidToken(cfg), middleware.ResolveTenant())
	{
		// Staff profiles
		authed.POST("/users", controllers.CreateUser)
		authed.GET("/users/me", controllers.GetMyProfile)
		authed.PUT("/users/me", controllers.UpdateMyProfile)

		// Customers
		authed.POST("/customers", controllers.CreateCustomer)
		authed.GET("/customers", controllers.ListCustomers)
		authed.GET("/customers/:id", controllers.GetCustomer)

		// Catalog
		authed.POST("/services", controllers.CreateService)
		authed.GET("/services", controllers.ListServices)
		authed.PUT("/services/:id", controllers.UpdateService)
		authed.POST("/parts", controllers.CreatePart)
		authed.GET("/parts", controllers.ListParts)
		authed.PUT("/parts/:id", controllers.UpdatePart)

		// Jobs and billing
		authed.POST("/jobs", controllers.CreateJob)
		authed.GET("/jobs", controllers.ListJobs)
		authed.GET("/jobs/overdue", controllers.ListOverdueJobs)
		authed.GET("/jobs/:id", controllers.GetJob)
		authed.POST("/jobs/:id/items", controllers.AddJobItem)
		authed.POST("/jobs/:id/complete", controllers.CompleteJob)
		authed.POST("/jobs/:id/pay", controllers.PayJob)
		authed.POST("/jobs/:id/photo", controllers.UploadJobPhoto)
	}

	// Start server
	addr := ":" + cfg.Port
	log.Info().Str("addr", addr).Msg("Server is running")
	if err := router.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("Failed to start server")
	}
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "TorqueHub Garage API is running",
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
