package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"homefinder/pkg/api"
	"homefinder/pkg/clients/crm"
	"homefinder/pkg/config"
	"homefinder/pkg/middleware"
	"homefinder/pkg/services"
	"homefinder/pkg/store"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file")
	}

	// Initialize configuration
	cfg := config.LoadConfig()

	// Initialize API clients
	crmClient := crm.NewClient(cfg.CRMWebhookURL, cfg.CRMAPIKey)

	// Initialize persistence
	memStore := store.NewMemoryStore()

	// Initialize services
	submissionService := services.NewSubmissionService(memStore, crmClient)
	progressService := services.NewProgressService(memStore)

	// Create a new Gin router with default middleware
	router := gin.Default()

	// Add CORS middleware for embedded widgets
	router.Use(middleware.CORS(cfg.AllowedOrigins))

	// Initialize handlers
	handlers := api.NewHandlers(submissionService, progressService, cfg.WidgetBundlePath)

	// Register routes
	router.GET("/health", handlers.HealthCheck)
	router.GET("/widget.js", handlers.WidgetJS)

	apiGroup := router.Group("/api")
	{
		apiGroup.POST("/submit-finder", handlers.SubmitFinder)
		apiGroup.POST("/save-progress", handlers.SaveProgress)
		apiGroup.GET("/get-progress/:sessionId", handlers.GetProgress)
		apiGroup.POST("/complete-progress/:id", handlers.CompleteProgress)
	}

	// Start the server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Error starting server: %v", err)
	}
}
