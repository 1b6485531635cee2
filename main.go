// File: /main.go
package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"inkwell-api/config"
	"inkwell-api/database"
	"inkwell-api/jobs"
	"inkwell-api/middleware"
	"inkwell-api/routes"
	"inkwell-api/services"
	"inkwell-api/state"
	"inkwell-api/store"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize the identity database
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Connect the document store
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	docStore, err := store.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Fatal("Failed to connect to document store:", err)
	}
	defer docStore.Close(context.Background())

	// State slices: the posts and comments caches every consumer goes
	// through
	posts := state.NewPosts(docStore)
	comments := state.NewComments(docStore)
	posts.AttachComments(comments)

	// Services
	emailService := services.NewEmailService(cfg)
	sessionService := services.NewSessionService()

	// Set Gin mode based on environment
	if cfg.Port == "8080" { // Development
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.Default())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RequestLogger())

	// Setup routes
	routes.SetupRoutes(router, db, cfg, emailService, sessionService, posts, comments)

	// Periodic full refresh keeps cached counters converged with the store
	refreshJob := jobs.NewCacheRefreshJob(posts, cfg.RefreshInterval)
	refreshJob.Start()
	defer refreshJob.Stop()

	// Start server
	log.Printf("Starting Inkwell API server on port %s", cfg.Port)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
