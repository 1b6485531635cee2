// File: /routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"inkwell-api/config"
	"inkwell-api/controllers"
	"inkwell-api/middleware"
	"inkwell-api/services"
	"inkwell-api/state"
)

func SetupRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config, emailService *services.EmailService, sessionService *services.SessionService, posts *state.Posts, comments *state.Comments) {
	// Controllers
	authController := controllers.NewAuthController(db, cfg.JWTSecret, emailService, sessionService)
	postController := controllers.NewPostController(posts)
	commentController := controllers.NewCommentController(comments)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	// API version 1
	v1 := r.Group("/api/v1")

	// Auth routes (public)
	auth := v1.Group("/auth")
	auth.Use(middleware.RateLimit(30, 10))
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.POST("/verify-code", authController.VerifyCode)
		auth.POST("/resend-verification", authController.ResendVerificationCode)
	}

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	{
		protected.POST("/auth/logout", authController.Logout)
		protected.GET("/auth/session-stream", authController.SessionStream)

		// Post routes
		postsGroup := protected.Group("/posts")
		{
			postsGroup.GET("/", postController.GetPosts)
			postsGroup.POST("/", postController.CreatePost)
			postsGroup.GET("/liked", postController.GetLikedPosts)
			postsGroup.GET("/:id", postController.GetPost)
			postsGroup.PUT("/:id", postController.UpdatePost)
			postsGroup.DELETE("/:id", postController.DeletePost)
			postsGroup.POST("/:id/like", postController.ToggleLike)

			// Comment routes
			postsGroup.GET("/:id/comments", commentController.GetComments)
			postsGroup.POST("/:id/comments", commentController.CreateComment)
			postsGroup.PUT("/:id/comments/:commentId", commentController.UpdateComment)
			postsGroup.DELETE("/:id/comments/:commentId", commentController.DeleteComment)
		}
	}
}
