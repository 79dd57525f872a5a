package server

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/matnazarov/blog-api/internal/config"
	"github.com/matnazarov/blog-api/internal/database"
	"github.com/matnazarov/blog-api/internal/handlers"
	"github.com/matnazarov/blog-api/internal/middleware"
	"github.com/matnazarov/blog-api/internal/notify"
)

type Server struct {
	db      database.Service
	handler *handlers.Handler
	hub     *notify.Hub
}

// NewServer creates and configures a new server
func NewServer() *http.Server {
	// Initialize database
	db := database.New()
	gormDB := db.GetDB()

	// The websocket hub is always on; Twilio SMS joins it when configured
	hub := notify.NewHub()
	var notifier notify.Notifier = hub
	if sms := notify.NewSMSNotifier(gormDB); sms != nil {
		notifier = notify.Multi{hub, sms}
		log.Println("📱 Twilio SMS notifications enabled")
	}

	// Create unified handler
	handler := handlers.NewHandler(gormDB, notifier)

	// Create server instance
	newServer := &Server{
		db:      db,
		handler: handler,
		hub:     hub,
	}

	// Make sure uploaded images have somewhere to go
	if err := os.MkdirAll(config.UploadDir(), 0o755); err != nil {
		log.Fatalf("Failed to create upload directory: %v", err)
	}

	// Configure Gin router
	router := newServer.RegisterRoutes()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080" // local dev fallback
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         "0.0.0.0:" + port,
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Printf("🚀 Server starting on port %s\n", port)
	fmt.Println("📝 Press Ctrl+C to stop the server")

	return server
}

// RegisterRoutes sets up all application routes
func (s *Server) RegisterRoutes() *gin.Engine {
	r := gin.Default()
	gormDB := s.db.GetDB()

	// CORS configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * 3600,
	}))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.db.Health())
	})

	// Uploaded post images
	r.Static("/uploads", config.UploadDir())

	// Real-time notifications; the token query param is optional, anonymous
	// clients get broadcasts only
	r.GET("/ws", func(c *gin.Context) {
		userID := 0
		if token := c.Query("token"); token != "" {
			if id, err := middleware.ParseToken(token); err == nil {
				userID = id
			}
		}
		if err := s.hub.Serve(c.Writer, c.Request, userID); err != nil {
			log.Printf("websocket upgrade failed: %v", err)
		}
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		api.POST("/register", s.handler.Auth.Register)
		api.POST("/login", s.handler.Auth.Login)

		// Public reads; optional auth personalizes the response
		public := api.Group("")
		public.Use(middleware.OptionalAuthMiddleware(gormDB))
		{
			public.GET("/posts", s.handler.Post.GetPosts)
			public.GET("/posts/:id", s.handler.Post.GetPost)
			public.GET("/posts/:id/comments", s.handler.Comment.GetComments)
			public.GET("/posts/:id/likes", s.handler.Like.GetPostLikes)
			public.GET("/comments/:commentId/likes", s.handler.Like.GetCommentLikes)
			public.GET("/users/:id/posts", s.handler.Post.GetUserPosts)
			public.GET("/users/:id/stats", s.handler.User.GetUserStats)
		}

		// Protected routes (authentication required)
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(gormDB))
		{
			// Auth protected routes
			protected.GET("/me", s.handler.Auth.GetMe)

			// Post protected routes
			protected.POST("/posts", s.handler.Post.CreatePost)
			protected.PUT("/posts/:id", s.handler.Post.UpdatePost)
			protected.DELETE("/posts/:id", s.handler.Post.DeletePost)
			protected.POST("/posts/:id/like", s.handler.Like.TogglePostLike)

			// Comment protected routes
			protected.POST("/posts/:id/comments", s.handler.Comment.CreateComment)
			protected.PUT("/comments/:commentId", s.handler.Comment.UpdateComment)
			protected.DELETE("/comments/:commentId", s.handler.Comment.DeleteComment)
			protected.POST("/comments/:commentId/like", s.handler.Like.ToggleCommentLike)

			// User protected routes
			protected.GET("/users", s.handler.User.GetUsers)
			protected.GET("/users/:id", s.handler.User.GetUser)
		}
	}

	return r
}
