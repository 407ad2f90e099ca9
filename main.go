package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"horizon-api/config"
	"horizon-api/handlers"
	"horizon-api/middleware"
	"horizon-api/routes"
	"horizon-api/store"
	"horizon-api/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	st, err := buildStore()
	if err != nil {
		log.Fatal("Failed to initialize store:", err)
	}

	wsHandler := handlers.NewWSHandler()

	router := gin.Default()

	frontendURL := os.Getenv("FRONTEND_URL")
	if frontendURL == "" {
		frontendURL = "http://localhost:3000"
	}

	corsConfig := cors.Config{
		AllowOrigins:     []string{frontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           86400,
	}
	router.Use(cors.New(corsConfig))

	router.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		utils.SafeLog("%s %s - %d (%v)", c.Request.Method, c.Request.URL.Path,
			c.Writer.Status(), time.Since(start))
	})

	router.Use(middleware.RateLimiter(100, time.Minute))

	v1 := router.Group("/api/v1")
	{
		routes.SetupAuthRoutes(v1, st)
		v1.GET("/ws/users/:id", wsHandler.HandleWS)

		protected := v1.Group("/")
		protected.Use(middleware.AuthMiddleware())
		{
			routes.SetupBankingRoutes(protected, st)
			routes.SetupTransferRoutes(protected, st, wsHandler)
			routes.SetupUserRoutes(protected, st)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("🚀 Server starting on port %s...", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

// buildStore selects the store backend: Postgres when DATABASE_URL is
// set, otherwise the seeded in-memory ledger.
func buildStore() (store.Store, error) {
	if os.Getenv("DATABASE_URL") == "" {
		log.Println("✅ Using in-memory store with demo dataset")
		return store.NewSeededStore(), nil
	}

	db, err := config.InitDB()
	if err != nil {
		return nil, err
	}
	if err := config.RunMigrations(db); err != nil {
		return nil, err
	}
	log.Println("✅ Database connected successfully")
	return store.NewPostgresStore(db), nil
}
