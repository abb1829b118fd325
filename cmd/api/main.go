package main

import (
	"log"
	"os"
	"time"

	"github.com/Parth-05/RideShare/internal/database"
	"github.com/Parth-05/RideShare/internal/engine"
	"github.com/Parth-05/RideShare/internal/handlers"
	"github.com/Parth-05/RideShare/internal/middleware"
	"github.com/Parth-05/RideShare/internal/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Fatal("Error loading .env file")
	}

	db, err := database.InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database instance: %v", err)
	}

	// Configure connection pool
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// Redis mirrors ride events across instances; optional for local runs
	if err := services.InitRedis(); err != nil {
		log.Printf("Redis initialization warning: %v", err)
	}

	// Initialize Storage (S3 or local fallback)
	if err := services.InitStorage(); err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	// Initialize WebSocket hub
	hub := services.NewHub()
	go hub.Run()

	rideStore := database.NewRideStore(db)
	rideEngine := engine.New(rideStore)
	dispatcher := services.NewDispatcher(hub)

	r := gin.Default()

	// Configure CORS
	config := cors.DefaultConfig()
	config.AllowOrigins = []string{"*"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	r.Use(cors.New(config))

	// Serve locally stored uploads
	r.Static("/uploads", "/app/uploads")

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		// Public routes
		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.Register(db))
			auth.POST("/login", handlers.Login(db))
		}

		// WebSocket connection
		api.GET("/ws", middleware.AuthMiddleware(), handlers.WebSocketHandler(hub))

		// Protected routes
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware())
		{
			users := protected.Group("/users")
			{
				users.GET("/profile", handlers.GetProfile(db))
				users.PUT("/profile", handlers.UpdateProfile(db))
				users.POST("/profile/photo", handlers.UploadProfilePhoto(db))
			}

			rides := protected.Group("/rides")
			{
				rides.POST("/request", handlers.RequestRide(rideStore, dispatcher))
				rides.GET("/history", handlers.GetRideHistory(rideStore))
				rides.GET("/:rideId", handlers.GetRide(rideStore))
				rides.PATCH("/:rideId/status", handlers.UpdateRideStatus(rideEngine, dispatcher))
			}
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
