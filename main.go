package main

import (
	"Cornlive/config"
	_ "Cornlive/config/swagger"
	"Cornlive/middleware"
	"Cornlive/routes"
	"Cornlive/services/chat"
	"Cornlive/services/game"
	"Cornlive/services/presence"
	"Cornlive/services/redis"
	"Cornlive/services/socket_io"
	socketio_types "Cornlive/services/socket_io/types"
	syncpkg "Cornlive/sync"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// @title Cornlive API
// @version 1.0
// @description Gin-Gonic server for the Cornlive cornhole scorekeeping API
// @BasePath /
func main() {
	godotenv.Load()
	log.Println("Setting up server...")

	if os.Getenv("PROD") == "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	gormDB, err := config.ConnectGORM()
	if err != nil {
		log.Fatalf("Error connecting to PostgreSQL: %v", err)
	}
	log.Println("GORM Connected")

	// Only migrate in development or during deployment
	if os.Getenv("MIGRATE_POSTGRES") == "true" {
		log.Println("Migrating PostgreSQL database...")
		if err := config.MigrateDatabase(gormDB); err != nil {
			log.Printf("Warning: Database migration failed: %v", err)
			// Continue execution even if migration fails
		} else {
			log.Println("Database migrated successfully")
		}
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatalf("Error reading GORM PostgreSQL instance: %v", err)
	}
	defer sqlDB.Close()

	redisClient, err := config.ConnectRedis()
	if err != nil {
		log.Fatalf("Error connecting to Redis: %v", err)
	}
	log.Println("Connection to Redis successful")
	defer redis.CloseRedis(redisClient)

	// Warm the session cache from the rows that survived a restart
	syncManager := syncpkg.NewSyncManager(redisClient, gormDB)
	if err := syncManager.ReconcileActiveSessions(); err != nil {
		log.Printf("Warning: session cache reconciliation failed: %v", err)
	}

	r := gin.Default()

	middleware.SetUpMiddleware(r)

	// The socket server is also the change-feed broadcaster for the services
	sio := socketio_types.NewSocketServer()
	gameManager := game.NewManager(gormDB, redisClient, sio)
	chatService := chat.NewService(gormDB, redisClient, sio)
	tracker := presence.NewTracker(gormDB, redisClient, sio)

	routes.SetupRoutes(r, gormDB, gameManager, chatService, tracker)

	(*socket_io.MySocketServer)(sio).Start(r, gormDB, gameManager, chatService, tracker)

	// Configure port
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	if os.Getenv("USE_HTTPS") == "true" {
		certFile := os.Getenv("TLS_CERT_FILE")
		keyFile := os.Getenv("TLS_KEY_FILE")

		if err := r.RunTLS(":"+port, certFile, keyFile); err != nil {
			log.Fatalf("Error starting server: %v", err)
		}
	} else {
		if err := r.Run(":" + port); err != nil {
			log.Fatalf("Error starting server: %v", err)
		}
	}
}
