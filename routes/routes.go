package routes

import (
	"Cornlive/controllers"
	"Cornlive/middleware"
	"Cornlive/services/chat"
	"Cornlive/services/game"
	"Cornlive/services/presence"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, db *gorm.DB, manager *game.Manager,
	chatService *chat.Service, tracker *presence.Tracker) {

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API routes group
	api := router.Group("/")

	api.GET("/ping", controllers.Ping)

	api.POST("/login", controllers.Login(db))

	api.POST("/signup", controllers.SignUp(db))

	authentication := api.Group("/auth")
	authentication.Use(middleware.AuthRequired)
	{
		authentication.DELETE("/logout", controllers.Logout)

		authentication.GET("/me", controllers.Me(db))

		// Presence: heartbeat lease + online roster
		authentication.GET("/online", controllers.ListOnline(tracker))

		authentication.POST("/presence/heartbeat", controllers.Heartbeat(tracker, db))

		authentication.DELETE("/presence", controllers.GoOffline(tracker, db))

		// Game sessions
		authentication.POST("/games", controllers.CreateGame(manager, db))

		authentication.GET("/games/active", controllers.GetActiveGame(manager, db))

		authentication.GET("/games/history", controllers.GameHistory(manager, db))

		authentication.GET("/games/:game_id", controllers.GetGame(manager))

		authentication.POST("/games/:game_id/score", controllers.UpdateScore(manager, db))

		authentication.POST("/games/:game_id/end", controllers.EndGame(manager, db))

		// Session chat
		authentication.GET("/games/:game_id/messages", controllers.GetMessages(chatService))

		authentication.POST("/games/:game_id/messages", controllers.PostMessage(chatService, db))

		// Player statistics
		authentication.GET("/stats/:username", controllers.GetStats(db))
	}
}
