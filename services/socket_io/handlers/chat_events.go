package handlers

import (
	models "Cornlive/models/postgres"
	"Cornlive/services/chat"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"
	"gorm.io/gorm"
)

// HandleGameMessage posts a chat message from the socket. Payload:
// {game_id, message}. Validation and the room broadcast happen in the chat
// service; on failure the composer keeps its text, so the error emit is all
// the client needs to offer a retry.
func HandleGameMessage(chatService *chat.Service, db *gorm.DB,
	client *socket.Socket, username string) func(args ...interface{}) {
	return func(args ...interface{}) {
		payload, ok := argMap(args)
		if !ok {
			client.Emit("error", gin.H{"error": "Invalid message payload"})
			return
		}

		gameID := getString(payload, "game_id")
		text := getString(payload, "message")
		if gameID == "" {
			client.Emit("error", gin.H{"error": "Missing game id"})
			return
		}

		var user models.User
		if err := db.Where("username = ?", username).First(&user).Error; err != nil {
			client.Emit("error", gin.H{"error": "Unknown user"})
			return
		}
		name := user.FullName
		if name == "" {
			name = user.Username
		}

		if _, err := chatService.Post(gameID, username, name, text); err != nil {
			log.Printf("[SOCKET] Chat post by %s on %s failed: %v", username, gameID, err)
			client.Emit("error", gin.H{"error": err.Error()})
			return
		}
	}
}
