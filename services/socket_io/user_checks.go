package socket_io

import (
	"Cornlive/middleware"
	models "Cornlive/models/postgres"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"
	"gorm.io/gorm"
)

// VerifyUserConnection authenticates a fresh socket.io connection. The
// handshake auth payload must carry the JWT minted at login; the token's
// username must still exist in the database.
func VerifyUserConnection(client *socket.Socket, db *gorm.DB) (bool, string, string) {
	authData, ok := client.Handshake().Auth.(map[string]interface{})
	if !ok {
		log.Println("[SOCKET] Handshake auth data is missing or invalid")
		client.Emit("error", gin.H{"error": "Authentication failed: missing auth data"})
		client.Disconnect(true)
		return false, "", ""
	}

	tokenString, exists := authData["token"].(string)
	if !exists {
		log.Println("[SOCKET] No token provided in handshake")
		client.Emit("error", gin.H{"error": "Authentication failed: missing token"})
		client.Disconnect(true)
		return false, "", ""
	}

	username, email, err := middleware.DecodeToken(tokenString)
	if err != nil {
		log.Printf("[SOCKET] Invalid handshake token: %v", err)
		client.Emit("error", gin.H{"error": "Authentication failed: invalid token"})
		client.Disconnect(true)
		return false, "", ""
	}

	var user models.User
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		log.Printf("[SOCKET] Token names unknown user %s", username)
		client.Emit("error", gin.H{"error": "Authentication failed: unknown user"})
		client.Disconnect(true)
		return false, "", ""
	}

	return true, username, email
}
