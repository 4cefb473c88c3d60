package controllers

import (
	"Cornlive/services/chat"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type postMessageRequest struct {
	Message string `json:"message" binding:"required"`
}

// @Summary Post a chat message
// @Description Appends one message to the session's chat log; roster members only
// @Tags chat
// @Accept json
// @Produce json
// @Param game_id path string true "Session id"
// @Param message body controllers.postMessageRequest true "Message text (max 500 chars)"
// @Success 200 {object} object{message=object}
// @Failure 400 {object} object{error=string}
// @Failure 403 {object} object{error=string}
// @Router /auth/games/{game_id}/messages [post]
func PostMessage(chatService *chat.Service, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c, db)
		if !ok {
			return
		}

		var req postMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed message"})
			return
		}

		message, err := chatService.Post(c.Param("game_id"), user.Username, displayName(user), req.Message)
		if err != nil {
			c.JSON(gameErrorStatus(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": message})
	}
}

// @Summary Chat history
// @Description Full message log for one session, oldest first
// @Tags chat
// @Produce json
// @Param game_id path string true "Session id"
// @Success 200 {object} object{messages=array}
// @Failure 503 {object} object{error=string}
// @Router /auth/games/{game_id}/messages [get]
func GetMessages(chatService *chat.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		messages, err := chatService.History(c.Param("game_id"))
		if err != nil {
			c.JSON(gameErrorStatus(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"messages": messages})
	}
}
