package handlers

import (
	"Cornlive/services/chat"
	"Cornlive/services/game"
	socketio_types "Cornlive/services/socket_io/types"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"
)

// HandleJoinGame subscribes a roster member to their session's room and
// replies with the current session state plus the full chat history. The
// client joins the room BEFORE history is loaded, so a message posted in
// between is both pushed and present in the history reply; clients dedupe
// by message id instead of losing it.
func HandleJoinGame(manager *game.Manager, chatService *chat.Service,
	client *socket.Socket, username string) func(args ...interface{}) {
	return func(args ...interface{}) {
		if len(args) < 1 {
			client.Emit("error", gin.H{"error": "Missing game id"})
			return
		}
		gameID, ok := args[0].(string)
		if !ok {
			client.Emit("error", gin.H{"error": "Invalid game id"})
			return
		}

		session, err := manager.GetSession(gameID)
		if err != nil {
			client.Emit("error", gin.H{"error": "Game not found"})
			return
		}
		if !session.HasPlayer(username) {
			log.Printf("[SOCKET] %s tried to join game %s without a roster slot", username, gameID)
			client.Emit("error", gin.H{"error": "You are not part of this game"})
			return
		}

		client.Join(socketio_types.SessionRoom(gameID))

		history, err := chatService.History(gameID)
		if err != nil {
			log.Printf("[SOCKET] Could not load chat history for %s: %v", gameID, err)
			history = nil
		}

		log.Printf("[SOCKET] %s joined game %s", username, gameID)
		client.Emit("joined_game", gin.H{
			"game":     session,
			"messages": history,
		})
	}
}

// HandleLeaveGame unsubscribes the client from a session room without
// touching the session itself.
func HandleLeaveGame(client *socket.Socket, username string) func(args ...interface{}) {
	return func(args ...interface{}) {
		if len(args) < 1 {
			return
		}
		gameID, ok := args[0].(string)
		if !ok {
			return
		}
		client.Leave(socketio_types.SessionRoom(gameID))
		log.Printf("[SOCKET] %s left game %s", username, gameID)
	}
}
