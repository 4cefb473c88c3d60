package handlers

import (
	"Cornlive/services/presence"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"
)

// HandleHeartbeat refreshes the caller's presence lease. Clients emit this
// every 30 seconds while mounted.
func HandleHeartbeat(tracker *presence.Tracker, client *socket.Socket,
	username string) func(args ...interface{}) {
	return func(args ...interface{}) {
		if err := tracker.Heartbeat(username, string(client.Id())); err != nil {
			log.Printf("[SOCKET] Heartbeat for %s failed: %v", username, err)
			client.Emit("error", gin.H{"error": "Could not update presence"})
		}
	}
}

// HandleListOnline replies with the current online roster for the team
// setup screen.
func HandleListOnline(tracker *presence.Tracker, client *socket.Socket,
	username string) func(args ...interface{}) {
	return func(args ...interface{}) {
		users, err := tracker.ListOnline()
		if err != nil {
			log.Printf("[SOCKET] Online list for %s failed: %v", username, err)
			client.Emit("error", gin.H{"error": "Could not list online users"})
			return
		}
		client.Emit("online_users", gin.H{"users": users})
	}
}
