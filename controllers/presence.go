package controllers

import (
	"Cornlive/services/presence"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// @Summary Presence heartbeat
// @Description Marks the caller online and refreshes their lease
// @Tags presence
// @Produce json
// @Success 200 {object} object{message=string}
// @Failure 503 {object} object{error=string}
// @Router /auth/presence/heartbeat [post]
func Heartbeat(tracker *presence.Tracker, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c, db)
		if !ok {
			return
		}
		if err := tracker.Heartbeat(user.Username, ""); err != nil {
			c.JSON(gameErrorStatus(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "online"})
	}
}

// @Summary Go offline
// @Description Clean teardown: flips the presence flag and drops the lease
// @Tags presence
// @Produce json
// @Success 200 {object} object{message=string}
// @Failure 503 {object} object{error=string}
// @Router /auth/presence [delete]
func GoOffline(tracker *presence.Tracker, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c, db)
		if !ok {
			return
		}
		if err := tracker.GoOffline(user.Username); err != nil {
			c.JSON(gameErrorStatus(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "offline"})
	}
}

// @Summary Online roster
// @Description Users currently online (inside the heartbeat lease window)
// @Tags presence
// @Produce json
// @Success 200 {object} object{users=array}
// @Failure 503 {object} object{error=string}
// @Router /auth/online [get]
func ListOnline(tracker *presence.Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := tracker.ListOnline()
		if err != nil {
			c.JSON(gameErrorStatus(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"users": users})
	}
}
