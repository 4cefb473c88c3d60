package controllers

import (
	models "Cornlive/models/postgres"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// @Summary Player statistics
// @Description Lifetime points, wins and losses for one player
// @Tags stats
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} object{username=string,total_points=integer,wins=integer,losses=integer}
// @Failure 404 {object} object{error=string}
// @Router /auth/stats/{username} [get]
func GetStats(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		username := c.Param("username")

		var stats models.PlayerStats
		if err := db.Where("username = ?", username).First(&stats).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "No stats for player"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching stats"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"username":     stats.Username,
			"total_points": stats.TotalPoints,
			"wins":         stats.Wins,
			"losses":       stats.Losses,
			"last_game_id": stats.LastGameID,
		})
	}
}
