package controllers

import (
	"Cornlive/services/game"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// gameErrorStatus maps the session manager's failure taxonomy onto HTTP.
func gameErrorStatus(err error) int {
	switch {
	case errors.Is(err, game.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, game.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, game.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, game.ErrSessionFinished):
		return http.StatusConflict
	default:
		return http.StatusServiceUnavailable
	}
}

type createGameRequest struct {
	Team1Player1 string `json:"team1_player1" binding:"required"`
	Team1Player2 string `json:"team1_player2" binding:"required"`
	Team2Player1 string `json:"team2_player1" binding:"required"`
	Team2Player2 string `json:"team2_player2" binding:"required"`
}

// @Summary Create a game session
// @Description Starts a match with two teams of two; the caller becomes host
// @Tags games
// @Accept json
// @Produce json
// @Param roster body controllers.createGameRequest true "Four distinct usernames"
// @Success 200 {object} object{game_id=string}
// @Failure 400 {object} object{error=string}
// @Failure 503 {object} object{error=string}
// @Router /auth/games [post]
func CreateGame(manager *game.Manager, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c, db)
		if !ok {
			return
		}

		var req createGameRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed roster"})
			return
		}

		roster, err := rosterFromUsernames(db, req)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		session, err := manager.CreateSession(user.Username, roster)
		if err != nil {
			c.JSON(gameErrorStatus(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"game_id": session.ID})
	}
}

// rosterFromUsernames resolves the four usernames and snapshots their
// display names for the session's lifetime.
func rosterFromUsernames(db *gorm.DB, req createGameRequest) (game.Roster, error) {
	usernames := []string{req.Team1Player1, req.Team1Player2, req.Team2Player1, req.Team2Player2}

	slots := make(map[string]game.RosterSlot, 4)
	for _, username := range usernames {
		user, err := lookupUser(db, username)
		if err != nil {
			return game.Roster{}, err
		}
		slots[username] = game.RosterSlot{Username: user.Username, DisplayName: displayName(user)}
	}

	return game.Roster{
		Team1Player1: slots[req.Team1Player1],
		Team1Player2: slots[req.Team1Player2],
		Team2Player1: slots[req.Team2Player1],
		Team2Player2: slots[req.Team2Player2],
	}, nil
}

// @Summary Rejoin discovery
// @Description Returns the caller's most recent active session, if any
// @Tags games
// @Produce json
// @Success 200 {object} object{game=object}
// @Failure 404 {object} object{error=string}
// @Router /auth/games/active [get]
func GetActiveGame(manager *game.Manager, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c, db)
		if !ok {
			return
		}
		session, err := manager.FindActiveSession(user.Username)
		if err != nil {
			c.JSON(gameErrorStatus(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"game": session})
	}
}

// @Summary Fetch one session
// @Description Returns a session by id (active or completed)
// @Tags games
// @Produce json
// @Param game_id path string true "Session id"
// @Success 200 {object} object{game=object}
// @Failure 404 {object} object{error=string}
// @Router /auth/games/{game_id} [get]
func GetGame(manager *game.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := manager.GetSession(c.Param("game_id"))
		if err != nil {
			c.JSON(gameErrorStatus(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"game": session})
	}
}

type updateScoreRequest struct {
	Team  int    `json:"team" binding:"required"`
	Kind  string `json:"kind"`
	Value int    `json:"value"`
}

// @Summary Update a team's score
// @Description Applies a score intent; only members of the target team may score for it
// @Tags games
// @Accept json
// @Produce json
// @Param game_id path string true "Session id"
// @Param intent body controllers.updateScoreRequest true "Score intent: kind=set_absolute|add_delta"
// @Success 200 {object} object{game=object}
// @Failure 400 {object} object{error=string}
// @Failure 403 {object} object{error=string}
// @Failure 409 {object} object{error=string}
// @Router /auth/games/{game_id}/score [post]
func UpdateScore(manager *game.Manager, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c, db)
		if !ok {
			return
		}

		var req updateScoreRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed score update"})
			return
		}

		var intent game.ScoreIntent
		switch game.IntentKind(req.Kind) {
		case game.IntentAddDelta:
			intent = game.AddDelta(req.Value)
		case game.IntentSetAbsolute, "":
			// historical clients send a bare absolute value
			intent = game.SetAbsolute(req.Value)
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown score intent"})
			return
		}

		session, err := manager.UpdateScore(c.Param("game_id"), user.Username, req.Team, intent)
		if err != nil {
			c.JSON(gameErrorStatus(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"game": session})
	}
}

// @Summary End a session
// @Description Marks the session completed and settles player statistics
// @Tags games
// @Produce json
// @Param game_id path string true "Session id"
// @Success 200 {object} object{game=object}
// @Failure 403 {object} object{error=string}
// @Failure 409 {object} object{error=string}
// @Router /auth/games/{game_id}/end [post]
func EndGame(manager *game.Manager, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c, db)
		if !ok {
			return
		}
		session, err := manager.EndSession(c.Param("game_id"), user.Username)
		if err != nil {
			c.JSON(gameErrorStatus(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"game": session})
	}
}

// @Summary Completed sessions for the caller
// @Description Lists the caller's finished matches, newest first
// @Tags games
// @Produce json
// @Success 200 {object} object{games=array}
// @Failure 503 {object} object{error=string}
// @Router /auth/games/history [get]
func GameHistory(manager *game.Manager, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c, db)
		if !ok {
			return
		}
		sessions, err := manager.FindCompletedSessions(user.Username, 20)
		if err != nil {
			c.JSON(gameErrorStatus(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"games": sessions})
	}
}
