package handlers

import (
	"Cornlive/services/game"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"
)

// HandleUpdateScore applies a score intent coming over the socket. Payload:
// {game_id, team, kind, value}. The room broadcast happens inside the
// manager; the ack here only reaches the caller.
func HandleUpdateScore(manager *game.Manager, client *socket.Socket,
	username string) func(args ...interface{}) {
	return func(args ...interface{}) {
		payload, ok := argMap(args)
		if !ok {
			client.Emit("error", gin.H{"error": "Invalid score payload"})
			return
		}

		gameID := getString(payload, "game_id")
		team, teamOK := getInt(payload, "team")
		value, valueOK := getInt(payload, "value")
		if gameID == "" || !teamOK || !valueOK {
			client.Emit("error", gin.H{"error": "Invalid score payload"})
			return
		}

		var intent game.ScoreIntent
		switch game.IntentKind(getString(payload, "kind")) {
		case game.IntentAddDelta:
			intent = game.AddDelta(value)
		default:
			intent = game.SetAbsolute(value)
		}

		session, err := manager.UpdateScore(gameID, username, team, intent)
		if err != nil {
			log.Printf("[SOCKET] Score update by %s on %s failed: %v", username, gameID, err)
			client.Emit("error", gin.H{"error": err.Error()})
			return
		}
		client.Emit("score_ack", gin.H{
			"game_id":     session.ID,
			"team1_score": session.Team1Score,
			"team2_score": session.Team2Score,
		})
	}
}

// HandleEndGame lets any roster member end the session once they observe the
// winning score. Settlement and the game_ended broadcast happen inside the
// manager.
func HandleEndGame(manager *game.Manager, client *socket.Socket,
	username string) func(args ...interface{}) {
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

		if _, err := manager.EndSession(gameID, username); err != nil {
			log.Printf("[SOCKET] End game by %s on %s failed: %v", username, gameID, err)
			client.Emit("error", gin.H{"error": err.Error()})
			return
		}
	}
}
