package game

import (
	models "Cornlive/models/postgres"
	"log"

	"gorm.io/datatypes"
)

// settlementStep is one idempotent stat update for a single player: points
// earned this session plus a 0/1 win and a 0/1 loss increment.
type settlementStep struct {
	Username string
	Points   int
	Wins     int
	Losses   int
}

const settlementRetries = 3

// settlementSteps derives the four per-player updates from the final score.
// A team wins only by strictly outscoring the opponent; an exact tie
// increments neither wins nor losses for anyone.
func settlementSteps(session *models.GameSession) []settlementStep {
	team1Won := 0
	team2Won := 0
	if session.Team1Score > session.Team2Score {
		team1Won = 1
	} else if session.Team2Score > session.Team1Score {
		team2Won = 1
	}

	return []settlementStep{
		{session.Team1Player1, session.Team1Score, team1Won, team2Won},
		{session.Team1Player2, session.Team1Score, team1Won, team2Won},
		{session.Team2Player1, session.Team2Score, team2Won, team1Won},
		{session.Team2Player2, session.Team2Score, team2Won, team1Won},
	}
}

// settle runs the settlement saga: four ordered, independently retried stat
// updates. The external aggregate store offers no multi-row transaction, so
// a step that keeps failing is logged and skipped; the completed status of
// the session stands regardless. settle runs only in the caller that won the
// active->completed flip, so no step is ever applied twice for one session.
func (m *Manager) settle(session *models.GameSession) {
	for _, step := range settlementSteps(session) {
		var err error
		for attempt := 1; attempt <= settlementRetries; attempt++ {
			err = m.applySettlementStep(session.ID, step)
			if err == nil {
				break
			}
			log.Printf("[SETTLE] Attempt %d/%d for %s failed: %v",
				attempt, settlementRetries, step.Username, err)
		}
		if err != nil {
			log.Printf("[SETTLE] Giving up on stats for %s in session %s",
				step.Username, session.ID)
		}
	}
	log.Printf("[SETTLE] Settlement finished for session %s", session.ID)
}

// applySettlementStep increments one player's aggregate in the store. The
// increments are computed store-side; when the player has no stats row yet,
// one is created first so the update always lands.
func (m *Manager) applySettlementStep(sessionID string, step settlementStep) error {
	result := m.DB.Exec(
		`UPDATE player_stats
		 SET total_points = total_points + ?, wins = wins + ?, losses = losses + ?, last_game_id = ?
		 WHERE username = ?`,
		step.Points, step.Wins, step.Losses, sessionID, step.Username)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	stats := models.PlayerStats{
		Username:    step.Username,
		TotalPoints: step.Points,
		Wins:        step.Wins,
		Losses:      step.Losses,
		LastGameID:  sessionID,
		Extra:       datatypes.JSON("{}"),
	}
	return m.DB.Create(&stats).Error
}
