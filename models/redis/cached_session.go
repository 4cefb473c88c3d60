package redis

import "time"

// CachedSession is the volatile snapshot of a game session kept in Redis
// under session:{id}. It mirrors the Postgres row so roster questions (chat
// membership checks) are answered without a database round-trip; Postgres
// stays the system of record and wins on any disagreement.
type CachedSession struct {
	ID           string `json:"id"`
	HostUsername string `json:"host_username"`

	Team1Player1 string `json:"team1_player1"`
	Team1Player2 string `json:"team1_player2"`
	Team2Player1 string `json:"team2_player1"`
	Team2Player2 string `json:"team2_player2"`

	Team1Score int    `json:"team1_score"`
	Team2Score int    `json:"team2_score"`
	Status     string `json:"status"`

	UpdatedAt time.Time `json:"updated_at"`
}

// Members returns the four roster usernames.
func (cs *CachedSession) Members() [4]string {
	return [4]string{cs.Team1Player1, cs.Team1Player2, cs.Team2Player1, cs.Team2Player2}
}
