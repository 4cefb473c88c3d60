package postgres

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Session status values. A completed session is a terminal, historical record.
const (
	SessionActive    = "active"
	SessionCompleted = "completed"
)

/*
 * 'GameSession' defines one cornhole match between two teams of two.
 * The four player slots carry both the username and a display-name snapshot
 * taken at creation time; the snapshot is never re-derived afterwards.
 */
type GameSession struct {
	ID           string `gorm:"primaryKey;size:50;not null"`
	HostUsername string `gorm:"size:50;not null;index:idx_game_sessions_host"`

	Team1Player1 string `gorm:"size:50;not null;index:idx_game_sessions_t1p1"`
	Team1Player2 string `gorm:"size:50;not null;index:idx_game_sessions_t1p2"`
	Team2Player1 string `gorm:"size:50;not null;index:idx_game_sessions_t2p1"`
	Team2Player2 string `gorm:"size:50;not null;index:idx_game_sessions_t2p2"`

	Team1Player1Name string `gorm:"size:100"`
	Team1Player2Name string `gorm:"size:100"`
	Team2Player1Name string `gorm:"size:100"`
	Team2Player2Name string `gorm:"size:100"`

	Team1Score int    `gorm:"not null"`
	Team2Score int    `gorm:"not null"`
	Status     string `gorm:"size:20;not null;index:idx_game_sessions_status"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// BeforeCreate assigns the session id. UUIDs instead of short room codes:
// sessions are permanent history, so ids must never collide.
func (s *GameSession) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// Roster returns the four slot usernames in a fixed order
// (team1 A/B, team2 A/B).
func (s *GameSession) Roster() [4]string {
	return [4]string{s.Team1Player1, s.Team1Player2, s.Team2Player1, s.Team2Player2}
}

// HasPlayer reports whether username occupies any of the four slots.
func (s *GameSession) HasPlayer(username string) bool {
	for _, member := range s.Roster() {
		if member == username {
			return true
		}
	}
	return false
}

// IsOnTeam reports whether username occupies a slot of the given team (1 or 2).
func (s *GameSession) IsOnTeam(team int, username string) bool {
	switch team {
	case 1:
		return s.Team1Player1 == username || s.Team1Player2 == username
	case 2:
		return s.Team2Player1 == username || s.Team2Player2 == username
	}
	return false
}
