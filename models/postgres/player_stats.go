package postgres

import (
	"gorm.io/datatypes"
)

/*
 * 'PlayerStats' is the per-player statistics aggregate settled when a game
 * session completes. One row per username; points/wins/losses only ever grow.
 */
type PlayerStats struct {
	Username    string         `gorm:"primaryKey;size:50;not null"`
	TotalPoints int            `gorm:"not null"`
	Wins        int            `gorm:"not null"`
	Losses      int            `gorm:"not null"`
	LastGameID  string         `gorm:"size:50"`
	Extra       datatypes.JSON `gorm:"type:jsonb;default:'{}'"`
}
