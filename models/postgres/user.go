package postgres

import (
	"time"
)

/*
 * 'User' contains the blueprint definition of a Cornlive account. It contains
 * a reference to the user's PlayerStats aggregate
 */
type User struct {
	Email        string    `gorm:"primaryKey;size:100;not null"`
	Username     string    `gorm:"size:50;not null;uniqueIndex"`
	PasswordHash string    `gorm:"size:255;not null"`
	FullName     string    `gorm:"size:100"`
	AvatarURL    string    `gorm:"size:255"`
	MemberSince  time.Time `gorm:"default:CURRENT_TIMESTAMP"`

	// Relationship with the stats aggregate
	PlayerStats PlayerStats `gorm:"foreignKey:Username;references:Username;constraint:OnDelete:CASCADE"`
}
