package postgres

import (
	"time"
)

/*
 * 'UserPresence' is the durable heartbeat record, at most one row per user.
 * IsOnline is only as fresh as the last heartbeat: readers must also apply
 * the staleness lease (see services/presence) because an unclean shutdown
 * never flips the flag back.
 */
type UserPresence struct {
	Username  string    `gorm:"primaryKey;size:50;not null"`
	IsOnline  bool      `gorm:"index:idx_user_presence_online"`
	LastSeen  time.Time
	UpdatedAt time.Time
}
