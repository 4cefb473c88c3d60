package presence

import (
	models "Cornlive/models/postgres"
	redis_models "Cornlive/models/redis"
	"Cornlive/services/game"
	"Cornlive/services/redis"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Heartbeats arrive every 30 seconds; a presence lease outlives exactly two
// missed beats. A client that dies uncleanly leaves is_online=true behind in
// Postgres, so readers filter by the lease window instead of trusting the
// stored boolean.
const (
	HeartbeatInterval = 30 * time.Second
	LeaseTTL          = 2 * HeartbeatInterval
)

// OnlineUser is one entry of the online roster shown on the team setup
// screen.
type OnlineUser struct {
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	AvatarURL string    `json:"avatar_url"`
	LastSeen  time.Time `json:"last_seen"`
}

/*
 * Tracker advertises local liveness and derives the online roster. Each
 * heartbeat upserts the durable Postgres row and refreshes the volatile
 * Redis lease; every change is pushed to all connected clients so the
 * roster recomputes reactively instead of polling.
 */
type Tracker struct {
	DB          *gorm.DB
	RedisClient *redis.RedisClient
	Broadcaster game.Broadcaster
}

func NewTracker(db *gorm.DB, redisClient *redis.RedisClient, broadcaster game.Broadcaster) *Tracker {
	return &Tracker{DB: db, RedisClient: redisClient, Broadcaster: broadcaster}
}

// Heartbeat marks the user online now. Called once on connect and then on
// every heartbeat tick.
func (t *Tracker) Heartbeat(username, socketID string) error {
	now := time.Now()
	row := models.UserPresence{
		Username:  username,
		IsOnline:  true,
		LastSeen:  now,
		UpdatedAt: now,
	}
	err := t.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		DoUpdates: clause.AssignmentColumns([]string{"is_online", "last_seen", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("%w: upserting presence: %v", game.ErrStoreUnavailable, err)
	}

	if t.RedisClient != nil {
		lease := &redis_models.PlayerPresence{
			Username: username,
			Status:   redis_models.StatusOnline,
			LastPing: now.Unix(),
			SocketID: socketID,
		}
		if err := t.RedisClient.SavePresence(lease, LeaseTTL); err != nil {
			log.Printf("[PRESENCE] Could not refresh lease for %s: %v", username, err)
		}
	}

	t.notifyChange(username, true)
	return nil
}

// GoOffline is the clean teardown: flips the durable flag and drops the
// lease. An unclean teardown skips this and relies on lease expiry instead.
func (t *Tracker) GoOffline(username string) error {
	now := time.Now()
	err := t.DB.Model(&models.UserPresence{}).
		Where("username = ?", username).
		Updates(map[string]interface{}{
			"is_online":  false,
			"last_seen":  now,
			"updated_at": now,
		}).Error
	if err != nil {
		return fmt.Errorf("%w: marking offline: %v", game.ErrStoreUnavailable, err)
	}

	if t.RedisClient != nil {
		if err := t.RedisClient.DeletePresence(username); err != nil {
			log.Printf("[PRESENCE] Could not drop lease for %s: %v", username, err)
		}
	}

	t.notifyChange(username, false)
	return nil
}

// ReleaseSocket is the socket disconnect path. The lease records which
// socket last heartbeat for the user; when a different socket owns it (the
// user reconnected, or has a second tab that beat us to a heartbeat) the
// presence record is left alone. Otherwise this is a clean GoOffline.
func (t *Tracker) ReleaseSocket(username, socketID string) error {
	if t.RedisClient != nil && socketID != "" {
		lease, err := t.RedisClient.GetPresence(username)
		if err != nil {
			log.Printf("[PRESENCE] Could not read lease for %s: %v", username, err)
		} else if lease != nil && lease.SocketID != "" && lease.SocketID != socketID {
			log.Printf("[PRESENCE] %s still online via socket %s, keeping presence", username, lease.SocketID)
			return nil
		}
	}
	return t.GoOffline(username)
}

// ListOnline returns every user whose durable flag is online AND whose last
// heartbeat is inside the lease window. The window is what self-corrects
// stale rows left by crashed clients.
func (t *Tracker) ListOnline() ([]OnlineUser, error) {
	cutoff := time.Now().Add(-LeaseTTL)
	var users []OnlineUser
	err := t.DB.
		Table("user_presence").
		Select("users.username, users.full_name, users.email, users.avatar_url, user_presence.last_seen").
		Joins("JOIN users ON users.username = user_presence.username").
		Where("user_presence.is_online = ? AND user_presence.last_seen > ?", true, cutoff).
		Order("users.username ASC").
		Scan(&users).Error
	if err != nil {
		return nil, fmt.Errorf("%w: listing online users: %v", game.ErrStoreUnavailable, err)
	}
	return users, nil
}

// notifyChange tells every connected client to recompute its online roster.
func (t *Tracker) notifyChange(username string, online bool) {
	if t.Broadcaster == nil {
		return
	}
	t.Broadcaster.ToAll("presence_changed", map[string]interface{}{
		"username":  username,
		"is_online": online,
	})
}
