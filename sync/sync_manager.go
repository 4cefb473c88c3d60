package sync

import (
	models "Cornlive/models/postgres"
	redis_models "Cornlive/models/redis"
	"Cornlive/services/redis"
	"fmt"
	"log"

	"gorm.io/gorm"
)

// SyncManager reconciles the volatile Redis session cache with the Postgres
// rows. Postgres is the system of record; the cache only ever follows it.
type SyncManager struct {
	redisClient *redis.RedisClient
	db          *gorm.DB
}

// NewSyncManager creates a new instance of the synchronization manager
func NewSyncManager(redisClient *redis.RedisClient, db *gorm.DB) *SyncManager {
	return &SyncManager{
		redisClient: redisClient,
		db:          db,
	}
}

// SyncSessionCache rewrites one session's cached snapshot from its Postgres
// row, dropping the cache entry when the session has completed.
func (sm *SyncManager) SyncSessionCache(sessionID string) error {
	var session models.GameSession
	if err := sm.db.Where("id = ?", sessionID).First(&session).Error; err != nil {
		return fmt.Errorf("error fetching session %s: %v", sessionID, err)
	}

	if session.Status == models.SessionCompleted {
		if err := sm.redisClient.DeleteCachedSession(sessionID); err != nil {
			return fmt.Errorf("error dropping cache for %s: %v", sessionID, err)
		}
		return nil
	}

	snapshot := &redis_models.CachedSession{
		ID:           session.ID,
		HostUsername: session.HostUsername,
		Team1Player1: session.Team1Player1,
		Team1Player2: session.Team1Player2,
		Team2Player1: session.Team2Player1,
		Team2Player2: session.Team2Player2,
		Team1Score:   session.Team1Score,
		Team2Score:   session.Team2Score,
		Status:       session.Status,
		UpdatedAt:    session.UpdatedAt,
	}
	if err := sm.redisClient.SaveCachedSession(snapshot); err != nil {
		return fmt.Errorf("error caching session %s: %v", sessionID, err)
	}
	return nil
}

// ReconcileActiveSessions warms the cache for every active session. Called
// once at startup so a restarted server answers roster questions without a
// thundering herd of Postgres reads.
func (sm *SyncManager) ReconcileActiveSessions() error {
	var sessions []models.GameSession
	if err := sm.db.Where("status = ?", models.SessionActive).Find(&sessions).Error; err != nil {
		return fmt.Errorf("error listing active sessions: %v", err)
	}

	for i := range sessions {
		if err := sm.SyncSessionCache(sessions[i].ID); err != nil {
			log.Printf("[SYNC] %v", err)
		}
	}
	log.Printf("[SYNC] Warmed cache for %d active sessions", len(sessions))
	return nil
}
