package game

import (
	models "Cornlive/models/postgres"
	redis_models "Cornlive/models/redis"
	"Cornlive/services/redis"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"
)

/*
 * Manager owns the lifecycle of game sessions: creation, score mutation,
 * termination + settlement, and rejoin discovery. Every mutation is a single
 * conditional UPDATE whose WHERE clause re-validates roster membership and
 * the active status against the CURRENT row, so a stale client copy can
 * never authorize a write the server-side roster would reject.
 */
type Manager struct {
	DB          *gorm.DB
	RedisClient *redis.RedisClient
	Broadcaster Broadcaster
}

func NewManager(db *gorm.DB, redisClient *redis.RedisClient, broadcaster Broadcaster) *Manager {
	return &Manager{DB: db, RedisClient: redisClient, Broadcaster: broadcaster}
}

// CreateSession validates the roster and inserts an active session with
// scores (0,0). Nothing is assumed created until the insert succeeds.
// Invariant enforced here: no roster member may already have an active
// session (at most one active session per user).
func (m *Manager) CreateSession(host string, roster Roster) (*models.GameSession, error) {
	if err := roster.Validate(); err != nil {
		return nil, err
	}

	members := roster.Usernames()
	var busy int64
	err := m.DB.Model(&models.GameSession{}).
		Where("status = ?", models.SessionActive).
		Where("team1_player1 IN (?) OR team1_player2 IN (?) OR team2_player1 IN (?) OR team2_player2 IN (?)",
			members[:], members[:], members[:], members[:]).
		Count(&busy).Error
	if err != nil {
		return nil, fmt.Errorf("%w: checking active sessions: %v", ErrStoreUnavailable, err)
	}
	if busy > 0 {
		return nil, fmt.Errorf("%w: a roster member already has an active session", ErrValidation)
	}

	session := models.GameSession{
		HostUsername:     host,
		Team1Player1:     roster.Team1Player1.Username,
		Team1Player2:     roster.Team1Player2.Username,
		Team2Player1:     roster.Team2Player1.Username,
		Team2Player2:     roster.Team2Player2.Username,
		Team1Player1Name: roster.Team1Player1.DisplayName,
		Team1Player2Name: roster.Team1Player2.DisplayName,
		Team2Player1Name: roster.Team2Player1.DisplayName,
		Team2Player2Name: roster.Team2Player2.DisplayName,
		Team1Score:       0,
		Team2Score:       0,
		Status:           models.SessionActive,
	}

	if err := m.DB.Create(&session).Error; err != nil {
		return nil, fmt.Errorf("%w: creating session: %v", ErrStoreUnavailable, err)
	}

	log.Printf("[GAME] Session %s created by %s", session.ID, host)

	m.cacheSession(&session)
	if m.Broadcaster != nil {
		for _, member := range session.Roster() {
			m.Broadcaster.ToUser(member, "game_created", sessionPayload(&session))
		}
	}
	return &session, nil
}

// GetSession fetches one session row by id.
func (m *Manager) GetSession(sessionID string) (*models.GameSession, error) {
	var session models.GameSession
	if err := m.DB.Where("id = ?", sessionID).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("%w: fetching session: %v", ErrStoreUnavailable, err)
	}
	return &session, nil
}

// FindActiveSession is the rejoin discovery path: a reconnecting player
// adopts their most recently created active session. Older active sessions
// naming the same player (stale rows never closed) are ignored, not cleaned
// up.
func (m *Manager) FindActiveSession(username string) (*models.GameSession, error) {
	var session models.GameSession
	err := m.DB.
		Where("status = ?", models.SessionActive).
		Where("team1_player1 = ? OR team1_player2 = ? OR team2_player1 = ? OR team2_player2 = ?",
			username, username, username, username).
		Order("created_at DESC").
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("%w: finding active session: %v", ErrStoreUnavailable, err)
	}
	return &session, nil
}

// FindCompletedSessions lists the caller's finished matches, newest first.
// Completed sessions are never deleted, they are the historical record.
func (m *Manager) FindCompletedSessions(username string, limit int) ([]models.GameSession, error) {
	if limit <= 0 {
		limit = 20
	}
	var sessions []models.GameSession
	err := m.DB.
		Where("status = ?", models.SessionCompleted).
		Where("team1_player1 = ? OR team1_player2 = ? OR team2_player1 = ? OR team2_player2 = ?",
			username, username, username, username).
		Order("created_at DESC").
		Limit(limit).
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("%w: listing completed sessions: %v", ErrStoreUnavailable, err)
	}
	return sessions, nil
}

// UpdateScore applies a score intent for the given team (1 or 2). The UPDATE
// only matches when the session is still active AND the caller occupies a
// slot of that team, so authorization is decided by the store's current row.
// SetAbsolute keeps last-write-wins semantics; AddDelta makes concurrent
// mutations commute.
func (m *Manager) UpdateScore(sessionID, caller string, team int, intent ScoreIntent) (*models.GameSession, error) {
	if team != 1 && team != 2 {
		return nil, fmt.Errorf("%w: team must be 1 or 2", ErrValidation)
	}
	if err := intent.validate(); err != nil {
		return nil, err
	}

	column := "team1_score"
	memberCond := "(team1_player1 = ? OR team1_player2 = ?)"
	if team == 2 {
		column = "team2_score"
		memberCond = "(team2_player1 = ? OR team2_player2 = ?)"
	}

	updates := map[string]interface{}{"updated_at": time.Now()}
	switch intent.Kind {
	case IntentSetAbsolute:
		updates[column] = intent.Value
	case IntentAddDelta:
		updates[column] = gorm.Expr(fmt.Sprintf("GREATEST(%s + ?, 0)", column), intent.Value)
	}

	result := m.DB.Model(&models.GameSession{}).
		Where("id = ? AND status = ? AND "+memberCond,
			sessionID, models.SessionActive, caller, caller).
		Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("%w: updating score: %v", ErrStoreUnavailable, result.Error)
	}

	if result.RowsAffected == 0 {
		// Nothing matched: work out whether the session is gone, finished,
		// or the caller simply plays for the other team.
		session, err := m.GetSession(sessionID)
		if err != nil {
			return nil, err
		}
		if session.Status == models.SessionCompleted {
			return nil, ErrSessionFinished
		}
		return nil, ErrUnauthorized
	}

	session, err := m.GetSession(sessionID)
	if err != nil {
		return nil, err
	}

	log.Printf("[GAME] Session %s team%d score -> %d/%d (by %s)",
		session.ID, team, session.Team1Score, session.Team2Score, caller)

	m.cacheSession(session)
	if m.Broadcaster != nil {
		m.Broadcaster.ToSession(session.ID, "score_updated", sessionPayload(session))
	}
	return session, nil
}

// EndSession transitions an active session to completed and settles player
// statistics. Any roster member may end the session; the threshold (first to
// 21) is a client-observed condition and is not re-verified here. The
// conditional status flip guarantees exactly one caller runs settlement even
// when several participants race to end the same game.
func (m *Manager) EndSession(sessionID, caller string) (*models.GameSession, error) {
	session, err := m.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	if !session.HasPlayer(caller) {
		return nil, ErrUnauthorized
	}
	if session.Status == models.SessionCompleted {
		return nil, ErrSessionFinished
	}

	result := m.DB.Model(&models.GameSession{}).
		Where("id = ? AND status = ?", sessionID, models.SessionActive).
		Updates(map[string]interface{}{
			"status":     models.SessionCompleted,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return nil, fmt.Errorf("%w: ending session: %v", ErrStoreUnavailable, result.Error)
	}
	if result.RowsAffected == 0 {
		// Another participant flipped it first; they own the settlement.
		return nil, ErrSessionFinished
	}

	// Settlement must use the scores the completed row actually holds: a
	// teammate's score update can commit between the read above and the
	// flip, and at 20-20 that is the difference between a win and a tie.
	final, err := m.GetSession(sessionID)
	if err != nil {
		log.Printf("[GAME] Could not re-read session %s after completion: %v", sessionID, err)
		session.Status = models.SessionCompleted
		final = session
	}
	session = final

	log.Printf("[GAME] Session %s completed by %s (final %d-%d)",
		session.ID, caller, session.Team1Score, session.Team2Score)

	// Settlement failures never un-complete the session.
	m.settle(session)

	if m.RedisClient != nil {
		if err := m.RedisClient.DeleteCachedSession(session.ID); err != nil {
			log.Printf("[GAME] Could not drop cached session %s: %v", session.ID, err)
		}
	}
	if m.Broadcaster != nil {
		m.Broadcaster.ToSession(session.ID, "game_ended", sessionPayload(session))
	}
	return session, nil
}

// cacheSession refreshes the volatile Redis snapshot. Cache failures are
// logged and swallowed, Postgres already holds the truth.
func (m *Manager) cacheSession(session *models.GameSession) {
	if m.RedisClient == nil {
		return
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
	if err := m.RedisClient.SaveCachedSession(snapshot); err != nil {
		log.Printf("[GAME] Could not cache session %s: %v", session.ID, err)
	}
}

// sessionPayload is the wire shape emitted on session events.
func sessionPayload(session *models.GameSession) map[string]interface{} {
	return map[string]interface{}{
		"id":                 session.ID,
		"host_username":      session.HostUsername,
		"team1_player1":      session.Team1Player1,
		"team1_player2":      session.Team1Player2,
		"team2_player1":      session.Team2Player1,
		"team2_player2":      session.Team2Player2,
		"team1_player1_name": session.Team1Player1Name,
		"team1_player2_name": session.Team1Player2Name,
		"team2_player1_name": session.Team2Player1Name,
		"team2_player2_name": session.Team2Player2Name,
		"team1_score":        session.Team1Score,
		"team2_score":        session.Team2Score,
		"status":             session.Status,
		"created_at":         session.CreatedAt,
		"updated_at":         session.UpdatedAt,
	}
}
