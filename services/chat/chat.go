package chat

import (
	models "Cornlive/models/postgres"
	"Cornlive/services/game"
	"Cornlive/services/redis"
	"errors"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"
)

// MaxMessageLength bounds a chat message in characters (runes, not bytes).
// Longer messages are rejected outright rather than truncated, so the sender
// always knows exactly what the rest of the session saw.
const MaxMessageLength = 500

/*
 * Service is the append-only, session-scoped chat log. Messages are immutable
 * once created; insertion order (created_at) defines display order. Live
 * fan-out goes through the same broadcaster the session manager uses, scoped
 * to the session room, so a viewer never receives a message from another
 * game.
 */
type Service struct {
	DB          *gorm.DB
	RedisClient *redis.RedisClient
	Broadcaster game.Broadcaster
}

func NewService(db *gorm.DB, redisClient *redis.RedisClient, broadcaster game.Broadcaster) *Service {
	return &Service{DB: db, RedisClient: redisClient, Broadcaster: broadcaster}
}

// Post validates and appends one message to a session's log. Only roster
// members may post. Empty or whitespace-only text is rejected before any
// store write.
func (s *Service) Post(gameID, username, displayName, text string) (*models.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty message", game.ErrValidation)
	}
	if utf8.RuneCountInString(text) > MaxMessageLength {
		return nil, fmt.Errorf("%w: message exceeds %d characters", game.ErrValidation, MaxMessageLength)
	}

	if err := s.checkMembership(gameID, username); err != nil {
		return nil, err
	}

	message := models.ChatMessage{
		GameID:   gameID,
		Username: username,
		UserName: displayName,
		Message:  text,
	}
	if err := s.DB.Create(&message).Error; err != nil {
		return nil, fmt.Errorf("%w: posting message: %v", game.ErrStoreUnavailable, err)
	}

	log.Printf("[CHAT] %s posted to session %s", username, gameID)

	if s.Broadcaster != nil {
		s.Broadcaster.ToSession(gameID, "new_game_message", messagePayload(&message))
	}
	return &message, nil
}

// checkMembership verifies the author occupies a roster slot of the session.
// The Redis snapshot answers this without a database round-trip while the
// session is active; rosters are immutable after creation, so a cache hit is
// never stale. A miss (or a cache error) falls back to the Postgres row.
func (s *Service) checkMembership(gameID, username string) error {
	if s.RedisClient != nil {
		cached, err := s.RedisClient.GetCachedSession(gameID)
		if err != nil {
			log.Printf("[CHAT] Cache lookup for session %s failed: %v", gameID, err)
		} else if cached != nil {
			for _, member := range cached.Members() {
				if member == username {
					return nil
				}
			}
			return game.ErrUnauthorized
		}
	}

	var session models.GameSession
	if err := s.DB.Where("id = ?", gameID).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return game.ErrSessionNotFound
		}
		return fmt.Errorf("%w: fetching session: %v", game.ErrStoreUnavailable, err)
	}
	if !session.HasPlayer(username) {
		return game.ErrUnauthorized
	}
	return nil
}

// History returns the full message log for one session, oldest first. The
// socket join handler replies with this before the room subscription starts
// delivering pushes, so a client never misses the gap between the two.
func (s *Service) History(gameID string) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	err := s.DB.
		Where("game_id = ?", gameID).
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("%w: loading chat history: %v", game.ErrStoreUnavailable, err)
	}
	return messages, nil
}

func messagePayload(message *models.ChatMessage) map[string]interface{} {
	return map[string]interface{}{
		"id":         message.ID,
		"game_id":    message.GameID,
		"username":   message.Username,
		"user_name":  message.UserName,
		"message":    message.Message,
		"created_at": message.CreatedAt,
	}
}
