package chat

import (
	models "Cornlive/models/postgres"
	redis_models "Cornlive/models/redis"
	"Cornlive/services/game"
	"Cornlive/services/redis"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type recordedEvent struct {
	Target  string
	Event   string
	Payload interface{}
}

type recorderBroadcaster struct {
	events []recordedEvent
}

func (r *recorderBroadcaster) ToSession(sessionID, event string, payload interface{}) {
	r.events = append(r.events, recordedEvent{"session:" + sessionID, event, payload})
}

func (r *recorderBroadcaster) ToUser(username, event string, payload interface{}) {
	r.events = append(r.events, recordedEvent{"user:" + username, event, payload})
}

func (r *recorderBroadcaster) ToAll(event string, payload interface{}) {
	r.events = append(r.events, recordedEvent{"all", event, payload})
}

func newMockService(t *testing.T) (*Service, sqlmock.Sqlmock, *recorderBroadcaster) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(pgdriver.New(pgdriver.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	recorder := &recorderBroadcaster{}
	return NewService(db, nil, recorder), mock, recorder
}

func sessionRow(mock sqlmock.Sqlmock) *sqlmock.Rows {
	now := time.Now()
	return mock.NewRows([]string{
		"id", "host_username",
		"team1_player1", "team1_player2", "team2_player1", "team2_player2",
		"team1_player1_name", "team1_player2_name", "team2_player1_name", "team2_player2_name",
		"team1_score", "team2_score", "status", "created_at", "updated_at",
	}).AddRow(
		"game-1", "ann",
		"ann", "amy", "bob", "ben",
		"Ann", "Amy", "Bob", "Ben",
		10, 7, models.SessionActive, now, now,
	)
}

func TestPostRejectsWhitespaceOnlyMessage(t *testing.T) {
	service, mock, _ := newMockService(t)

	_, err := service.Post("game-1", "ann", "Ann", "   \n\t ")
	assert.ErrorIs(t, err, game.ErrValidation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRejectsOverlongMessage(t *testing.T) {
	service, mock, _ := newMockService(t)

	_, err := service.Post("game-1", "ann", "Ann", strings.Repeat("x", MaxMessageLength+1))
	assert.ErrorIs(t, err, game.ErrValidation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// The bound is counted in runes: 500 multibyte characters are still one
// full-length legal message.
func TestPostAcceptsMaxLengthMultibyteMessage(t *testing.T) {
	service, mock, recorder := newMockService(t)

	mock.ExpectQuery(`SELECT \* FROM "game_sessions" WHERE id = \$1`).
		WillReturnRows(sessionRow(mock))
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "chat_messages"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	text := strings.Repeat("ñ", MaxMessageLength)
	message, err := service.Post("game-1", "ann", "Ann", text)
	require.NoError(t, err)
	assert.Equal(t, text, message.Message)
	assert.NotEmpty(t, message.ID)

	if assert.Len(t, recorder.events, 1) {
		assert.Equal(t, "session:game-1", recorder.events[0].Target)
		assert.Equal(t, "new_game_message", recorder.events[0].Event)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRejectsNonMember(t *testing.T) {
	service, mock, recorder := newMockService(t)

	mock.ExpectQuery(`SELECT \* FROM "game_sessions" WHERE id = \$1`).
		WillReturnRows(sessionRow(mock))

	_, err := service.Post("game-1", "zoe", "Zoe", "hello")
	assert.ErrorIs(t, err, game.ErrUnauthorized)
	assert.Empty(t, recorder.events)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostUnknownSession(t *testing.T) {
	service, mock, _ := newMockService(t)

	mock.ExpectQuery(`SELECT \* FROM "game_sessions" WHERE id = \$1`).
		WillReturnRows(mock.NewRows([]string{"id"}))

	_, err := service.Post("missing", "ann", "Ann", "hello")
	assert.ErrorIs(t, err, game.ErrSessionNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Cache-backed membership tests need a local Redis on the default port and
// skip when none is reachable.
func newCachedService(t *testing.T, gameID string) (*Service, sqlmock.Sqlmock) {
	t.Helper()

	rc := redis.NewRedisClient("localhost:6379", 15)
	key := "session:" + gameID
	if err := rc.CleanupKeys([]string{key}); err != nil {
		t.Skipf("redis not available: %v", err)
	}
	t.Cleanup(func() { rc.CleanupKeys([]string{key}) })

	require.NoError(t, rc.SaveCachedSession(&redis_models.CachedSession{
		ID:           gameID,
		HostUsername: "ann",
		Team1Player1: "ann",
		Team1Player2: "amy",
		Team2Player1: "bob",
		Team2Player2: "ben",
		Status:       models.SessionActive,
		UpdatedAt:    time.Now(),
	}))

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(pgdriver.New(pgdriver.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	return NewService(db, rc, &recorderBroadcaster{}), mock
}

// A warm snapshot answers the roster check, so posting costs one INSERT and
// no session SELECT.
func TestPostAnswersMembershipFromCache(t *testing.T) {
	service, mock := newCachedService(t, "chat-cache")

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "chat_messages"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	message, err := service.Post("chat-cache", "amy", "Amy", "nice toss")
	require.NoError(t, err)
	assert.Equal(t, "nice toss", message.Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRejectsNonMemberFromCacheWithoutSQL(t *testing.T) {
	service, mock := newCachedService(t, "chat-cache-outsider")

	_, err := service.Post("chat-cache-outsider", "zoe", "Zoe", "let me in")
	assert.ErrorIs(t, err, game.ErrUnauthorized)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryScopedToSessionOldestFirst(t *testing.T) {
	service, mock, _ := newMockService(t)

	now := time.Now()
	mock.ExpectQuery(`SELECT \* FROM "chat_messages" WHERE game_id = \$1 ORDER BY created_at ASC`).
		WithArgs("game-1").
		WillReturnRows(mock.NewRows([]string{"id", "game_id", "username", "user_name", "message", "created_at"}).
			AddRow("m1", "game-1", "ann", "Ann", "nice toss", now.Add(-time.Minute)).
			AddRow("m2", "game-1", "bob", "Bob", "lucky one", now))

	messages, err := service.History("game-1")
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "nice toss", messages[0].Message)
	assert.Equal(t, "lucky one", messages[1].Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}
