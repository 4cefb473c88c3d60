package game

// Broadcaster is the change-feed side of the manager: every committed
// mutation is pushed to the session room (all viewers of that session) and,
// for creation, to the individual roster members so a player on the setup
// screen learns about their new game. The socket.io server implements this;
// tests plug in a recorder.
type Broadcaster interface {
	ToSession(sessionID string, event string, payload interface{})
	ToUser(username string, event string, payload interface{})
	ToAll(event string, payload interface{})
}
