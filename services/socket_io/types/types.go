package socketio_types

import (
	"fmt"
	"sync"

	"github.com/zishang520/socket.io/v2/socket"
)

// SocketServer is a struct that contains the socket.io server and a map of
// socket connections. It doubles as the change feed: the game/chat/presence
// services publish through it without knowing about socket.io.
type SocketServer struct {
	Sio_server *socket.Server
	// Map to track username -> socket connections
	UserConnections map[string]*socket.Socket
	mutex           sync.RWMutex
}

func NewSocketServer() *SocketServer {
	return &SocketServer{
		UserConnections: make(map[string]*socket.Socket),
	}
}

// SessionRoom names the socket.io room for one game session.
func SessionRoom(sessionID string) socket.Room {
	return socket.Room(fmt.Sprintf("game:%s", sessionID))
}

// Add methods to manage connections
func (s *SocketServer) AddConnection(username string, client *socket.Socket) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.UserConnections[username] = client
}

func (s *SocketServer) RemoveConnection(username string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.UserConnections, username)
}

func (s *SocketServer) GetConnection(username string) (*socket.Socket, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	client, exists := s.UserConnections[username]
	return client, exists
}

// ToSession emits an event to every viewer of one game session.
func (s *SocketServer) ToSession(sessionID string, event string, payload interface{}) {
	if s.Sio_server == nil {
		return
	}
	s.Sio_server.To(SessionRoom(sessionID)).Emit(event, payload)
}

// ToUser emits an event to one connected user, if they are connected.
func (s *SocketServer) ToUser(username string, event string, payload interface{}) {
	client, exists := s.GetConnection(username)
	if !exists {
		return
	}
	client.Emit(event, payload)
}

// ToAll emits an event to every connected client.
func (s *SocketServer) ToAll(event string, payload interface{}) {
	if s.Sio_server == nil {
		return
	}
	s.Sio_server.Emit(event, payload)
}
