package handlers

import (
	"Cornlive/services/presence"
	socketio_types "Cornlive/services/socket_io/types"
	"log"
)

// HandleDisconnecting is the unclean-teardown-adjacent path: the socket
// dropped, so release its presence claim and forget the connection. The
// user stays online if a newer socket owns the lease. Their active game
// session, if any, stays untouched; they can rejoin later via the
// discovery query.
func HandleDisconnecting(tracker *presence.Tracker, username, socketID string,
	sio *socketio_types.SocketServer) func(args ...interface{}) {
	return func(args ...interface{}) {
		log.Printf("[DISCONNECT] %s disconnecting", username)

		if err := tracker.ReleaseSocket(username, socketID); err != nil {
			log.Printf("[DISCONNECT] Could not mark %s offline: %v", username, err)
		}

		sio.RemoveConnection(username)
		log.Printf("[DISCONNECT] %s disconnected", username)
	}
}
