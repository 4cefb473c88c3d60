package socket_io

import (
	"Cornlive/services/chat"
	"Cornlive/services/game"
	"Cornlive/services/presence"
	"Cornlive/services/socket_io/handlers"
	socketio_types "Cornlive/services/socket_io/types"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gorm.io/gorm"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io/v2/socket"
)

type MySocketServer socketio_types.SocketServer

// Start wires the socket.io server into the Gin router. Each authenticated
// connection is registered in the connection map, marked online immediately,
// and subscribed to the game/chat/presence events.
func (sio *MySocketServer) Start(router *gin.Engine, db *gorm.DB,
	manager *game.Manager, chatService *chat.Service, tracker *presence.Tracker) {
	c := socket.DefaultServerOptions()
	c.SetServeClient(true)
	// NOTE: higher ping interval and timeout to 1) reduce network load and
	// 2) support slower networks
	c.SetPingInterval(5 * time.Second)
	c.SetPingTimeout(3 * time.Second)
	c.SetMaxHttpBufferSize(1000000)
	c.SetConnectTimeout(10 * time.Second)
	c.SetTransports(types.NewSet("polling", "websocket"))
	c.SetCors(&types.Cors{
		Origin:      "*",
		Credentials: true,
	})

	if sio.UserConnections == nil {
		sio.UserConnections = make(map[string]*socket.Socket)
	}

	sio.Sio_server = socket.NewServer(nil, nil)
	sio.Sio_server.On("connection", func(clients ...interface{}) {
		client := clients[0].(*socket.Socket)

		// Check if the client is authenticated
		success, username, _ := VerifyUserConnection(client, db)
		if !success {
			return
		}

		(*socketio_types.SocketServer)(sio).AddConnection(username, client)

		// First heartbeat fires on connect, the client repeats it on its
		// 30 second interval afterwards.
		if err := tracker.Heartbeat(username, string(client.Id())); err != nil {
			fmt.Println("Initial heartbeat failed for", username, ":", err)
		}

		// Subscribe to a game session's room (score + chat fan-out)
		client.On("join_game", handlers.HandleJoinGame(manager, chatService, client, username))

		// Unsubscribe from a session's room without ending the game
		client.On("leave_game", handlers.HandleLeaveGame(client, username))

		// Apply a score intent for one team
		client.On("update_score", handlers.HandleUpdateScore(manager, client, username))

		// Mark the session completed and settle statistics
		client.On("end_game", handlers.HandleEndGame(manager, client, username))

		// Append a chat message to the session's log
		client.On("game_message", handlers.HandleGameMessage(chatService, db, client, username))

		// Presence lease refresh + online roster for the setup screen
		client.On("heartbeat", handlers.HandleHeartbeat(tracker, client, username))
		client.On("list_online", handlers.HandleListOnline(tracker, client, username))

		// NOTE: will release the presence claim and remove the sio connection
		client.On("disconnecting", handlers.HandleDisconnecting(tracker, username,
			string(client.Id()), (*socketio_types.SocketServer)(sio)))
	})

	router.POST("/socket.io/*f", gin.WrapH(sio.Sio_server.ServeHandler(c)))
	router.GET("/socket.io/*f", gin.WrapH(sio.Sio_server.ServeHandler(c)))

	SignalC := make(chan os.Signal, 1)

	signal.Notify(SignalC, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		for s := range SignalC {
			switch s {
			case syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT:
				sio.Sio_server.Close(nil)
				os.Exit(0)
			}
		}
	}()

	fmt.Println("Socket server started")
}
