package game

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	streamBufferSize   = 64
	streamPingInterval = 30 * time.Second
	streamWriteWait    = 10 * time.Second
)

var streamUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Cross-origin policy is enforced by the CORS layer in front; the demo
	// façade itself is open.
	CheckOrigin: func(*http.Request) bool { return true },
}

// RoomEventsHandler upgrades the request to a websocket and feeds the client
// every bus event for the requested room as JSON. A client that cannot keep up
// loses events rather than stalling publishers.
func (h *RoomHandler) RoomEventsHandler(ctx *gin.Context) {
	roomID := ctx.Param("roomId")
	if _, ok := h.coordinator.GetRoom(roomID); !ok {
		respondError(ctx, http.StatusNotFound, ErrRoomNotFoundStr)
		return
	}

	conn, err := streamUpgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		return
	}

	events := make(chan Event, streamBufferSize)
	cancel := h.coordinator.bus.Subscribe(func(e Event) {
		if e.RoomID != roomID {
			return
		}
		select {
		case events <- e:
		default:
		}
	})

	go streamReadLoop(conn)
	streamWriteLoop(conn, events)
	cancel()
	conn.Close()
}

// streamReadLoop drains client frames so pongs and close frames are processed.
func streamReadLoop(conn *websocket.Conn) {
	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(streamPingInterval * 2))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(streamPingInterval * 2))
		return nil
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func streamWriteLoop(conn *websocket.Conn, events <-chan Event) {
	pings := time.NewTicker(streamPingInterval)
	defer pings.Stop()

	for {
		select {
		case event := <-events:
			conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteJSON(event); err != nil {
				return
			}
			if event.Type == EventRoomRemoved {
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, string(EventRoomRemoved)))
				return
			}
		case <-pings.C:
			conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
