package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"orchd/internal/broadcast"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The API is same-host or reverse-proxied; origin policy is enforced
	// by the CORS configuration, not the socket.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// serveStatusSocket streams status snapshots: the current state on
// connect, then one message per orchestrator state change, in order.
func serveStatusSocket(w http.ResponseWriter, r *http.Request, svc Service, stream *broadcast.Broadcaster) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		if zlog != nil {
			zlog.Debug().Err(err).Msg("ws upgrade failed")
		}
		return
	}
	defer conn.Close()

	sub := stream.Subscribe(svc)
	defer stream.Unsubscribe(sub)
	wsSubscribers.Inc()
	defer wsSubscribers.Dec()

	// Drain the read side to surface client close frames.
	readClosed := make(chan struct{})
	go func() {
		defer close(readClosed)
		conn.SetReadLimit(512)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(wsPingInterval)
	defer ping.Stop()
	for {
		select {
		case snap, ok := <-sub.C():
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(snap); err != nil {
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-readClosed:
			return
		case <-r.Context().Done():
			return
		}
	}
}
