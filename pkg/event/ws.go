package event

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/openpaw/pawdeck/pkg/utils"
)

// Keepalive timings shared by the console's WebSocket endpoints.
const (
	PingInterval = 20 * time.Second
	PongWait     = 60 * time.Second
	WriteWait    = 10 * time.Second
)

// Subscribed is the first frame of an events socket. Events emitted after it
// are delivered.
const Subscribed = "ws.subscribed"

// WSMessage is the JSON message sent over WebSocket.
type WSMessage struct {
	Event string         `json:"event"`
	Data  map[string]any `json:"data,omitempty"`
	TS    int64          `json:"ts"` // Unix ms
}

// Keepalive starts draining client frames and extends the read deadline on
// every pong. The returned channel closes once the client is gone.
func Keepalive(conn *websocket.Conn, readLimit int64) <-chan struct{} {
	conn.SetReadLimit(readLimit)
	_ = conn.SetReadDeadline(time.Now().Add(PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(PongWait))
	})
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	return done
}

// WriteJSON writes v with the shared write deadline.
func WriteJSON(conn *websocket.Conn, v any) error {
	_ = conn.SetWriteDeadline(time.Now().Add(WriteWait))
	return conn.WriteJSON(v)
}

// Ping writes a ping control frame with the shared write deadline.
func Ping(conn *websocket.Conn) error {
	_ = conn.SetWriteDeadline(time.Now().Add(WriteWait))
	return conn.WriteMessage(websocket.PingMessage, nil)
}

// WSHandler forwards emitter events to WebSocket clients.
type WSHandler struct {
	emitter  *Emitter
	upgrader websocket.Upgrader
}

func NewWSHandler(emitter *Emitter) *WSHandler {
	return &WSHandler{
		emitter: emitter,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handle serves /console/events/ws. The events query parameter is a
// comma-separated list of event names; empty subscribes to everything.
func (h *WSHandler) Handle(c *gin.Context) {
	filter := ParseFilter(c.Query("events"))
	logger := utils.GetLogger().With("remote", c.ClientIP(), "events", filterNames(filter))

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("event socket upgrade failed", "error", err)
		return
	}
	defer func() { _ = conn.Close() }()

	sendCh := make(chan WSMessage, 64)
	var dropped atomic.Int64
	unsubscribe := h.emitter.OnAny(func(ev Event) {
		if filter != nil && !filter[ev.EventName()] {
			return
		}
		select {
		case sendCh <- WSMessage{Event: ev.EventName(), Data: eventToData(ev), TS: time.Now().UnixMilli()}:
		default:
			// The writer is the only reader of sendCh; a full buffer means a slow client.
			dropped.Add(1)
		}
	})
	defer func() {
		unsubscribe()
		if n := dropped.Load(); n > 0 {
			logger.Warn("event socket dropped events", "count", n)
		}
	}()

	hello := WSMessage{
		Event: Subscribed,
		Data:  map[string]any{"events": filterNames(filter)},
		TS:    time.Now().UnixMilli(),
	}
	if err := WriteJSON(conn, hello); err != nil {
		logger.Info("event socket hello write failed", "error", err)
		return
	}
	logger.Debug("event socket subscribed")

	done := Keepalive(conn, 4096)
	ping := time.NewTicker(PingInterval)
	defer ping.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case <-done:
			logger.Debug("event socket closed by client")
			return
		case <-ping.C:
			if err := Ping(conn); err != nil {
				logger.Info("event socket ping failed", "error", err)
				return
			}
		case msg := <-sendCh:
			if err := WriteJSON(conn, msg); err != nil {
				logger.Info("event socket write failed", "event", msg.Event, "error", err)
				return
			}
		}
	}
}

// ParseFilter turns "a, b" into a set. An empty parameter means all events
// and yields nil.
func ParseFilter(param string) map[string]bool {
	if strings.TrimSpace(param) == "" {
		return nil
	}
	filter := make(map[string]bool)
	for _, e := range strings.Split(param, ",") {
		if e = strings.TrimSpace(e); e != "" {
			filter[e] = true
		}
	}
	if len(filter) == 0 {
		return nil
	}
	return filter
}

func filterNames(filter map[string]bool) []string {
	names := make([]string, 0, len(filter))
	for name := range filter {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func eventToData(ev Event) map[string]any {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil
	}
	var result map[string]any
	if err := json.Unmarshal(data, &result); err != nil {
		return nil
	}
	return result
}
