package api

import (
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"hackball/internal/game"
	"hackball/internal/protocol"
	"hackball/internal/room"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

const (
	// writeWait is the deadline for a single websocket write.
	writeWait = 10 * time.Second

	// pongWait is how long a connection may stay silent before we
	// consider it dead. Pings go out at pingPeriod < pongWait.
	pongWait   = 60 * time.Second
	pingPeriod = 25 * time.Second

	// maxMessageSize bounds inbound frames. Input and lobby commands
	// are tiny; anything bigger is garbage.
	maxMessageSize = 4096

	// sendQueueSize is the per-client outbound buffer. State frames
	// are superseded every tick, so overflow drops are harmless.
	sendQueueSize = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")

		if IsAllowedOrigin(origin) {
			return true
		}

		log.Printf("websocket rejected, origin %q not allowed", origin)
		RecordConnectionRejected("origin")
		return false
	},
}

var errClientClosed = errors.New("client connection closed")

// Client is one websocket connection. It satisfies room.Conn: the room
// goroutine calls Send, which never blocks; a dedicated write pump
// drains the queue onto the wire.
type Client struct {
	conn *websocket.Conn
	send chan []byte

	done      chan struct{}
	closeOnce sync.Once
}

func newClient(conn *websocket.Conn) *Client {
	return &Client{
		conn: conn,
		send: make(chan []byte, sendQueueSize),
		done: make(chan struct{}),
	}
}

// Send queues a frame for delivery. A full queue means the consumer is
// too slow to care about this frame; it is dropped, not blocked on.
func (c *Client) Send(msg []byte) error {
	select {
	case <-c.done:
		return errClientClosed
	case c.send <- msg:
		return nil
	default:
		return nil
	}
}

// Close tears the connection down. Safe to call from any goroutine,
// any number of times.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
	})
	return nil
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
			IncrementWSMessages()

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			return
		}
	}
}

// WebSocketHandler upgrades connections and bridges them to rooms.
type WebSocketHandler struct {
	registry  *room.Registry
	wsLimiter *WebSocketRateLimiter
	maxConns  int

	active atomic.Int32
}

// NewWebSocketHandler creates a handler with total and per-IP
// connection caps.
func NewWebSocketHandler(registry *room.Registry, maxConns, maxPerIP int) *WebSocketHandler {
	return &WebSocketHandler{
		registry:  registry,
		wsLimiter: NewWebSocketRateLimiter(maxPerIP),
		maxConns:  maxConns,
	}
}

// ConnectionCount returns the number of live websocket connections.
func (h *WebSocketHandler) ConnectionCount() int {
	return int(h.active.Load())
}

// ServeHTTP handles a websocket upgrade and runs the connection until
// the client disconnects.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ip := GetClientIP(r)

	if int(h.active.Load()) >= h.maxConns {
		log.Printf("websocket rejected from %s, server at capacity", ip)
		RecordConnectionRejected("capacity")
		http.Error(w, "Too many connections", http.StatusServiceUnavailable)
		return
	}

	if !h.wsLimiter.Allow(ip) {
		log.Printf("websocket rejected from %s, per-IP limit reached", ip)
		RecordConnectionRejected("ws_limit")
		http.Error(w, "Too many connections from your IP", http.StatusTooManyRequests)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade from %s: %v", ip, err)
		h.wsLimiter.Release(ip)
		return
	}

	total := h.active.Add(1)
	UpdateWSConnections(int(total))
	log.Printf("client connected from %s (%d total)", ip, total)

	client := newClient(conn)
	go client.writePump()

	h.serve(client)

	client.Close()
	h.wsLimiter.Release(ip)
	remaining := h.active.Add(-1)
	UpdateWSConnections(int(remaining))
	log.Printf("client disconnected (%d remaining)", remaining)
}

// serve is the read loop. The first accepted command must be a join;
// after that, gameplay and lobby commands are forwarded to the room.
func (h *WebSocketHandler) serve(c *Client) {
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	var (
		rm       *room.Room
		playerID string
	)
	defer func() {
		if rm != nil {
			rm.Leave(playerID)
		}
	}()

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		env, err := protocol.DecodeEnvelope(raw)
		if err != nil {
			h.sendError(c, protocol.ErrKindInvalidInput, "malformed message")
			continue
		}

		if rm == nil {
			if env.Type != protocol.MsgJoin {
				h.sendError(c, protocol.ErrKindInvalidInput, "join first")
				continue
			}
			rm, playerID = h.handleJoin(c, env)
			continue
		}

		h.dispatch(c, rm, playerID, env)
	}
}

// handleJoin resolves a join command into room membership. An empty
// room id creates a fresh room with the caller as host.
func (h *WebSocketHandler) handleJoin(c *Client, env protocol.Envelope) (*room.Room, string) {
	j, err := protocol.DecodePayload[protocol.Join](env)
	if err != nil {
		h.sendError(c, protocol.ErrKindInvalidInput, "malformed join")
		return nil, ""
	}

	team, err := room.ParseTeam(j.Team)
	if err != nil {
		h.sendError(c, protocol.ErrKindInvalidInput, "unknown team")
		return nil, ""
	}

	var (
		rm       *room.Room
		playerID string
	)
	if j.RoomID == "" {
		rm, playerID, _, err = h.registry.Create(c, j.Nickname, team)
	} else {
		rm, playerID, _, err = h.registry.Join(c, j.RoomID, j.Nickname, team)
	}
	if err != nil {
		h.sendError(c, errKind(err), err.Error())
		return nil, ""
	}

	return rm, playerID
}

func (h *WebSocketHandler) dispatch(c *Client, rm *room.Room, playerID string, env protocol.Envelope) {
	switch env.Type {
	case protocol.MsgInput:
		in, err := protocol.DecodePayload[protocol.Input](env)
		if err != nil {
			h.sendError(c, protocol.ErrKindInvalidInput, "malformed input")
			return
		}
		rm.Input(playerID, game.Intent{
			Up:    in.Up,
			Down:  in.Down,
			Left:  in.Left,
			Right: in.Right,
			Kick:  in.Kick,
		})

	case protocol.MsgChangeTeam:
		ct, err := protocol.DecodePayload[protocol.ChangeTeam](env)
		if err != nil {
			h.sendError(c, protocol.ErrKindInvalidInput, "malformed changeTeam")
			return
		}
		team, err := room.ParseTeam(ct.Team)
		if err != nil || !team.Valid() {
			h.sendError(c, protocol.ErrKindInvalidInput, "unknown team")
			return
		}
		rm.ChangeTeam(playerID, ct.TargetID, team)

	case protocol.MsgKickPlayer:
		kp, err := protocol.DecodePayload[protocol.KickPlayer](env)
		if err != nil {
			h.sendError(c, protocol.ErrKindInvalidInput, "malformed kickPlayer")
			return
		}
		rm.KickPlayer(playerID, kp.TargetID)

	case protocol.MsgTransferHost:
		th, err := protocol.DecodePayload[protocol.TransferHost](env)
		if err != nil {
			h.sendError(c, protocol.ErrKindInvalidInput, "malformed transferHost")
			return
		}
		rm.TransferHost(playerID, th.TargetID)

	case protocol.MsgJoin:
		h.sendError(c, protocol.ErrKindInvalidInput, "already joined")

	default:
		h.sendError(c, protocol.ErrKindInvalidInput, "unknown message type")
	}
}

func (h *WebSocketHandler) sendError(c *Client, kind, msg string) {
	frame, err := protocol.Encode(protocol.MsgError, protocol.Error{Kind: kind, Message: msg})
	if err != nil {
		return
	}
	c.Send(frame)
}

// errKind maps room errors onto wire error kinds.
func errKind(err error) string {
	switch errors.Cause(err) {
	case room.ErrRoomNotFound:
		return protocol.ErrKindRoomNotFound
	case room.ErrNicknameTaken:
		return protocol.ErrKindNicknameTaken
	case room.ErrRoomFull:
		return protocol.ErrKindRoomFull
	case room.ErrMatchEnded:
		return protocol.ErrKindMatchEnded
	default:
		return protocol.ErrKindInvalidInput
	}
}
