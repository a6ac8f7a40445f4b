// Package ws is the websocket transport: one connection per player,
// JSON envelopes both ways. Game results go back to the actor
// privately; state snapshots are broadcast per-player so nobody sees
// an opponent's hand.
package ws

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	log "github.com/sirupsen/logrus"

	"github.com/nypblockchain/pythongame/internal/auth"
	"github.com/nypblockchain/pythongame/internal/bot"
	"github.com/nypblockchain/pythongame/internal/game"
	"github.com/nypblockchain/pythongame/internal/rooms"
)

// writeTimeout bounds every outbound message.
const writeTimeout = 5 * time.Second

// ClientMessage is the envelope clients send.
type ClientMessage struct {
	Type     string `json:"type"`
	Token    string `json:"token,omitempty"`
	Name     string `json:"name,omitempty"`
	Room     string `json:"room,omitempty"`
	VsBot    bool   `json:"vs_bot,omitempty"`
	Card     string `json:"card,omitempty"`
	Position *int   `json:"position,omitempty"`
	Power    string `json:"power,omitempty"`
	Text     string `json:"text,omitempty"`
}

// ServerMessage is the envelope the server sends.
type ServerMessage struct {
	Type     string      `json:"type"`
	Room     string      `json:"room,omitempty"`
	PlayerID string      `json:"player_id,omitempty"`
	Token    string      `json:"token,omitempty"`
	Reason   string      `json:"reason,omitempty"`
	Message  string      `json:"message,omitempty"`
	Payload  interface{} `json:"payload,omitempty"`
}

type client struct {
	conn     *websocket.Conn
	playerID string
	name     string
	room     string // joined room code, "" before join

	writeMu sync.Mutex
}

// Hub routes websocket traffic to game sessions.
type Hub struct {
	registry *rooms.Registry
	auth     *auth.Service

	botEnabled bool
	botDelay   time.Duration

	mu      sync.Mutex
	clients map[string]map[*client]struct{} // room code -> members
	bots    map[string]*bot.Bot             // room code -> bot
}

// NewHub creates the transport hub.
func NewHub(registry *rooms.Registry, authSvc *auth.Service, botEnabled bool, botDelay time.Duration) *Hub {
	return &Hub{
		registry:   registry,
		auth:       authSvc,
		botEnabled: botEnabled,
		botDelay:   botDelay,
		clients:    make(map[string]map[*client]struct{}),
		bots:       make(map[string]*bot.Bot),
	}
}

// ServeWS upgrades the request and runs the connection until it
// closes.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		log.WithError(err).Warn("websocket accept failed")
		return
	}
	c := &client{conn: conn}
	defer h.dropClient(c)
	defer conn.Close(websocket.StatusInternalError, "server closing")

	ctx := r.Context()
	for {
		var msg ClientMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			return
		}
		h.dispatch(ctx, c, msg)
	}
}

func (h *Hub) dispatch(ctx context.Context, c *client, msg ClientMessage) {
	switch msg.Type {
	case "create_room":
		h.handleCreate(ctx, c, msg)
	case "join_room":
		h.handleJoin(ctx, c, msg)
	case "start_game":
		h.handleStart(ctx, c)
	case "play_card":
		h.handlePlay(ctx, c, msg)
	case "pass_turn":
		h.handlePass(ctx, c)
	case "use_power":
		h.handlePower(ctx, c, msg)
	case "get_state":
		h.sendState(ctx, c)
	case "list_rooms":
		h.send(ctx, c, ServerMessage{Type: "room_list", Payload: h.registry.ListOpen()})
	case "chat":
		h.handleChat(ctx, c, msg)
	case "leave_room":
		h.handleLeave(ctx, c)
	default:
		h.sendError(ctx, c, "unknown_message_type", "unrecognized message type")
	}
}

// identify resolves or mints the player identity for a joining
// client. An empty token gets a guest identity; the minted token is
// returned so the client can reconnect as the same player.
func (h *Hub) identify(c *client, msg ClientMessage) (token string, err error) {
	if msg.Token != "" {
		id, name, verr := h.auth.VerifyToken(msg.Token)
		if verr != nil {
			return "", verr
		}
		c.playerID = id.String()
		c.name = name
		return msg.Token, nil
	}
	name := msg.Name
	if name == "" {
		name = "Guest"
	}
	id, tok, gerr := h.auth.IssueGuestToken(name)
	if gerr != nil {
		return "", gerr
	}
	c.playerID = id.String()
	c.name = name
	return tok, nil
}

func (h *Hub) handleCreate(ctx context.Context, c *client, msg ClientMessage) {
	if c.room != "" {
		h.sendError(ctx, c, "already_in_room", "leave your current room first")
		return
	}
	token, err := h.identify(c, msg)
	if err != nil {
		h.sendError(ctx, c, "invalid_token", "could not verify token")
		return
	}
	s, err := h.registry.Create(msg.Room)
	if err != nil {
		h.sendError(ctx, c, "room_code_taken", "that room code is already in use")
		return
	}
	res := s.Join(c.playerID, c.name)
	if !res.Success {
		h.sendError(ctx, c, string(res.Reason), "could not join new room")
		return
	}
	h.addClient(c, s.RoomCode)

	h.send(ctx, c, ServerMessage{
		Type: "joined", Room: s.RoomCode, PlayerID: c.playerID, Token: token, Payload: res,
	})

	if msg.VsBot && h.botEnabled {
		b := bot.New(s, h.botDelay, func() { h.broadcastState(s.RoomCode) })
		if br := b.Join(); br.Success {
			h.mu.Lock()
			h.bots[s.RoomCode] = b
			h.mu.Unlock()
			if sr := s.Start(); sr.Success {
				h.broadcastState(s.RoomCode)
				b.Poke()
			}
		}
	}
}

func (h *Hub) handleJoin(ctx context.Context, c *client, msg ClientMessage) {
	if c.room != "" {
		h.sendError(ctx, c, "already_in_room", "leave your current room first")
		return
	}
	token, err := h.identify(c, msg)
	if err != nil {
		h.sendError(ctx, c, "invalid_token", "could not verify token")
		return
	}
	s, err := h.registry.Get(msg.Room)
	if err != nil {
		h.sendError(ctx, c, "room_not_found", "no room with that code")
		return
	}
	res := s.Join(c.playerID, c.name)
	if !res.Success {
		h.sendError(ctx, c, string(res.Reason), "could not join room")
		return
	}
	h.addClient(c, s.RoomCode)
	h.send(ctx, c, ServerMessage{
		Type: "joined", Room: s.RoomCode, PlayerID: c.playerID, Token: token, Payload: res,
	})
	h.broadcastState(s.RoomCode)
}

func (h *Hub) handleStart(ctx context.Context, c *client) {
	s, ok := h.sessionOf(ctx, c)
	if !ok {
		return
	}
	res := s.Start()
	if !res.Success {
		h.sendError(ctx, c, string(res.Reason), "could not start game")
		return
	}
	h.broadcastState(c.room)
	h.pokeBot(c.room)
}

func (h *Hub) handlePlay(ctx context.Context, c *client, msg ClientMessage) {
	s, ok := h.sessionOf(ctx, c)
	if !ok {
		return
	}
	res := s.Play(c.playerID, msg.Card, msg.Position)
	h.send(ctx, c, ServerMessage{Type: "play_result", Payload: res})
	if res.Success {
		h.broadcastState(c.room)
		h.pokeBot(c.room)
	}
}

func (h *Hub) handlePass(ctx context.Context, c *client) {
	s, ok := h.sessionOf(ctx, c)
	if !ok {
		return
	}
	res := s.Pass(c.playerID)
	h.send(ctx, c, ServerMessage{Type: "pass_result", Payload: res})
	if res.Success {
		h.broadcastState(c.room)
		h.pokeBot(c.room)
	}
}

func (h *Hub) handlePower(ctx context.Context, c *client, msg ClientMessage) {
	s, ok := h.sessionOf(ctx, c)
	if !ok {
		return
	}
	res := s.UsePower(c.playerID, game.Power(msg.Power))
	h.send(ctx, c, ServerMessage{Type: "power_result", Payload: res})
	if res.Success {
		h.broadcastState(c.room)
	}
}

// sendState sends the caller their own view of the room.
func (h *Hub) sendState(ctx context.Context, c *client) {
	s, ok := h.sessionOf(ctx, c)
	if !ok {
		return
	}
	h.send(ctx, c, ServerMessage{Type: "state", Room: c.room, Payload: s.SnapshotFor(c.playerID)})
}

func (h *Hub) handleChat(ctx context.Context, c *client, msg ClientMessage) {
	if c.room == "" {
		h.sendError(ctx, c, "not_in_room", "join a room first")
		return
	}
	if msg.Text == "" {
		return
	}
	h.broadcast(c.room, ServerMessage{
		Type:     "chat",
		Room:     c.room,
		PlayerID: c.playerID,
		Message:  msg.Text,
		Payload:  map[string]string{"name": c.name},
	})
}

func (h *Hub) handleLeave(ctx context.Context, c *client) {
	if c.room == "" {
		h.sendError(ctx, c, "not_in_room", "join a room first")
		return
	}
	room := c.room
	h.removeFromRoom(c)
	h.broadcastState(room)
	h.send(ctx, c, ServerMessage{Type: "left", Room: room})
}

// dropClient handles a disconnect. Leaving an in-progress game
// forfeits it, same as an explicit leave.
func (h *Hub) dropClient(c *client) {
	if c.room != "" {
		room := c.room
		h.removeFromRoom(c)
		h.broadcastState(room)
	}
}

// removeFromRoom detaches the client and applies the game-side leave.
func (h *Hub) removeFromRoom(c *client) {
	room := c.room
	c.room = ""

	h.mu.Lock()
	if set, ok := h.clients[room]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, room)
		}
	}
	h.mu.Unlock()

	s, err := h.registry.Get(room)
	if err != nil {
		return
	}
	s.Leave(c.playerID)
	if s.PlayerCount() == 0 || (s.GameOver() && len(h.members(room)) == 0) {
		h.mu.Lock()
		delete(h.bots, room)
		h.mu.Unlock()
		h.registry.Delete(room)
	}
}

func (h *Hub) sessionOf(ctx context.Context, c *client) (*game.Session, bool) {
	if c.room == "" {
		h.sendError(ctx, c, "not_in_room", "join a room first")
		return nil, false
	}
	s, err := h.registry.Get(c.room)
	if err != nil {
		h.sendError(ctx, c, "room_not_found", "room no longer exists")
		return nil, false
	}
	return s, true
}

func (h *Hub) addClient(c *client, room string) {
	c.room = room
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[room] == nil {
		h.clients[room] = make(map[*client]struct{})
	}
	h.clients[room][c] = struct{}{}
}

func (h *Hub) members(room string) []*client {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*client, 0, len(h.clients[room]))
	for c := range h.clients[room] {
		out = append(out, c)
	}
	return out
}

func (h *Hub) pokeBot(room string) {
	h.mu.Lock()
	b := h.bots[room]
	h.mu.Unlock()
	if b != nil {
		b.Poke()
	}
}

// broadcastState sends each member their own view of the room.
func (h *Hub) broadcastState(room string) {
	s, err := h.registry.Get(room)
	if err != nil {
		return
	}
	for _, c := range h.members(room) {
		snap := s.SnapshotFor(c.playerID)
		h.send(context.Background(), c, ServerMessage{Type: "state", Room: room, Payload: snap})
	}
}

// broadcast sends the same message to every member.
func (h *Hub) broadcast(room string, msg ServerMessage) {
	for _, c := range h.members(room) {
		h.send(context.Background(), c, msg)
	}
}

func (h *Hub) send(ctx context.Context, c *client, msg ServerMessage) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	if err := wsjson.Write(wctx, c.conn, msg); err != nil {
		log.WithError(err).WithField("player", c.playerID).Debug("websocket write failed")
	}
}

func (h *Hub) sendError(ctx context.Context, c *client, reason, message string) {
	h.send(ctx, c, ServerMessage{Type: "error", Reason: reason, Message: message})
}
