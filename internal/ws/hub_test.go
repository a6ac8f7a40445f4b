package ws

import (
	"context"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nypblockchain/pythongame/internal/auth"
	"github.com/nypblockchain/pythongame/internal/rooms"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	svc, err := auth.NewService("test-secret")
	require.NoError(t, err)
	registry := rooms.NewRegistry(rand.New(rand.NewSource(1)))
	return NewHub(registry, svc, false, time.Millisecond)
}

func TestIdentifyMintsGuestToken(t *testing.T) {
	h := newTestHub(t)
	c := &client{}

	tok, err := h.identify(c, ClientMessage{Name: "Alice"})
	require.NoError(t, err)
	assert.NotEmpty(t, tok)
	assert.NotEmpty(t, c.playerID)
	assert.Equal(t, "Alice", c.name)

	// The minted token resolves back to the same identity.
	c2 := &client{}
	_, err = h.identify(c2, ClientMessage{Token: tok})
	require.NoError(t, err)
	assert.Equal(t, c.playerID, c2.playerID)
	assert.Equal(t, "Alice", c2.name)
}

func TestIdentifyDefaultsGuestName(t *testing.T) {
	h := newTestHub(t)
	c := &client{}
	_, err := h.identify(c, ClientMessage{})
	require.NoError(t, err)
	assert.Equal(t, "Guest", c.name)
}

func TestIdentifyRejectsBadToken(t *testing.T) {
	h := newTestHub(t)
	c := &client{}
	_, err := h.identify(c, ClientMessage{Token: "garbage"})
	assert.Error(t, err)
	assert.Empty(t, c.playerID)
}

// dialTestHub serves the hub over a test server and opens one client
// connection to it.
func dialTestHub(t *testing.T, h *Hub, ctx context.Context) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(h.ServeWS))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

func TestGetStateRoundTrip(t *testing.T) {
	h := newTestHub(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn := dialTestHub(t, h, ctx)

	require.NoError(t, wsjson.Write(ctx, conn, ClientMessage{Type: "create_room", Name: "Alice"}))
	var joined ServerMessage
	require.NoError(t, wsjson.Read(ctx, conn, &joined))
	require.Equal(t, "joined", joined.Type)
	require.NotEmpty(t, joined.Room)

	require.NoError(t, wsjson.Write(ctx, conn, ClientMessage{Type: "get_state"}))
	var state ServerMessage
	require.NoError(t, wsjson.Read(ctx, conn, &state))
	assert.Equal(t, "state", state.Type)
	assert.Equal(t, joined.Room, state.Room)

	payload, ok := state.Payload.(map[string]interface{})
	require.True(t, ok, "state payload should be a snapshot object")
	assert.Equal(t, joined.Room, payload["room_code"])
}

func TestGetStateOutsideRoomIsAnError(t *testing.T) {
	h := newTestHub(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn := dialTestHub(t, h, ctx)

	require.NoError(t, wsjson.Write(ctx, conn, ClientMessage{Type: "get_state"}))
	var msg ServerMessage
	require.NoError(t, wsjson.Read(ctx, conn, &msg))
	assert.Equal(t, "error", msg.Type)
	assert.Equal(t, "not_in_room", msg.Reason)
}

func TestRemoveFromRoomForfeitsAndCleansUp(t *testing.T) {
	h := newTestHub(t)
	s, err := h.registry.Create("")
	require.NoError(t, err)

	c1 := &client{playerID: "p1", name: "Alice"}
	c2 := &client{playerID: "p2", name: "Bob"}
	require.True(t, s.Join("p1", "Alice").Success)
	require.True(t, s.Join("p2", "Bob").Success)
	h.addClient(c1, s.RoomCode)
	h.addClient(c2, s.RoomCode)
	require.True(t, s.Start().Success)

	h.removeFromRoom(c1)
	assert.True(t, s.GameOver())
	winner, _ := s.Winner()
	assert.Equal(t, "p2", winner)

	// Last member out drops the room entirely.
	h.removeFromRoom(c2)
	_, err = h.registry.Get(s.RoomCode)
	assert.ErrorIs(t, err, rooms.ErrRoomNotFound)
}
