package bot

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nypblockchain/pythongame/internal/game"
)

// newBotGame seats a human and a bot and starts the game. The bot
// delay is an hour so scheduled pokes never fire inside a test; turns
// are driven by calling act directly.
func newBotGame(t *testing.T, seed int64) (*game.Session, *Bot) {
	t.Helper()
	s := game.NewSession("BOTTST", rand.New(rand.NewSource(seed)))
	require.True(t, s.Join("human", "Alice").Success)
	b := New(s, time.Hour, nil)
	require.True(t, b.Join().Success)
	require.True(t, s.Start().Success)
	return s, b
}

func TestBestCardPrefersPoints(t *testing.T) {
	card, ok := bestCard([]string{"x", "def", "for"})
	require.True(t, ok)
	assert.Equal(t, "def", card, "def is worth 3 points")

	// Specials are a last resort.
	card, ok = bestCard([]string{"Skip", "x"})
	require.True(t, ok)
	assert.Equal(t, "x", card)

	_, ok = bestCard(nil)
	assert.False(t, ok)
}

func TestBotDoesNotActOutOfTurn(t *testing.T) {
	var s *game.Session
	var b *Bot
	for seed := int64(1); ; seed++ {
		s, b = newBotGame(t, seed)
		if s.CurrentPlayer() == "human" {
			break
		}
	}

	before := s.SnapshotFor(b.ID)
	b.act()
	after := s.SnapshotFor(b.ID)
	assert.Equal(t, before.Hand, after.Hand, "bot must not act out of turn")
	assert.Equal(t, "human", s.CurrentPlayer())
}

func TestBotFinishesItsTurn(t *testing.T) {
	var s *game.Session
	var b *Bot
	for seed := int64(1); ; seed++ {
		s, b = newBotGame(t, seed)
		if s.CurrentPlayer() == b.ID {
			break
		}
	}

	// A skip card can hand the turn straight back, so drive act until
	// the turn leaves the bot. The bound guards against a stall.
	for i := 0; i < 50 && !s.GameOver() && s.CurrentPlayer() == b.ID; i++ {
		b.act()
	}
	assert.True(t, s.GameOver() || s.CurrentPlayer() == "human",
		"bot should have played or passed its turn away")
}

func TestBotDoesNotActWhenGameOver(t *testing.T) {
	s, b := newBotGame(t, 1)
	require.True(t, s.Leave("human"), "human forfeits")
	require.True(t, s.GameOver())

	// Both the schedule check and the deferred act are no-ops now.
	b.Poke()
	b.act()
	winner, _ := s.Winner()
	assert.Equal(t, b.ID, winner)
}
