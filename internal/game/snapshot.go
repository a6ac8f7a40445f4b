package game

import (
	"github.com/nypblockchain/pythongame/internal/grammar"
	"github.com/nypblockchain/pythongame/internal/legality"
)

// PlayerView is the opponent as seen by the snapshot's viewer: hand
// contents hidden, only the count exposed.
type PlayerView struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	HandCount         int    `json:"hand_count"`
	Score             int    `json:"score"`
	ConsecutivePasses int    `json:"consecutive_passes"`
	PowerAvailable    bool   `json:"power_available"`
}

// Snapshot is one player's complete view of the session. Everything a
// client renders comes from here; nothing in it leaks the opponent's
// hand.
type Snapshot struct {
	RoomCode         string      `json:"room_code"`
	Started          bool        `json:"started"`
	GameOver         bool        `json:"game_over"`
	Winner           string      `json:"winner,omitempty"`
	WinReason        string      `json:"win_reason,omitempty"`
	TurnNumber       int         `json:"turn_number"`
	CurrentPlayer    string      `json:"current_player,omitempty"`
	YourTurn         bool        `json:"your_turn"`
	Hand             []string    `json:"hand"`
	PlayableCards    []string    `json:"playable_cards"`
	Sequence         []string    `json:"sequence"`
	RenderedCode     string      `json:"rendered_code"`
	CompleteProgram  bool        `json:"complete_program"`
	DeckCount        int         `json:"deck_count"`
	Score            int         `json:"score"`
	PowerAvailable   bool        `json:"power_available"`
	DoublePointsNext bool        `json:"double_points_next"`
	WildActive       bool        `json:"wild_active"`
	Opponent         *PlayerView `json:"opponent,omitempty"`
	LastAction       *LastAction `json:"last_action,omitempty"`
}

// SnapshotFor builds the viewer-specific state. Unknown viewers get a
// spectator view with an empty hand.
func (s *Session) SnapshotFor(playerID string) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		RoomCode:        s.RoomCode,
		Started:         s.started,
		GameOver:        s.over,
		Winner:          s.winner,
		WinReason:       s.winReason,
		TurnNumber:      s.turnNumber,
		Sequence:        append([]string(nil), s.played...),
		RenderedCode:    grammar.Render(s.played),
		CompleteProgram: grammar.IsCompleteProgram(s.played),
		DeckCount:       len(s.deck),
		WildActive:      s.wildBridgeBy != "",
		LastAction:      s.lastAction,
		Hand:            []string{},
		PlayableCards:   []string{},
	}
	if s.started && !s.over && len(s.players) == 2 {
		snap.CurrentPlayer = s.players[s.currentTurn].ID
	}

	p := s.playerByID(playerID)
	if p != nil {
		snap.Hand = append([]string(nil), p.Hand...)
		snap.PlayableCards = legality.PlayableCards(p.Hand, s.played, s.legalityContext())
		snap.YourTurn = snap.CurrentPlayer == p.ID
		snap.Score = p.Score
		snap.PowerAvailable = p.PowerAvailable
		snap.DoublePointsNext = p.DoublePoints
		if opp := s.opponentOf(p); opp != nil {
			snap.Opponent = &PlayerView{
				ID:                opp.ID,
				Name:              opp.Name,
				HandCount:         len(opp.Hand),
				Score:             opp.Score,
				ConsecutivePasses: opp.ConsecutivePasses,
				PowerAvailable:    opp.PowerAvailable,
			}
		}
	}
	return snap
}

// Accessors used by the room registry and transports. Each takes the
// lock; don't call them from inside session methods.

func (s *Session) PlayerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.players)
}

func (s *Session) Started() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

func (s *Session) GameOver() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.over
}

func (s *Session) Winner() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.winner, s.winReason
}

func (s *Session) HasPlayer(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playerByID(id) != nil
}

// PlayerIDs returns the player ids in join order.
func (s *Session) PlayerIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.players))
	for _, p := range s.players {
		ids = append(ids, p.ID)
	}
	return ids
}

// CurrentPlayer returns the id of the player whose turn it is, or ""
// when the game is not in progress.
func (s *Session) CurrentPlayer() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started || s.over || len(s.players) != 2 {
		return ""
	}
	return s.players[s.currentTurn].ID
}
