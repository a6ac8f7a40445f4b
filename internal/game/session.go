// Package game owns one room's full mutable state: players, hands,
// deck, played sequence, scores, effects and powers. All operations
// are serialized behind the session mutex; rule violations are
// reported through result structs, never panics or errors.
package game

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/nypblockchain/pythongame/internal/cache"
	"github.com/nypblockchain/pythongame/internal/catalog"
	"github.com/nypblockchain/pythongame/internal/database"
	"github.com/nypblockchain/pythongame/internal/grammar"
	"github.com/nypblockchain/pythongame/internal/legality"
)

const (
	// StartingHandSize is the number of cards dealt to each player.
	StartingHandSize = 7
	// MaxConsecutivePasses is the pass streak that loses the game.
	MaxConsecutivePasses = 3
	// powerEveryNTurns grants a power every Nth turn a player takes.
	powerEveryNTurns = 5
)

// Reason enumerates the recoverable, caller-facing failure codes.
// Every failure leaves the session unchanged.
type Reason string

const (
	ReasonNone                  Reason = ""
	ReasonRoomFull              Reason = "room_full"
	ReasonAlreadyJoined         Reason = "already_joined"
	ReasonNotEnoughPlayers      Reason = "not_enough_players"
	ReasonAlreadyStarted        Reason = "already_started"
	ReasonGameNotStarted        Reason = "game_not_started"
	ReasonGameOver              Reason = "game_over"
	ReasonNotYourTurn           Reason = "not_your_turn"
	ReasonCardNotInHand         Reason = "card_not_in_hand"
	ReasonIllegalMove           Reason = "illegal_move"
	ReasonNoPowerAvailable      Reason = "no_power_available"
	ReasonPowerAlreadyUsed      Reason = "power_already_used_this_turn"
	ReasonInvalidPower          Reason = "invalid_power"
	ReasonInsufficientResources Reason = "insufficient_resources_for_power"
	ReasonHasLegalMoves         Reason = "has_legal_moves"
	ReasonNotInRoom             Reason = "not_in_room"
)

// Win reasons reported alongside the winner.
const (
	WinOpponentCouldNotPlay = "opponent_could_not_play"
	WinDeckExhausted        = "deck_exhausted"
	WinOpponentLeft         = "opponent_left"
)

type playerState struct {
	ID                string
	Name              string
	Hand              []string
	Score             int
	ConsecutivePasses int
	TurnsPlayed       int
	PowerAvailable    bool
	PowerUsedThisTurn bool
	DoublePoints      bool // one-shot, consumed by next scored card
	Blocked           bool // one-shot, cancels next special card
}

// LastAction summarizes the most recent successful action for clients.
type LastAction struct {
	Type   string `json:"type"`
	Player string `json:"player"`
	Card   string `json:"card,omitempty"`
	Effect string `json:"effect,omitempty"`
}

// Session is the aggregate state machine for one room.
type Session struct {
	ID       uuid.UUID
	RoomCode string

	mu               sync.Mutex
	players          []*playerState // join order
	deck             []string
	played           []string
	currentTurn      int
	turnNumber       int
	openParens       int
	wildBridgeBy     string // player id holding the wild bridge, "" if none
	specialsConsumed int
	discarded        int // cards removed from play by discard effects
	started          bool
	over             bool
	winner           string
	winReason        string
	startedAt        time.Time
	lastAction       *LastAction
	actionIndex      int
	rng              *rand.Rand
	log              *log.Entry
}

// NewSession creates an empty session for a room. The rng is injected
// so tests can fix the permutation; nil falls back to a time seed.
func NewSession(roomCode string, rng *rand.Rand) *Session {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	id := uuid.New()
	return &Session{
		ID:       id,
		RoomCode: roomCode,
		rng:      rng,
		log:      log.WithFields(log.Fields{"room": roomCode, "game": id}),
	}
}

// JoinResult reports the outcome of a Join.
type JoinResult struct {
	Success            bool   `json:"success"`
	Reason             Reason `json:"reason,omitempty"`
	PlayersCount       int    `json:"players_count"`
	WaitingForOpponent bool   `json:"waiting_for_opponent"`
}

// Join adds a player to the session.
func (s *Session) Join(playerID, name string) JoinResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.players) >= 2 {
		return JoinResult{Reason: ReasonRoomFull, PlayersCount: len(s.players)}
	}
	if s.playerByID(playerID) != nil {
		return JoinResult{Reason: ReasonAlreadyJoined, PlayersCount: len(s.players)}
	}
	if name == "" {
		name = fmt.Sprintf("Player %d", len(s.players)+1)
	}
	s.players = append(s.players, &playerState{ID: playerID, Name: name})
	s.logAction(playerID, "player_join", map[string]interface{}{"name": name})
	return JoinResult{
		Success:            true,
		PlayersCount:       len(s.players),
		WaitingForOpponent: len(s.players) < 2,
	}
}

// StartResult reports the outcome of a Start.
type StartResult struct {
	Success     bool   `json:"success"`
	Reason      Reason `json:"reason,omitempty"`
	FirstPlayer string `json:"first_player,omitempty"`
}

// Start deals hands, shuffles the deck and picks the first player.
// One-shot: a second call is a failed no-op.
func (s *Session) Start() StartResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.players) != 2 {
		return StartResult{Reason: ReasonNotEnoughPlayers}
	}
	if s.started {
		return StartResult{Reason: ReasonAlreadyStarted}
	}

	s.deck = catalog.BuildDeck()
	s.rng.Shuffle(len(s.deck), func(i, j int) {
		s.deck[i], s.deck[j] = s.deck[j], s.deck[i]
	})
	for _, p := range s.players {
		p.Hand = s.draw(StartingHandSize)
	}
	s.currentTurn = s.rng.Intn(2)
	s.turnNumber = 1
	s.started = true
	s.startedAt = time.Now()

	first := s.players[s.currentTurn].ID
	s.log.WithField("first", first).Info("game started")
	s.logAction("", "game_start", map[string]interface{}{"first": first})
	return StartResult{Success: true, FirstPlayer: first}
}

// PlayResult reports the outcome of a Play.
type PlayResult struct {
	Success         bool           `json:"success"`
	Reason          Reason         `json:"reason,omitempty"`
	Detail          string         `json:"detail,omitempty"` // legality sub-reason
	PointsEarned    int            `json:"points_earned"`
	Effect          catalog.Effect `json:"-"`
	EffectName      string         `json:"effect,omitempty"`
	EffectCancelled bool           `json:"effect_cancelled,omitempty"`
	Message         string         `json:"message"`
	GameOver        bool           `json:"game_over"`
	Winner          string         `json:"winner,omitempty"`
}

// Play attempts to play a card from the player's hand, inserting it
// at position (nil or len(sequence) means append). Validation happens
// up front; state mutates only after every check passes.
func (s *Session) Play(playerID, card string, position *int) PlayResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return PlayResult{Reason: ReasonGameNotStarted, Message: "game has not started yet"}
	}
	if s.over {
		return PlayResult{Reason: ReasonGameOver, Message: "game is already over"}
	}
	p := s.playerByID(playerID)
	if p == nil {
		return PlayResult{Reason: ReasonNotInRoom, Message: "you are not in this room"}
	}
	if s.players[s.currentTurn] != p {
		return PlayResult{Reason: ReasonNotYourTurn, Message: "it's not your turn"}
	}
	if indexOf(p.Hand, card) < 0 {
		return PlayResult{Reason: ReasonCardNotInHand, Message: "you don't have that card"}
	}
	pos := len(s.played)
	if position != nil {
		pos = *position
	}
	verdict := legality.CanInsert(card, s.played, pos, s.legalityContext())
	if !verdict.Legal {
		return PlayResult{
			Reason:  ReasonIllegalMove,
			Detail:  verdict.Reason,
			Message: fmt.Sprintf("cannot play %q here: %s", card, verdict.Reason),
		}
	}

	// Validated; mutate.
	p.Hand = removeAt(p.Hand, indexOf(p.Hand, card))
	p.ConsecutivePasses = 0

	res := PlayResult{Success: true}
	effect := catalog.EffectOf(card)
	res.Effect = effect
	res.EffectName = effect.String()

	if effect != catalog.EffectNone {
		s.specialsConsumed++
		if p.Blocked {
			// Block cancels the whole effect, including the wild
			// bridge a Wild would have set.
			p.Blocked = false
			if effect != catalog.EffectWild {
				s.wildBridgeBy = ""
			}
			res.EffectCancelled = true
			res.Message = fmt.Sprintf("%q was blocked", card)
		} else {
			res.Message = s.applyEffect(p, effect)
		}
	} else {
		s.played = splice(s.played, pos, card)
		points := catalog.PointsOf(card)
		if p.DoublePoints {
			points *= 2
			p.DoublePoints = false
		}
		p.Score += points
		s.wildBridgeBy = ""
		s.openParens = grammar.OpenParenCount(s.played)
		res.PointsEarned = points
		res.Message = fmt.Sprintf("played %q for %d points", card, points)
	}

	s.lastAction = &LastAction{Type: "play", Player: playerID, Card: card, Effect: res.EffectName}
	s.logAction(playerID, "play_card", map[string]interface{}{
		"card": card, "position": pos, "points": res.PointsEarned, "effect": res.EffectName,
	})

	s.checkDeckExhaustion()
	if s.over {
		res.GameOver = true
		res.Winner = s.winner
		return res
	}
	if effect != catalog.EffectSkip || res.EffectCancelled {
		s.advanceTurn()
	}
	return res
}

// applyEffect performs a non-blocked special effect. Lock held.
func (s *Session) applyEffect(p *playerState, effect catalog.Effect) string {
	opp := s.opponentOf(p)
	switch effect {
	case catalog.EffectDrawTwo:
		drawn := s.draw(2)
		opp.Hand = append(opp.Hand, drawn...)
		s.wildBridgeBy = ""
		return fmt.Sprintf("opponent draws %d cards", len(drawn))
	case catalog.EffectDiscardTwo:
		n := min(2, len(opp.Hand))
		for i := 0; i < n; i++ {
			idx := s.rng.Intn(len(opp.Hand))
			opp.Hand = removeAt(opp.Hand, idx)
			s.discarded++
		}
		s.wildBridgeBy = ""
		return fmt.Sprintf("opponent discards %d cards", n)
	case catalog.EffectSkip:
		s.wildBridgeBy = ""
		return "opponent's turn skipped"
	case catalog.EffectWild:
		s.wildBridgeBy = p.ID
		return "wild card played, any card can follow"
	}
	return ""
}

// PassResult reports the outcome of a Pass.
type PassResult struct {
	Success  bool   `json:"success"`
	Reason   Reason `json:"reason,omitempty"`
	DrewCard string `json:"drew_card,omitempty"`
	Message  string `json:"message"`
	GameOver bool   `json:"game_over"`
	Winner   string `json:"winner,omitempty"`
}

// Pass skips the turn. Only legal when the player has no playable
// card; draws one card when the deck allows. Three consecutive passes
// lose the game on the spot.
func (s *Session) Pass(playerID string) PassResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return PassResult{Reason: ReasonGameNotStarted, Message: "game has not started yet"}
	}
	if s.over {
		return PassResult{Reason: ReasonGameOver, Message: "game is already over"}
	}
	p := s.playerByID(playerID)
	if p == nil {
		return PassResult{Reason: ReasonNotInRoom, Message: "you are not in this room"}
	}
	if s.players[s.currentTurn] != p {
		return PassResult{Reason: ReasonNotYourTurn, Message: "it's not your turn"}
	}
	if playable := legality.PlayableCards(p.Hand, s.played, s.legalityContext()); len(playable) > 0 {
		return PassResult{Reason: ReasonHasLegalMoves, Message: "you have valid cards to play"}
	}

	res := PassResult{Success: true, Message: "passed"}
	if drawn := s.draw(1); len(drawn) == 1 {
		p.Hand = append(p.Hand, drawn[0])
		res.DrewCard = drawn[0]
		res.Message = fmt.Sprintf("drew a card: %s", drawn[0])
	}
	p.ConsecutivePasses++

	s.lastAction = &LastAction{Type: "pass", Player: playerID}
	s.logAction(playerID, "pass_turn", map[string]interface{}{
		"passes": p.ConsecutivePasses, "drew": res.DrewCard != "",
	})

	if p.ConsecutivePasses >= MaxConsecutivePasses {
		// Overrides every other win check.
		s.finish(s.opponentOf(p).ID, WinOpponentCouldNotPlay)
	} else {
		s.checkDeckExhaustion()
	}
	s.advanceTurn()

	if s.over {
		res.GameOver = true
		res.Winner = s.winner
	}
	return res
}

// Leave removes a player and all their state. Leaving an in-progress
// game forfeits it to the opponent. Returns false if the player was
// not in the room.
func (s *Session) Leave(playerID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, p := range s.players {
		if p.ID == playerID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	leaving := s.players[idx]
	s.players = append(s.players[:idx], s.players[idx+1:]...)

	if s.started && !s.over && len(s.players) == 1 {
		s.finish(s.players[0].ID, WinOpponentLeft)
	}
	if s.currentTurn >= len(s.players) {
		s.currentTurn = 0
	}
	if s.wildBridgeBy == leaving.ID {
		s.wildBridgeBy = ""
	}
	s.logAction(playerID, "player_leave", nil)
	return true
}

// checkDeckExhaustion applies win rule 2. Lock held. Evaluated after
// every action so the result is re-confirmed consistently.
func (s *Session) checkDeckExhaustion() {
	if s.over || len(s.deck) > 0 || len(s.players) != 2 {
		return
	}
	a, b := s.players[0], s.players[1]
	switch {
	case a.Score > b.Score:
		s.finish(a.ID, WinDeckExhausted)
	case b.Score > a.Score:
		s.finish(b.ID, WinDeckExhausted)
	case len(a.Hand) < len(b.Hand):
		s.finish(a.ID, WinDeckExhausted)
	case len(b.Hand) < len(a.Hand):
		s.finish(b.ID, WinDeckExhausted)
	default:
		// Full tie: the first player in join order wins. Documented
		// deterministic rule, not a random tiebreak.
		s.finish(a.ID, WinDeckExhausted)
	}
}

// finish marks the game over and persists the summary. Lock held.
func (s *Session) finish(winner, reason string) {
	if s.over {
		return
	}
	s.over = true
	s.winner = winner
	s.winReason = reason
	s.log.WithFields(log.Fields{"winner": winner, "reason": reason}).Info("game over")
	s.logAction("", "game_end", map[string]interface{}{"winner": winner, "reason": reason})

	summary := database.GameSummary{
		RoomCode: s.RoomCode,
		GameType: "pvp",
		Winner:   winner,
		Duration: time.Since(s.startedAt),
		Players:  make([]string, 0, len(s.players)),
		Names:    make(map[string]string, len(s.players)),
		Scores:   make(map[string]int, len(s.players)),
	}
	for _, p := range s.players {
		summary.Players = append(summary.Players, p.ID)
		summary.Names[p.ID] = p.Name
		summary.Scores[p.ID] = p.Score
	}
	if database.Pool != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := database.SaveFinishedGame(ctx, summary); err != nil {
				s.log.WithError(err).Error("failed to persist finished game")
			}
		}()
	}
}

// advanceTurn hands the turn to the other player, crediting the
// finished turn and granting a power on every Nth turn taken.
// Lock held.
func (s *Session) advanceTurn() {
	if len(s.players) != 2 {
		return
	}
	s.players[s.currentTurn].TurnsPlayed++
	s.currentTurn = (s.currentTurn + 1) % 2
	s.turnNumber++

	next := s.players[s.currentTurn]
	next.PowerUsedThisTurn = false
	if next.TurnsPlayed > 0 && next.TurnsPlayed%powerEveryNTurns == 0 && !next.PowerAvailable {
		next.PowerAvailable = true
		s.logAction(next.ID, "power_granted", nil)
	}
}

func (s *Session) legalityContext() legality.Context {
	return legality.Context{
		WildBridgeActive: s.wildBridgeBy != "",
		OpenParenCount:   s.openParens,
	}
}

// draw removes up to n cards from the top of the deck.
func (s *Session) draw(n int) []string {
	if n > len(s.deck) {
		n = len(s.deck)
	}
	drawn := make([]string, n)
	for i := 0; i < n; i++ {
		drawn[i] = s.deck[len(s.deck)-1]
		s.deck = s.deck[:len(s.deck)-1]
	}
	return drawn
}

func (s *Session) playerByID(id string) *playerState {
	for _, p := range s.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (s *Session) opponentOf(p *playerState) *playerState {
	for _, other := range s.players {
		if other != p {
			return other
		}
	}
	return nil
}

// logAction publishes an action record to the historian queue.
// Lock held; the publish itself runs asynchronously.
func (s *Session) logAction(actorID, actionType string, payload map[string]interface{}) {
	s.actionIndex++
	if payload == nil {
		payload = map[string]interface{}{}
	}
	rec := cache.GameActionRecord{
		GameID:      s.ID,
		RoomCode:    s.RoomCode,
		ActionIndex: s.actionIndex,
		ActorID:     actorID,
		ActionType:  actionType,
		Payload:     payload,
		Timestamp:   time.Now().UnixMilli(),
	}
	if cache.Rdb == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := cache.PublishGameAction(ctx, rec); err != nil {
			s.log.WithError(err).WithField("action", rec.ActionType).Error("failed to publish action")
		}
	}()
}

func indexOf(hand []string, card string) int {
	for i, c := range hand {
		if c == card {
			return i
		}
	}
	return -1
}

func removeAt(hand []string, idx int) []string {
	return append(hand[:idx], hand[idx+1:]...)
}

func splice(seq []string, pos int, card string) []string {
	out := make([]string, 0, len(seq)+1)
	out = append(out, seq[:pos]...)
	out = append(out, card)
	out = append(out, seq[pos:]...)
	return out
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
