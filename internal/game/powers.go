package game

import (
	"fmt"

	"github.com/nypblockchain/pythongame/internal/legality"
)

// Power names the one-shot abilities granted every fifth turn.
type Power string

const (
	PowerPeek         Power = "peek"
	PowerSwap         Power = "swap"
	PowerMulligan     Power = "mulligan"
	PowerDoublePoints Power = "double_points"
	PowerBlock        Power = "block"
)

// swapCount is how many cards a swap returns to the deck and redraws.
const swapCount = 2

// peekCount is how many of the opponent's cards a peek reveals.
const peekCount = 3

// PowerResult reports the outcome of a UsePower.
type PowerResult struct {
	Success      bool     `json:"success"`
	Reason       Reason   `json:"reason,omitempty"`
	Power        Power    `json:"power,omitempty"`
	OpponentHand []string `json:"opponent_hand,omitempty"`
	NewCards     []string `json:"new_cards,omitempty"`
	Message      string   `json:"message"`
}

// UsePower spends the player's banked power. Using a power does not
// advance the turn; one power per turn. A power that cannot take
// effect fails without being consumed.
func (s *Session) UsePower(playerID string, power Power) PowerResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return PowerResult{Reason: ReasonGameNotStarted, Message: "game has not started yet"}
	}
	if s.over {
		return PowerResult{Reason: ReasonGameOver, Message: "game is already over"}
	}
	p := s.playerByID(playerID)
	if p == nil {
		return PowerResult{Reason: ReasonNotInRoom, Message: "you are not in this room"}
	}
	if s.players[s.currentTurn] != p {
		return PowerResult{Reason: ReasonNotYourTurn, Message: "it's not your turn"}
	}
	if !p.PowerAvailable {
		return PowerResult{Reason: ReasonNoPowerAvailable, Message: "no power available"}
	}
	if p.PowerUsedThisTurn {
		return PowerResult{Reason: ReasonPowerAlreadyUsed, Message: "power already used this turn"}
	}

	res := PowerResult{Power: power}
	opp := s.opponentOf(p)

	switch power {
	case PowerPeek:
		n := min(peekCount, len(opp.Hand))
		res.OpponentHand = append([]string(nil), opp.Hand[:n]...)
		res.Message = fmt.Sprintf("revealed %d of opponent's cards", n)

	case PowerSwap:
		if len(p.Hand) < swapCount {
			return PowerResult{Reason: ReasonInsufficientResources, Message: "not enough cards to swap"}
		}
		if len(s.deck) < swapCount {
			return PowerResult{Reason: ReasonInsufficientResources, Message: "not enough cards in the deck"}
		}
		// Return the swapped-out cards before drawing so they can
		// come straight back.
		for i := 0; i < swapCount; i++ {
			idx := s.rng.Intn(len(p.Hand))
			s.deck = append(s.deck, p.Hand[idx])
			p.Hand = removeAt(p.Hand, idx)
		}
		s.rng.Shuffle(len(s.deck), func(i, j int) {
			s.deck[i], s.deck[j] = s.deck[j], s.deck[i]
		})
		res.NewCards = s.draw(swapCount)
		p.Hand = append(p.Hand, res.NewCards...)
		res.Message = fmt.Sprintf("swapped %d cards", swapCount)

	case PowerMulligan:
		if len(s.deck) == 0 {
			return PowerResult{Reason: ReasonInsufficientResources, Message: "the deck is empty"}
		}
		lctx := s.legalityContext()
		var kept, dead []string
		for _, card := range p.Hand {
			if legality.CanInsert(card, s.played, len(s.played), lctx).Legal {
				kept = append(kept, card)
			} else {
				dead = append(dead, card)
			}
		}
		if len(dead) == 0 {
			return PowerResult{Reason: ReasonInsufficientResources, Message: "every card is already playable"}
		}
		s.discarded += len(dead)
		res.NewCards = s.draw(len(dead))
		p.Hand = append(kept, res.NewCards...)
		res.Message = fmt.Sprintf("replaced %d unplayable cards", len(dead))

	case PowerDoublePoints:
		p.DoublePoints = true
		res.Message = "next card scores double points"

	case PowerBlock:
		opp.Blocked = true
		res.Message = "opponent's next special card is blocked"

	default:
		return PowerResult{Reason: ReasonInvalidPower, Message: fmt.Sprintf("unknown power %q", power)}
	}

	p.PowerAvailable = false
	p.PowerUsedThisTurn = true
	res.Success = true

	s.lastAction = &LastAction{Type: "power", Player: playerID, Effect: string(power)}
	s.logAction(playerID, "use_power", map[string]interface{}{"power": string(power)})
	return res
}
