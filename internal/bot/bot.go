// Package bot provides a simple computer opponent for solo rooms. It
// reacts to state changes with a human-feeling delay and re-validates
// everything when the timer fires, since the game may have moved on.
package bot

import (
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/nypblockchain/pythongame/internal/catalog"
	"github.com/nypblockchain/pythongame/internal/game"
)

// Bot plays one seat of a session.
type Bot struct {
	ID      string
	Name    string
	session *game.Session
	delay   time.Duration
	notify  func() // called after the bot acts so the transport can broadcast
	log     *log.Entry
}

// New creates a bot bound to a session. notify may be nil.
func New(session *game.Session, delay time.Duration, notify func()) *Bot {
	id := uuid.New().String()
	return &Bot{
		ID:      id,
		Name:    "PyBot",
		session: session,
		delay:   delay,
		notify:  notify,
		log:     log.WithFields(log.Fields{"bot": id, "room": session.RoomCode}),
	}
}

// Join seats the bot in its session.
func (b *Bot) Join() game.JoinResult {
	return b.session.Join(b.ID, b.Name)
}

// Poke schedules a move if it is (currently) the bot's turn. Call it
// after every state change; spurious calls are cheap no-ops. The
// decision is deferred by the configured delay and re-checked when
// the timer fires.
func (b *Bot) Poke() {
	if b.session.GameOver() || b.session.CurrentPlayer() != b.ID {
		return
	}
	time.AfterFunc(b.delay, b.act)
}

// act re-validates and takes one action. The turn may have changed or
// the game may have ended between scheduling and firing; both make
// this a no-op.
func (b *Bot) act() {
	if b.session.GameOver() || b.session.CurrentPlayer() != b.ID {
		return
	}

	snap := b.session.SnapshotFor(b.ID)
	if card, ok := bestCard(snap.PlayableCards); ok {
		res := b.session.Play(b.ID, card, nil)
		if !res.Success {
			// Lost a race with a concurrent action; try again later.
			b.log.WithField("reason", res.Reason).Debug("play rejected, rescheduling")
			b.Poke()
			return
		}
		b.log.WithField("card", card).Debug("bot played")
	} else {
		res := b.session.Pass(b.ID)
		if !res.Success {
			b.log.WithField("reason", res.Reason).Debug("pass rejected, rescheduling")
			b.Poke()
			return
		}
		b.log.Debug("bot passed")
	}

	if b.notify != nil {
		b.notify()
	}
	// Skip cards hand the turn straight back.
	b.Poke()
}

// bestCard picks the highest-point playable card, with specials last
// so the bot banks sequence points first.
func bestCard(playable []string) (string, bool) {
	best := ""
	bestScore := -1
	for _, card := range playable {
		score := catalog.PointsOf(card)
		if catalog.IsSpecial(card) {
			score = 0
		}
		if score > bestScore {
			best = card
			bestScore = score
		}
	}
	return best, best != ""
}
