// Package rooms maps join codes to live game sessions.
package rooms

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/nypblockchain/pythongame/internal/game"
)

// codeAlphabet omits easily-confused characters (I, O, 0, 1).
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// codeLength is the length of a room join code.
const codeLength = 6

// ErrRoomNotFound is returned when a code matches no live room.
var ErrRoomNotFound = errors.New("room not found")

// ErrCodeTaken is returned when a requested room code is already in
// use.
var ErrCodeTaken = errors.New("room code already in use")

// RoomInfo is the listing entry for an open room.
type RoomInfo struct {
	Code        string `json:"code"`
	PlayerCount int    `json:"player_count"`
	Started     bool   `json:"started"`
}

// Registry owns every live session, keyed by room code.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*game.Session
	rng   *rand.Rand
}

// NewRegistry creates an empty registry. The rng is injected so tests
// get deterministic codes; nil falls back to a time seed.
func NewRegistry(rng *rand.Rand) *Registry {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Registry{
		rooms: make(map[string]*game.Session),
		rng:   rng,
	}
}

// Create allocates a fresh room. An empty code means generate a
// unique one; a caller-supplied code is used verbatim and rejected
// with ErrCodeTaken if a live room already holds it.
func (r *Registry) Create(code string) (*game.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if code != "" {
		if _, taken := r.rooms[code]; taken {
			return nil, ErrCodeTaken
		}
	} else {
		for {
			code = r.newCode()
			if _, taken := r.rooms[code]; !taken {
				break
			}
		}
	}
	s := game.NewSession(code, rand.New(rand.NewSource(r.rng.Int63())))
	r.rooms[code] = s
	log.WithField("room", code).Info("room created")
	return s, nil
}

// newCode builds a random join code. Lock held.
func (r *Registry) newCode() string {
	b := make([]byte, codeLength)
	for i := range b {
		b[i] = codeAlphabet[r.rng.Intn(len(codeAlphabet))]
	}
	return string(b)
}

// Get looks up a room by code.
func (r *Registry) Get(code string) (*game.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.rooms[code]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return s, nil
}

// Delete removes a room. Missing codes are a no-op.
func (r *Registry) Delete(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rooms[code]; ok {
		delete(r.rooms, code)
		log.WithField("room", code).Info("room deleted")
	}
}

// ListOpen returns rooms still waiting for an opponent.
func (r *Registry) ListOpen() []RoomInfo {
	r.mu.Lock()
	sessions := make([]*game.Session, 0, len(r.rooms))
	for _, s := range r.rooms {
		sessions = append(sessions, s)
	}
	r.mu.Unlock()

	// Session accessors take the session lock, so query them outside
	// the registry lock.
	var out []RoomInfo
	for _, s := range sessions {
		if s.Started() || s.PlayerCount() != 1 {
			continue
		}
		out = append(out, RoomInfo{
			Code:        s.RoomCode,
			PlayerCount: 1,
			Started:     false,
		})
	}
	return out
}

// CleanupFinished drops rooms whose game ended or emptied out, and
// returns how many were removed.
func (r *Registry) CleanupFinished() int {
	r.mu.Lock()
	sessions := make(map[string]*game.Session, len(r.rooms))
	for code, s := range r.rooms {
		sessions[code] = s
	}
	r.mu.Unlock()

	var dead []string
	for code, s := range sessions {
		if s.GameOver() || s.PlayerCount() == 0 {
			dead = append(dead, code)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for _, code := range dead {
		if _, ok := r.rooms[code]; ok {
			delete(r.rooms, code)
			removed++
		}
	}
	if removed > 0 {
		log.WithField("count", removed).Debug("cleaned up finished rooms")
	}
	return removed
}

// Count returns the number of live rooms.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms)
}
