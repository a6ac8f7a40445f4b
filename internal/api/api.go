// Package api exposes the small HTTP surface next to the websocket:
// account registration and login, guest tokens, the leaderboard and a
// health probe.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/nypblockchain/pythongame/internal/auth"
	"github.com/nypblockchain/pythongame/internal/database"
	"github.com/nypblockchain/pythongame/internal/rooms"
)

// Handler bundles the HTTP endpoints.
type Handler struct {
	auth     *auth.Service
	registry *rooms.Registry
}

// NewHandler creates the API handler.
func NewHandler(authSvc *auth.Service, registry *rooms.Registry) *Handler {
	return &Handler{auth: authSvc, registry: registry}
}

// Register mounts all routes on the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/register", h.handleRegister)
	mux.HandleFunc("POST /api/login", h.handleLogin)
	mux.HandleFunc("POST /api/guest", h.handleGuest)
	mux.HandleFunc("GET /api/leaderboard", h.handleLeaderboard)
	mux.HandleFunc("GET /api/rooms", h.handleRooms)
	mux.HandleFunc("GET /healthz", h.handleHealth)
}

type credentials struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name,omitempty"`
}

type tokenResponse struct {
	PlayerID    string `json:"player_id"`
	DisplayName string `json:"display_name"`
	Token       string `json:"token"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if creds.Username == "" || creds.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}
	if creds.DisplayName == "" {
		creds.DisplayName = creds.Username
	}
	hash, err := auth.HashPassword(creds.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not process password")
		return
	}
	u, err := database.CreateUser(r.Context(), creds.Username, creds.DisplayName, hash)
	if errors.Is(err, database.ErrUsernameTaken) {
		writeError(w, http.StatusConflict, "username already taken")
		return
	}
	if err != nil {
		log.WithError(err).Error("register failed")
		writeError(w, http.StatusServiceUnavailable, "registration unavailable")
		return
	}
	tok, err := h.auth.IssueToken(u.ID, u.DisplayName, false)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not issue token")
		return
	}
	writeJSON(w, http.StatusCreated, tokenResponse{
		PlayerID: u.ID.String(), DisplayName: u.DisplayName, Token: tok,
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	u, err := database.GetUserByUsername(r.Context(), creds.Username)
	if errors.Is(err, database.ErrUserNotFound) {
		writeError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}
	if err != nil {
		log.WithError(err).Error("login lookup failed")
		writeError(w, http.StatusServiceUnavailable, "login unavailable")
		return
	}
	if err := auth.CheckPassword(u.PasswordHash, creds.Password); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}
	tok, err := h.auth.IssueToken(u.ID, u.DisplayName, false)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not issue token")
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{
		PlayerID: u.ID.String(), DisplayName: u.DisplayName, Token: tok,
	})
}

func (h *Handler) handleGuest(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	if body.Name == "" {
		body.Name = "Guest"
	}
	id, tok, err := h.auth.IssueGuestToken(body.Name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not issue token")
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{
		PlayerID: id.String(), DisplayName: body.Name, Token: tok,
	})
}

func (h *Handler) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := database.GetLeaderboard(r.Context(), 20)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "leaderboard unavailable")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) handleRooms(w http.ResponseWriter, r *http.Request) {
	open := h.registry.ListOpen()
	if open == nil {
		open = []rooms.RoomInfo{}
	}
	writeJSON(w, http.StatusOK, open)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Debug("response encode failed")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
