package api

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nypblockchain/pythongame/internal/auth"
	"github.com/nypblockchain/pythongame/internal/rooms"
)

func newTestMux(t *testing.T) (*http.ServeMux, *rooms.Registry, *auth.Service) {
	t.Helper()
	svc, err := auth.NewService("test-secret")
	require.NoError(t, err)
	registry := rooms.NewRegistry(rand.New(rand.NewSource(1)))
	mux := http.NewServeMux()
	NewHandler(svc, registry).Register(mux)
	return mux, registry, svc
}

func TestHealth(t *testing.T) {
	mux, _, _ := newTestMux(t)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestGuestTokenEndpoint(t *testing.T) {
	mux, _, svc := newTestMux(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/guest", strings.NewReader(`{"name":"Alice"}`))
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Alice")

	// The issued token must verify against the same service.
	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	_, name, err := svc.VerifyToken(body.Token)
	require.NoError(t, err)
	assert.Equal(t, "Alice", name)
}

func TestRoomsListing(t *testing.T) {
	mux, registry, _ := newTestMux(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/rooms", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String(), "no rooms yet")

	s, err := registry.Create("")
	require.NoError(t, err)
	s.Join("p1", "Alice")

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/rooms", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), s.RoomCode)
}

func TestRegisterWithoutDatabase(t *testing.T) {
	mux, _, _ := newTestMux(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/register",
		strings.NewReader(`{"username":"alice","password":"hunter2"}`))
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRegisterValidation(t *testing.T) {
	mux, _, _ := newTestMux(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/register", strings.NewReader(`{"username":""}`))
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
