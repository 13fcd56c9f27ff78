package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omarshaarawi/gmwiki/internal/config"
	"github.com/omarshaarawi/gmwiki/internal/models"
	"github.com/omarshaarawi/gmwiki/internal/repository/memory"
)

type fakeDirectory struct {
	players  []models.PlayerSummary
	profiles map[string]*models.PlayerProfile
}

func (f *fakeDirectory) ListGrandmasters(context.Context) ([]models.PlayerSummary, error) {
	return f.players, nil
}

func (f *fakeDirectory) GetPlayerProfile(_ context.Context, username string) (*models.PlayerProfile, error) {
	if username == "flaky" {
		return nil, errors.New("upstream unavailable")
	}
	p, ok := f.profiles[username]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakeDirectory) GetPlayerStats(_ context.Context, username string) *models.PlayerStats {
	if username != "hikaru" {
		return nil
	}
	rating := 3300
	return &models.PlayerStats{Blitz: &models.GameModeStats{Last: &models.RatingSnapshot{Rating: &rating}}}
}

func (f *fakeDirectory) GetCountryInfo(context.Context, string) *models.Country {
	return &models.Country{Code: "US", Name: "United States"}
}

type manualTicker struct {
	mu    sync.Mutex
	tasks map[int]func()
	next  int
}

func (m *manualTicker) Every(_ time.Duration, task func()) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tasks == nil {
		m.tasks = map[int]func(){}
	}
	id := m.next
	m.next++
	m.tasks[id] = task
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.tasks, id)
	}, nil
}

func (m *manualTicker) active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

func (m *manualTicker) fire() {
	m.mu.Lock()
	var tasks []func()
	for _, t := range m.tasks {
		tasks = append(tasks, t)
	}
	m.mu.Unlock()
	for _, t := range tasks {
		t()
	}
}

func followers(n int) *int { return &n }

type testEnv struct {
	handler  *Handler
	ticker   *manualTicker
	sessions *memory.Repository
	server   *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	lastOnline := time.Now().Add(-time.Hour - time.Minute).Unix()
	dir := &fakeDirectory{
		players: []models.PlayerSummary{
			{Username: "magnuscarlsen", DisplayName: "Magnus Carlsen", FollowerCount: followers(120000), Verified: true},
			{Username: "hikaru", DisplayName: "Hikaru Nakamura", FollowerCount: followers(150000), Verified: true},
			{Username: "firouzja2003", FollowerCount: followers(40000)},
		},
		profiles: map[string]*models.PlayerProfile{
			"hikaru": {
				PlayerSummary: models.PlayerSummary{
					PlayerID:    15448422,
					Username:    "hikaru",
					DisplayName: "Hikaru Nakamura",
					Title:       "GM",
					LastOnline:  &lastOnline,
					League:      "Legend",
					Verified:    true,
				},
				CountryReferenceURL: "https://api.chess.com/pub/country/US",
			},
			"offline": {
				PlayerSummary: models.PlayerSummary{Username: "offline"},
			},
		},
	}

	ticker := &manualTicker{}
	sessions := memory.NewRepository()
	h, err := NewHandler(dir, ticker, sessions, config.HTTP{APIRateLimit: 1000, CORSOrigins: []string{"*"}})
	require.NoError(t, err)

	srv := httptest.NewServer(h.Router())
	t.Cleanup(srv.Close)
	return &testEnv{handler: h, ticker: ticker, sessions: sessions, server: srv}
}

func (e *testEnv) get(t *testing.T, path string) (int, string) {
	t.Helper()
	resp, err := http.Get(e.server.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t)
	status, body := env.get(t, "/health")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"status":"ok"}`, body)
}

func TestListPage(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.get(t, "/?sort=followerCount&dir=desc")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Total Grandmasters<strong>3</strong>")
	assert.Contains(t, body, "Verified<strong>2</strong>")
	hikaru := strings.Index(body, `href="/profile/hikaru"`)
	magnus := strings.Index(body, `href="/profile/magnuscarlsen"`)
	require.NotEqual(t, -1, hikaru)
	require.NotEqual(t, -1, magnus)
	assert.Less(t, hikaru, magnus)
	assert.Contains(t, body, "150,000")

	status, body = env.get(t, "/?q=nobody")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "No Grandmasters found")
	assert.Contains(t, body, "Showing in List<strong>0</strong>")
}

func TestListPage_InvalidQuery(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.get(t, "/?sort=rating")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body, "invalid sort parameter")

	status, _ = env.get(t, "/?dir=up")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestProfilePage(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.get(t, "/profile/hikaru")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Hikaru Nakamura")
	assert.Contains(t, body, "United States")
	assert.Contains(t, body, `class="badge league-legend"`)
	assert.Contains(t, body, "Back to Grandmasters")
	assert.Contains(t, body, `data-clock="/profile/hikaru/clock"`)
	assert.Contains(t, body, "3300")
	assert.Equal(t, 0, env.sessions.Len())

	status, body = env.get(t, "/profile/ghost")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, body, "Player not found")

	status, _ = env.get(t, "/profile/flaky")
	assert.Equal(t, http.StatusBadGateway, status)
}

func TestListPlayersAPI(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.get(t, "/api/v1/players?q=HIK")
	require.Equal(t, http.StatusOK, status)

	var resp playerListResponse
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "hikaru", resp.Items[0].Username)
	assert.Equal(t, 3, resp.Summary.Total)
	assert.Equal(t, 1, resp.Summary.Showing)
	assert.Equal(t, 2, resp.Summary.Verified)
	assert.Empty(t, resp.Suggestions)

	status, body = env.get(t, "/api/v1/players?q=hikaro")
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	assert.Empty(t, resp.Items)
	assert.Equal(t, []string{"hikaru"}, resp.Suggestions)

	status, body = env.get(t, "/api/v1/players?dir=sideways")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.JSONEq(t, `{"error":"invalid dir parameter"}`, body)
}

func TestGetPlayerAPI(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.get(t, "/api/v1/players/hikaru")
	require.Equal(t, http.StatusOK, status)

	var resp playerResponse
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	require.NotNil(t, resp.Profile)
	assert.Equal(t, int64(15448422), resp.Profile.PlayerID)
	assert.Equal(t, "US", resp.Profile.CountryCode)
	require.NotNil(t, resp.Stats)
	assert.Regexp(t, `^01:0[01]:\d{2}$`, resp.Elapsed)

	status, body = env.get(t, "/api/v1/players/ghost")
	assert.Equal(t, http.StatusNotFound, status)
	assert.JSONEq(t, `{"error":"player not found"}`, body)

	status, _ = env.get(t, "/api/v1/players/flaky")
	assert.Equal(t, http.StatusBadGateway, status)
}

func dialClock(t *testing.T, env *testEnv, username string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/profile/" + username + "/clock"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readClock(t *testing.T, conn *websocket.Conn) clockMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg clockMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestProfileClock(t *testing.T) {
	env := newTestEnv(t)
	conn := dialClock(t, env, "hikaru")

	first := readClock(t, conn)
	assert.Regexp(t, `^01:0[01]:\d{2}$`, first.Elapsed)
	require.Equal(t, 1, env.ticker.active())
	assert.Equal(t, 1, env.sessions.Len())

	env.ticker.fire()
	second := readClock(t, conn)
	assert.Regexp(t, `^01:0[01]:\d{2}$`, second.Elapsed)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool {
		return env.sessions.Len() == 0 && env.ticker.active() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestProfileClock_NoLastOnlineCloses(t *testing.T) {
	env := newTestEnv(t)
	conn := dialClock(t, env, "offline")

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "unexpected error: %v", err)
	require.Eventually(t, func() bool { return env.sessions.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, env.ticker.active())
}

func TestProfileClock_ClosedOnShutdown(t *testing.T) {
	env := newTestEnv(t)
	conn := dialClock(t, env, "hikaru")
	readClock(t, conn)

	assert.Equal(t, 1, env.sessions.CloseAll())
	assert.Equal(t, 0, env.ticker.active())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "unexpected error: %v", err)
}

func TestUsernameIsPathDecoded(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.get(t, "/profile/%68ikaru")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Hikaru Nakamura")

	status, body = env.get(t, "/api/v1/players/%68ikaru")
	require.Equal(t, http.StatusOK, status)
	var resp playerResponse
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	require.NotNil(t, resp.Profile)
	assert.Equal(t, "hikaru", resp.Profile.Username)

	conn := dialClock(t, env, "%68ikaru")
	assert.Regexp(t, `^01:0[01]:\d{2}$`, readClock(t, conn).Elapsed)
}

func TestUsernameUndecodable(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/profile/x", "/api/v1/players/x"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.URL.RawPath = strings.TrimSuffix(path, "x") + "%zz"
		rec := httptest.NewRecorder()
		env.handler.Router().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
		assert.Contains(t, rec.Body.String(), "invalid username", path)
	}
}
