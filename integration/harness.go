package integration

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	apirest "github.com/kasuganosora/lifeos/api/rest"
	"github.com/kasuganosora/lifeos/api/sse"
	"github.com/kasuganosora/lifeos/audit"
	"github.com/kasuganosora/lifeos/cache"
	"github.com/kasuganosora/lifeos/config"
	"github.com/kasuganosora/lifeos/game/catalog"
	"github.com/kasuganosora/lifeos/game/companion"
	"github.com/kasuganosora/lifeos/game/ranking"
	"github.com/kasuganosora/lifeos/game/store"
	mw "github.com/kasuganosora/lifeos/middleware"
	"github.com/kasuganosora/lifeos/model"
	"github.com/kasuganosora/lifeos/scheduler"
	"github.com/kasuganosora/lifeos/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// Backend is the storage shared by server instances, so a test can restart
// the server and keep its data.
type Backend struct {
	DB     *gorm.DB
	Cache  cache.Cache
	PubSub cache.PubSub
	Clock  *testutil.FakeClock
}

// NewBackend creates fresh storage with the clock at 2024-05-15 09:00 UTC.
func NewBackend(t *testing.T) *Backend {
	t.Helper()
	db := testutil.SetupTestDB(t)
	c, ps := testutil.SetupTestCache(t)
	return &Backend{DB: db, Cache: c, PubSub: ps, Clock: testutil.NewFakeClock(time.Date(2024, 5, 15, 9, 0, 0, 0, time.UTC))}
}

// TestServer wraps a real HTTP server with every subsystem wired together.
type TestServer struct {
	*Backend
	Reg    *store.Registry
	Sched  *scheduler.Scheduler
	Server *httptest.Server
	URL    string
	Sec    config.SecurityConfig

	closeFn func()
}

// NewTestServer creates a fully wired server on fresh storage.
func NewTestServer(t *testing.T) *TestServer {
	return StartServer(t, NewBackend(t))
}

// StartServer wires a server on b. It mirrors the dependency wiring in
// main.go.
func StartServer(t *testing.T, b *Backend) *TestServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	sec := config.SecurityConfig{
		JWTSecret:      "integration-test-secret",
		JWTTTLH:        72 * time.Hour,
		RateLimitRPS:   1000,
		RateLimitBurst: 2000,
	}

	sched := scheduler.New(logger)
	auditSvc := audit.New(b.DB, logger)
	cat := catalog.Default()
	board := ranking.New(b.Cache, logger)
	require.NoError(t, board.Seed(context.Background(), cat.Users))

	reg := store.NewRegistry(store.RegistryOptions{
		Catalog:   cat,
		DB:        b.DB,
		PubSub:    b.PubSub,
		Ranker:    board,
		Scheduler: sched,
		Audit:     auditSvc,
		Timings:   store.Timings{ToastTTL: time.Minute, BadgeNoticeTTL: time.Minute, BattleAnimTTL: time.Minute},
		Now:       b.Clock.Now,
		Logger:    logger,
	})

	ctx, cancel := context.WithCancel(context.Background())
	r := gin.New()
	r.Use(mw.TraceID(), mw.Recovery(logger))
	r.Use(mw.RateLimit(ctx, rate.Limit(sec.RateLimitRPS), sec.RateLimitBurst))

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authH := apirest.NewAuthHandler(b.DB, b.Cache, reg, sec, logger)
	gameH := apirest.NewGameHandler(reg, logger)
	compH := apirest.NewCompanionHandler(gameH, companion.NewService(companion.Scripted{}, reg.Env, logger))
	sseH := sse.NewHandler(b.PubSub, reg, logger)

	api := r.Group("/api")
	{
		api.POST("/auth/login", authH.Login)
		api.GET("/catalog", apirest.NewCatalogHandler(cat).Catalog)

		player := api.Group("", mw.Auth(sec, b.Cache))
		player.POST("/auth/logout", authH.Logout)
		player.POST("/auth/refresh", authH.Refresh)
		player.GET("/leaderboard", apirest.NewRankingHandler(board, reg, 50, logger).Leaderboard)
		player.GET("/events", sseH.ServeSSE)
		gameH.Register(player)
		compH.Register(player)
	}

	server := httptest.NewServer(r)
	ts := &TestServer{Backend: b, Reg: reg, Sched: sched, Server: server, URL: server.URL, Sec: sec}
	var closed atomic.Bool
	ts.closeFn = func() {
		if closed.Swap(true) {
			return
		}
		server.CloseClientConnections()
		server.Close()
		cancel()
		_ = reg.CloseAll(context.Background())
		sched.Stop()
		auditSvc.Stop(context.Background())
	}
	t.Cleanup(ts.Close)
	return ts
}

// Close shuts the server down and saves every open session.
func (ts *TestServer) Close() { ts.closeFn() }

// --- HTTP helpers ---

func (ts *TestServer) request(t *testing.T, method, path string, body interface{}, token string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, ts.URL+path, r)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

// PostJSON sends a POST request with JSON body and optional Bearer token.
func (ts *TestServer) PostJSON(t *testing.T, path string, body interface{}, token string) *http.Response {
	t.Helper()
	return ts.request(t, http.MethodPost, path, body, token)
}

// Get sends a GET request with optional Bearer token.
func (ts *TestServer) Get(t *testing.T, path string, token string) *http.Response {
	t.Helper()
	return ts.request(t, http.MethodGet, path, nil, token)
}

// Delete sends a DELETE request with optional Bearer token.
func (ts *TestServer) Delete(t *testing.T, path string, token string) *http.Response {
	t.Helper()
	return ts.request(t, http.MethodDelete, path, nil, token)
}

// Put sends a PUT request with JSON body and optional Bearer token.
func (ts *TestServer) Put(t *testing.T, path string, body interface{}, token string) *http.Response {
	t.Helper()
	return ts.request(t, http.MethodPut, path, body, token)
}

// ReadJSON reads and decodes a JSON response body into the given target.
func ReadJSON(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, target), "body: %s", string(data))
}

// StateResponse is the body of every game action.
type StateResponse struct {
	Version uint64          `json:"version"`
	State   model.GameState `json:"state"`
}

// Action posts to a game route, requires 200 and returns the new state.
func (ts *TestServer) Action(t *testing.T, method, path string, body interface{}, token string) StateResponse {
	t.Helper()
	resp := ts.request(t, method, path, body, token)
	require.Equal(t, http.StatusOK, resp.StatusCode, "%s %s", method, path)
	var out StateResponse
	ReadJSON(t, resp, &out)
	return out
}

// State fetches the caller's current state.
func (ts *TestServer) State(t *testing.T, token string) StateResponse {
	t.Helper()
	return ts.Action(t, http.MethodGet, "/api/state", nil, token)
}

// --- Auth helpers ---

// Login logs in (auto-registers on first call) and returns the token and account ID.
func (ts *TestServer) Login(t *testing.T, username, password string) (token string, accountID int64) {
	t.Helper()
	resp := ts.PostJSON(t, "/api/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var result struct {
		Token     string `json:"token"`
		AccountID int64  `json:"account_id"`
	}
	ReadJSON(t, resp, &result)
	return result.Token, result.AccountID
}

// Onboard logs a new player in and completes onboarding.
func (ts *TestServer) Onboard(t *testing.T, name string) (token string, st StateResponse) {
	t.Helper()
	token, _ = ts.Login(t, name, "testpass1234")
	st = ts.Action(t, http.MethodPost, "/api/onboarding", map[string]string{"name": name, "class": string(model.ClassArchitect)}, token)
	require.True(t, st.State.IsOnboarded)
	return token, st
}

var idSeq atomic.Int64

// UniqueID returns a name unique within the test binary.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s%d", prefix, idSeq.Add(1))
}

// --- Event stream client ---

// Event is one server-sent event.
type Event struct {
	Name string
	Data string
}

// EventStream reads the /api/events stream in the background.
type EventStream struct {
	t      *testing.T
	events chan Event
}

// Connect opens the event stream with the token in the query string and
// waits for the connected event.
func (ts *TestServer) Connect(t *testing.T, token string) *EventStream {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/events?token="+token, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() {
		cancel()
		resp.Body.Close()
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	es := &EventStream{t: t, events: make(chan Event, 64)}
	go es.readLoop(resp.Body)
	require.Equal(t, "connected", es.Next().Name)
	return es
}

func (es *EventStream) readLoop(body io.Reader) {
	defer close(es.events)
	sc := bufio.NewScanner(body)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	var ev Event
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			ev.Name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			ev.Data = strings.TrimPrefix(line, "data: ")
		case line == "" && ev.Name != "":
			es.events <- ev
			ev = Event{}
		}
	}
}

// Next waits up to three seconds for the next event.
func (es *EventStream) Next() Event {
	es.t.Helper()
	select {
	case ev, ok := <-es.events:
		require.True(es.t, ok, "event stream closed")
		return ev
	case <-time.After(3 * time.Second):
		es.t.Fatal("timed out waiting for event")
		return Event{}
	}
}

// WaitState skips events until a state event carrying action arrives and
// returns its state.
func (es *EventStream) WaitState(action string) StateResponse {
	es.t.Helper()
	for {
		ev := es.Next()
		if ev.Name != "state" {
			continue
		}
		var payload struct {
			StateResponse
			Action string `json:"action"`
		}
		require.NoError(es.t, json.Unmarshal([]byte(ev.Data), &payload))
		if payload.Action == action {
			return payload.StateResponse
		}
	}
}
