package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/lifeos/api/rest"
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
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const adminKey = "admin-secret"

var testNow = time.Date(2024, 5, 15, 9, 0, 0, 0, time.UTC)

type server struct {
	r     *gin.Engine
	db    *gorm.DB
	cache cache.Cache
	reg   *store.Registry
	board *ranking.Board
	sched *scheduler.Scheduler
	audit *audit.Service
	clock *testutil.FakeClock
}

func newServer(t *testing.T) *server {
	t.Helper()
	logger := zap.NewNop()
	db := testutil.SetupTestDB(t)
	c, ps := testutil.SetupTestCache(t)
	sched := scheduler.New(logger)
	t.Cleanup(sched.Stop)
	auditSvc := audit.New(db, logger)
	t.Cleanup(func() { auditSvc.Stop(context.Background()) })

	cat := catalog.Default()
	board := ranking.New(c, logger)
	clock := testutil.NewFakeClock(testNow)
	reg := store.NewRegistry(store.RegistryOptions{
		Catalog:   cat,
		DB:        db,
		PubSub:    ps,
		Ranker:    board,
		Scheduler: sched,
		Audit:     auditSvc,
		Timings:   store.Timings{ToastTTL: time.Minute, BadgeNoticeTTL: time.Minute, BattleAnimTTL: time.Minute},
		Now:       clock.Now,
		Logger:    logger,
	})
	sec := config.SecurityConfig{JWTSecret: "test-secret", JWTTTLH: 72 * time.Hour}

	game := rest.NewGameHandler(reg, logger)
	comp := rest.NewCompanionHandler(game, companion.NewService(companion.Scripted{}, reg.Env, logger))
	authH := rest.NewAuthHandler(db, c, reg, sec, logger)

	r := gin.New()
	r.Use(mw.TraceID(), mw.Recovery(logger))
	api := r.Group("/api")
	api.POST("/auth/login", authH.Login)
	api.GET("/catalog", rest.NewCatalogHandler(cat).Catalog)

	player := api.Group("", mw.Auth(sec, c))
	player.POST("/auth/logout", authH.Logout)
	player.POST("/auth/refresh", authH.Refresh)
	player.GET("/leaderboard", rest.NewRankingHandler(board, reg, 10, logger).Leaderboard)
	game.Register(player)
	comp.Register(player)

	rest.NewAdminHandler(db, reg, sched, auditSvc, logger).Register(api.Group("/admin", mw.AdminAuth(adminKey)))

	return &server{r: r, db: db, cache: c, reg: reg, board: board, sched: sched, audit: auditSvc, clock: clock}
}

func (s *server) do(method, path, token string, body any, headers ...string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.r.ServeHTTP(w, req)
	return w
}

type loginResponse struct {
	Token     string          `json:"token"`
	AccountID int64           `json:"account_id"`
	Version   uint64          `json:"version"`
	State     model.GameState `json:"state"`
}

func (s *server) login(t *testing.T, username, password string) loginResponse {
	t.Helper()
	w := s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"username": username, "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp loginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// player logs in and onboards a fresh account.
func (s *server) player(t *testing.T, username string) loginResponse {
	t.Helper()
	resp := s.login(t, username, "pass1234")
	st := decode(t, s.do(http.MethodPost, "/api/onboarding", resp.Token, map[string]string{"name": username, "class": "Scholar"}))
	require.True(t, st.State.IsOnboarded)
	resp.State = st.State
	resp.Version = st.Version
	return resp
}

type stateResponse struct {
	Version uint64          `json:"version"`
	State   model.GameState `json:"state"`
	Error   string          `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) stateResponse {
	t.Helper()
	var resp stateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func version(v uint64) string { return strconv.FormatUint(v, 10) }
