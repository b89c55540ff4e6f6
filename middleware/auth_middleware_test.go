package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/lifeos/cache"
	"github.com/kasuganosora/lifeos/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testSec = config.SecurityConfig{JWTSecret: "secret", JWTTTLH: time.Hour}

func setupTestCache(t *testing.T) cache.Cache {
	t.Helper()
	c, err := cache.NewCache(cache.CacheConfig{})
	require.NoError(t, err)
	return c
}

func login(t *testing.T, c cache.Cache, accountID int64) string {
	t.Helper()
	token, err := GenerateToken(accountID, "mira", testSec.JWTSecret, time.Hour)
	require.NoError(t, err)
	require.NoError(t, c.Set(context.Background(), SessionKey(token), strconv.FormatInt(accountID, 10), time.Hour))
	return token
}

type seenAuth struct {
	accountID int64
	token     string
}

func newProtectedRouter(c cache.Cache) (*gin.Engine, *seenAuth) {
	seen := &seenAuth{}
	r := gin.New()
	r.Use(Auth(testSec, c))
	r.GET("/protected", func(ctx *gin.Context) {
		seen.accountID = GetAccountID(ctx)
		seen.token = GetToken(ctx)
		ctx.Status(http.StatusOK)
	})
	return r, seen
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth_Rejects(t *testing.T) {
	c := setupTestCache(t)
	r, _ := newProtectedRouter(c)

	unsaved, err := GenerateToken(42, "mira", testSec.JWTSecret, time.Hour)
	require.NoError(t, err)
	stolen, err := GenerateToken(7, "mira", testSec.JWTSecret, time.Hour)
	require.NoError(t, err)
	require.NoError(t, c.Set(context.Background(), SessionKey(stolen), "42", time.Hour))

	cases := map[string]string{
		"no header":     "",
		"not bearer":    "Token abc123",
		"garbage":       "Bearer notavalidtoken",
		"no session":    "Bearer " + unsaved,
		"wrong account": "Bearer " + stolen,
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)
		})
	}
}

func TestAuth_HeaderToken(t *testing.T) {
	c := setupTestCache(t)
	r, seen := newProtectedRouter(c)
	token := login(t, c, 42)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusOK, serve(r, req).Code)
	assert.Equal(t, int64(42), seen.accountID)
	assert.Equal(t, token, seen.token)
}

func TestAuth_QueryToken(t *testing.T) {
	c := setupTestCache(t)
	r, seen := newProtectedRouter(c)
	token := login(t, c, 42)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/protected?token="+token, nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(42), seen.accountID)
}

func TestAuth_LogoutEndsSession(t *testing.T) {
	c := setupTestCache(t)
	r, _ := newProtectedRouter(c)
	token := login(t, c, 42)
	require.NoError(t, c.Del(context.Background(), SessionKey(token)))

	w := serve(r, httptest.NewRequest(http.MethodGet, "/protected?token="+token, nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "session expired")
}

func TestGetAccountID(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Equal(t, int64(0), GetAccountID(c))
	c.Set(AccountIDKey, int64(99))
	assert.Equal(t, int64(99), GetAccountID(c))
}

func TestAdminAuth(t *testing.T) {
	newRouter := func(key string) *gin.Engine {
		r := gin.New()
		r.Use(AdminAuth(key))
		r.GET("/admin", func(c *gin.Context) { c.Status(http.StatusOK) })
		return r
	}
	req := func(key string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/admin", nil)
		if key != "" {
			r.Header.Set(AdminKeyHeader, key)
		}
		return r
	}

	assert.Equal(t, http.StatusForbidden, serve(newRouter(""), req("anything")).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(newRouter("k3y"), req("nope")).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(newRouter("k3y"), req("")).Code)
	assert.Equal(t, http.StatusOK, serve(newRouter("k3y"), req("k3y")).Code)
}

func TestRecovery_CatchesPanic(t *testing.T) {
	r := gin.New()
	r.Use(TraceID(), Recovery(zap.NewNop()))
	r.GET("/panic", func(c *gin.Context) { panic("test panic") })

	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	req.Header.Set(TraceIDHeader, "trace-1")
	w := serve(r, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "trace-1")
}

func TestLogger_LevelsByStatus(t *testing.T) {
	r := gin.New()
	r.Use(TraceID(), Logger(zap.NewNop()))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/fail", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/ok", nil)).Code)
	assert.Equal(t, http.StatusInternalServerError, serve(r, httptest.NewRequest(http.MethodGet, "/fail", nil)).Code)
}
