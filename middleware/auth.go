package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/lifeos/cache"
	"github.com/kasuganosora/lifeos/config"
)

const (
	AccountIDKey   = "account_id"
	TokenKey       = "session_token"
	AdminKeyHeader = "X-Admin-Key"
)

// SessionKey is the cache key that keeps a token alive until logout.
func SessionKey(token string) string { return "lifeos:session:" + token }

// Authenticate resolves token to an account. The token must verify and its
// session must still be in the cache under the same account.
func Authenticate(ctx context.Context, sec config.SecurityConfig, c cache.Cache, token string) (*Claims, error) {
	claims, err := ParseToken(token, sec.JWTSecret)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	owner, err := c.Get(ctx, SessionKey(token))
	if err != nil {
		return nil, errSessionExpired
	}
	if owner != strconv.FormatInt(claims.AccountID, 10) {
		return nil, errSessionExpired
	}
	return claims, nil
}

type authError string

func (e authError) Error() string { return string(e) }

const errSessionExpired = authError("session expired")

// Auth guards player routes. The token comes from the Authorization header,
// or from the token query parameter for clients that cannot set headers
// (EventSource).
func Auth(sec config.SecurityConfig, c cache.Cache) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := BearerToken(ctx)
		if token == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		claims, err := Authenticate(ctx.Request.Context(), sec, c, token)
		if err == errSessionExpired {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
			return
		}
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		ctx.Set(AccountIDKey, claims.AccountID)
		ctx.Set(TokenKey, token)
		ctx.Next()
	}
}

// BearerToken extracts the session token of the request.
func BearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		if tok, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(tok)
		}
		return ""
	}
	return c.Query("token")
}

// GetAccountID retrieves the authenticated account ID from the Gin context.
func GetAccountID(c *gin.Context) int64 {
	if v, exists := c.Get(AccountIDKey); exists {
		return v.(int64)
	}
	return 0
}

// GetToken returns the session token accepted by Auth.
func GetToken(c *gin.Context) string {
	return c.GetString(TokenKey)
}

// AdminAuth checks the X-Admin-Key header. An empty key disables the routes.
func AdminAuth(adminKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if adminKey == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin endpoints disabled"})
			return
		}
		if subtle.ConstantTimeCompare([]byte(c.GetHeader(AdminKeyHeader)), []byte(adminKey)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid admin key"})
			return
		}
		c.Next()
	}
}
