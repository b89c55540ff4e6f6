package rest

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/lifeos/cache"
	"github.com/kasuganosora/lifeos/config"
	"github.com/kasuganosora/lifeos/game/store"
	mw "github.com/kasuganosora/lifeos/middleware"
	"github.com/kasuganosora/lifeos/model"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const bcryptCost = 12

// AuthHandler handles authentication REST endpoints.
type AuthHandler struct {
	db     *gorm.DB
	cache  cache.Cache
	reg    *store.Registry
	sec    config.SecurityConfig
	logger *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(db *gorm.DB, c cache.Cache, reg *store.Registry, sec config.SecurityConfig, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{db: db, cache: c, reg: reg, sec: sec, logger: logger}
}

type loginRequest struct {
	Username string `json:"username" binding:"required,min=2,max=32"`
	Password string `json:"password" binding:"required,min=4,max=64"`
}

// Login handles POST /api/auth/login. The first login of an unknown
// username registers it. A successful login opens the game session.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bind(c, &req) {
		return
	}

	acc, status, msg := h.account(req)
	if status != http.StatusOK {
		c.JSON(status, gin.H{"error": msg})
		return
	}

	token, err := mw.GenerateToken(acc.ID, acc.Username, h.sec.JWTSecret, h.sec.JWTTTLH)
	if err != nil {
		h.logger.Error("sign token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token error"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.cache.Set(ctx, mw.SessionKey(token), strconv.FormatInt(acc.ID, 10), h.sec.JWTTTLH); err != nil {
		h.logger.Error("store session", zap.Int64("account_id", acc.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session error"})
		return
	}

	sess, err := h.reg.Open(c.Request.Context(), acc.ID)
	if err != nil {
		h.logger.Error("open session", zap.Int64("account_id", acc.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session unavailable"})
		return
	}

	// Best effort.
	now := time.Now()
	_ = h.db.Model(&acc).Updates(map[string]any{
		"last_login_at": now,
		"last_login_ip": c.ClientIP(),
	}).Error

	s := sess.Store.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"account_id": acc.ID,
		"version":    s.Version,
		"state":      s,
	})
}

// account finds or registers the login's account. It returns an HTTP
// status and message for the failure cases.
func (h *AuthHandler) account(req loginRequest) (model.Account, int, string) {
	var acc model.Account
	err := h.db.Where("username = ?", req.Username).First(&acc).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
		if err != nil {
			return acc, http.StatusInternalServerError, "internal error"
		}
		acc = model.Account{Username: req.Username, PasswordHash: string(hash), Status: 1}
		if err := h.db.Create(&acc).Error; err != nil {
			if isUniqueViolation(err) {
				return acc, http.StatusConflict, "username already taken"
			}
			h.logger.Error("register account", zap.String("username", req.Username), zap.Error(err))
			return acc, http.StatusInternalServerError, "registration failed"
		}
		h.logger.Info("account registered", zap.Int64("account_id", acc.ID), zap.String("username", acc.Username))
	case err != nil:
		return acc, http.StatusInternalServerError, "internal error"
	default:
		if bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(req.Password)) != nil {
			return acc, http.StatusUnauthorized, "invalid credentials"
		}
		if acc.Status == 0 {
			return acc, http.StatusForbidden, "account banned"
		}
	}
	return acc, http.StatusOK, ""
}

// Logout handles POST /api/auth/logout. It ends the token's session and
// saves and closes the game session.
func (h *AuthHandler) Logout(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()
	_ = h.cache.Del(ctx, mw.SessionKey(mw.GetToken(c)))

	accountID := mw.GetAccountID(c)
	if err := h.reg.Close(ctx, accountID); err != nil && !errors.Is(err, store.ErrNoSession) {
		h.logger.Warn("close session", zap.Int64("account_id", accountID), zap.Error(err))
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Refresh handles POST /api/auth/refresh: the old token is revoked and a
// new one issued. The game session stays open.
func (h *AuthHandler) Refresh(c *gin.Context) {
	accountID := mw.GetAccountID(c)
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	var acc model.Account
	if err := h.db.WithContext(ctx).First(&acc, accountID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	token, err := mw.GenerateToken(acc.ID, acc.Username, h.sec.JWTSecret, h.sec.JWTTTLH)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token error"})
		return
	}
	if err := h.cache.Set(ctx, mw.SessionKey(token), strconv.FormatInt(acc.ID, 10), h.sec.JWTTTLH); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session error"})
		return
	}
	_ = h.cache.Del(ctx, mw.SessionKey(mw.GetToken(c)))
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// isUniqueViolation detects duplicate-key errors from common database drivers.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") ||
		strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "already exists")
}
