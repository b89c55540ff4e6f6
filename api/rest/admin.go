package rest

import (
	"context"
	"errors"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/lifeos/audit"
	"github.com/kasuganosora/lifeos/game/store"
	"github.com/kasuganosora/lifeos/model"
	"github.com/kasuganosora/lifeos/scheduler"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AdminHandler handles admin-only REST endpoints.
// Routes should be protected by middleware.AdminAuth.
type AdminHandler struct {
	db      *gorm.DB
	reg     *store.Registry
	sched   *scheduler.Scheduler
	audit   *audit.Service
	started time.Time
	logger  *zap.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(db *gorm.DB, reg *store.Registry, sched *scheduler.Scheduler, auditSvc *audit.Service, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{db: db, reg: reg, sched: sched, audit: auditSvc, started: time.Now(), logger: logger}
}

// Metrics returns server health metrics.
// GET /api/admin/metrics
func (h *AdminHandler) Metrics(c *gin.Context) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	c.JSON(http.StatusOK, gin.H{
		"open_sessions":   len(h.reg.Sessions()),
		"tickers":         h.sched.ListTickers(),
		"scheduler_tasks": len(h.sched.Tasks()),
		"goroutines":      runtime.NumGoroutine(),
		"heap_alloc":      mem.HeapAlloc,
		"uptime_s":        int64(time.Since(h.started).Seconds()),
	})
}

// ListSessions returns every open game session.
// GET /api/admin/sessions
func (h *AdminHandler) ListSessions(c *gin.Context) {
	sessions := h.reg.Sessions()
	c.JSON(http.StatusOK, gin.H{"sessions": sessions, "count": len(sessions)})
}

// CloseSession saves and closes an account's game session.
// POST /api/admin/sessions/:id/close
func (h *AdminHandler) CloseSession(c *gin.Context) {
	accountID, ok := paramID(c)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()
	err := h.reg.Close(ctx, accountID)
	if errors.Is(err, store.ErrNoSession) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no open session"})
		return
	}
	if err != nil {
		h.logger.Error("admin close session", zap.Int64("account_id", accountID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}
	h.logger.Info("admin closed session", zap.Int64("account_id", accountID))
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// BanAccount bans or unbans a player account. Banning closes the session.
// POST /api/admin/accounts/:id/ban
func (h *AdminHandler) BanAccount(c *gin.Context) {
	accountID, ok := paramID(c)
	if !ok {
		return
	}
	var req struct {
		Ban bool `json:"ban"`
	}
	_ = c.ShouldBindJSON(&req)

	status := 1
	if req.Ban {
		status = 0
	}
	result := h.db.Model(&model.Account{}).Where("id = ?", accountID).Update("status", status)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		return
	}
	if req.Ban {
		_ = h.reg.Close(c.Request.Context(), accountID)
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "status": status})
}

// ListSchedulerTasks returns all pending scheduler tasks.
// GET /api/admin/scheduler
func (h *AdminHandler) ListSchedulerTasks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tasks": h.sched.Tasks()})
}

// RecentActions returns an account's latest audited actions.
// GET /api/admin/accounts/:id/audit?limit=50
func (h *AdminHandler) RecentActions(c *gin.Context) {
	accountID, ok := paramID(c)
	if !ok {
		return
	}
	limit := 50
	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 && l <= 500 {
		limit = l
	}
	logs, err := h.audit.Recent(c.Request.Context(), accountID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"actions": logs})
}

// Register mounts the admin routes.
func (h *AdminHandler) Register(g *gin.RouterGroup) {
	g.GET("/metrics", h.Metrics)
	g.GET("/sessions", h.ListSessions)
	g.POST("/sessions/:id/close", h.CloseSession)
	g.POST("/accounts/:id/ban", h.BanAccount)
	g.GET("/accounts/:id/audit", h.RecentActions)
	g.GET("/scheduler", h.ListSchedulerTasks)
}

func paramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
