package sse

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/lifeos/cache"
	"github.com/kasuganosora/lifeos/game/store"
	mw "github.com/kasuganosora/lifeos/middleware"
	"go.uber.org/zap"
)

const AnnounceChannel = "lifeos:announce"

// Handler streams state changes and announcements to the browser.
type Handler struct {
	pubsub    cache.PubSub
	reg       *store.Registry
	keepalive time.Duration
	logger    *zap.Logger
}

// NewHandler creates a new SSE Handler.
func NewHandler(pubsub cache.PubSub, reg *store.Registry, logger *zap.Logger) *Handler {
	return &Handler{pubsub: pubsub, reg: reg, keepalive: 30 * time.Second, logger: logger}
}

// stateEvent is the payload of a "state" event. State is omitted when the
// session closed before the event was delivered.
type stateEvent struct {
	Version uint64 `json:"version"`
	Action  string `json:"action"`
	State   any    `json:"state,omitempty"`
}

// ServeSSE handles GET /api/events?token=<jwt>. It must run behind
// middleware.Auth. Every committed change of the caller's account arrives
// as a "state" event carrying the new state: domain actions and UI signals
// such as set_loading or hide_toast alike. Only domain actions bump the
// version.
func (h *Handler) ServeSSE(c *gin.Context) {
	accountID := mw.GetAccountID(c)
	if accountID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	subCtx, subCancel := context.WithCancel(c.Request.Context())
	defer subCancel()

	msgCh, unsub, err := h.pubsub.Subscribe(subCtx, store.StateChannel(accountID), AnnounceChannel)
	if err != nil {
		h.logger.Error("sse subscribe failed", zap.Int64("account_id", accountID), zap.Error(err))
		c.Status(http.StatusInternalServerError)
		return
	}
	defer unsub()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	fmt.Fprintf(c.Writer, "event: connected\ndata: {}\n\n")
	c.Writer.Flush()

	ticker := time.NewTicker(h.keepalive)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-msgCh:
			if !ok {
				return
			}
			if msg.Channel == AnnounceChannel {
				fmt.Fprintf(c.Writer, "event: announce\ndata: %s\n\n", msg.Payload)
			} else if data, ok := h.stateData(accountID, msg.Payload); ok {
				fmt.Fprintf(c.Writer, "event: state\ndata: %s\n\n", data)
			}
			c.Writer.Flush()

		case <-ticker.C:
			fmt.Fprintf(c.Writer, ": keepalive\n\n")
			c.Writer.Flush()

		case <-c.Request.Context().Done():
			return
		}
	}
}

func (h *Handler) stateData(accountID int64, payload string) ([]byte, bool) {
	var ev store.ChangeEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		h.logger.Warn("sse bad change event", zap.Int64("account_id", accountID), zap.Error(err))
		return nil, false
	}
	out := stateEvent{Version: ev.Version, Action: ev.Action}
	if sess, ok := h.reg.Get(accountID); ok {
		s := sess.Store.Snapshot()
		out.Version, out.State = s.Version, s
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, false
	}
	return data, true
}

// Announce publishes an announcement message to all SSE subscribers.
func (h *Handler) Announce(ctx context.Context, message string) error {
	return h.pubsub.Publish(ctx, AnnounceChannel, message)
}

// PostAnnounce broadcasts an admin announcement.
// POST /api/admin/announce
func (h *Handler) PostAnnounce(c *gin.Context) {
	var req struct {
		Message string `json:"message" binding:"required,max=500"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	payload, _ := json.Marshal(gin.H{"message": req.Message, "at": time.Now().UnixMilli()})
	if err := h.Announce(c.Request.Context(), string(payload)); err != nil {
		h.logger.Error("announce failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "publish failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
