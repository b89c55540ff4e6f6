package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/lifeos/game/store"
)

// hideActions maps the :signal of /api/ui/hide to the action retiring it.
var hideActions = map[string]store.Action{
	"reward-modal":     store.HideRewardModal{},
	"battle-animation": store.HideBattleAnimation{},
	"badge":            store.HideBadgeNotification{},
	"daily-briefing":   store.HideDailyBriefing{},
}

// Hide dismisses a transient UI signal.
// POST /api/ui/hide/:signal
func (h *GameHandler) Hide(c *gin.Context) {
	a, ok := hideActions[c.Param("signal")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown signal"})
		return
	}
	h.apply(c, a)
}

// HideToast dismisses one toast.
// DELETE /api/ui/toasts/:id
func (h *GameHandler) HideToast(c *gin.Context) {
	h.apply(c, store.HideToast{ID: c.Param("id")})
}

// POST /api/ui/tutorial/advance
func (h *GameHandler) AdvanceTutorial(c *gin.Context) {
	h.apply(c, store.AdvanceTutorial{})
}

// POST /api/ui/tutorial/complete
func (h *GameHandler) CompleteTutorial(c *gin.Context) {
	h.apply(c, store.CompleteTutorial{})
}

// POST /api/ui/ai-chat/toggle
func (h *GameHandler) ToggleAIChat(c *gin.Context) {
	h.apply(c, store.ToggleAIChat{})
}

type reviewDateRequest struct {
	Date string `json:"date" binding:"required"`
}

// SetReviewDate selects the day shown in the review calendar.
// PUT /api/ui/review-date
func (h *GameHandler) SetReviewDate(c *gin.Context) {
	var req reviewDateRequest
	if !bind(c, &req) {
		return
	}
	h.apply(c, store.SetReviewDate{Date: req.Date})
}
