package rest

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/lifeos/game/action"
	"github.com/kasuganosora/lifeos/game/store"
	mw "github.com/kasuganosora/lifeos/middleware"
	"github.com/kasuganosora/lifeos/model"
	"go.uber.org/zap"
)

// StateVersionHeader carries the state version a client computed its
// request against. When present the action is rejected with 409 if the
// state moved on in the meantime.
const StateVersionHeader = "X-State-Version"

// GameHandler serves the player's game actions. Every action runs through
// the account's dispatcher; the response carries the resulting state.
type GameHandler struct {
	reg    *store.Registry
	logger *zap.Logger
}

// NewGameHandler creates a GameHandler.
func NewGameHandler(reg *store.Registry, logger *zap.Logger) *GameHandler {
	return &GameHandler{reg: reg, logger: logger}
}

// session returns the caller's live session, reopening it after a server
// restart. It writes the error response itself.
func (h *GameHandler) session(c *gin.Context) (*store.Session, bool) {
	accountID := mw.GetAccountID(c)
	if accountID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil, false
	}
	sess, err := h.reg.Open(c.Request.Context(), accountID)
	if err != nil {
		h.logger.Error("open session", zap.Int64("account_id", accountID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session unavailable"})
		return nil, false
	}
	return sess, true
}

// handlerFunc is an action handler already bound to its arguments.
type handlerFunc func(s *model.GameState, env action.Env) model.Patch

// dispatch runs fn under the loading flag key and writes the new state.
func (h *GameHandler) dispatch(c *gin.Context, key, name string, fn handlerFunc) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	v, err := h.run(c, sess, key, name, fn)
	h.respond(c, sess, v, err)
}

func (h *GameHandler) run(c *gin.Context, sess *store.Session, key, name string, fn handlerFunc) (uint64, error) {
	handler := store.Pure(func(s *model.GameState) model.Patch { return fn(s, h.reg.Env()) })
	ctx := c.Request.Context()
	if raw := c.GetHeader(StateVersionHeader); raw != "" {
		expect, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return 0, errBadVersion
		}
		return sess.Dispatcher.DoExpect(ctx, expect, key, name, handler)
	}
	return sess.Dispatcher.Do(ctx, key, name, handler)
}

// apply runs a UI action directly against the store.
func (h *GameHandler) apply(c *gin.Context, a store.Action) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	v, err := sess.Store.Apply(a)
	h.respond(c, sess, v, err)
}

var errBadVersion = errors.New("invalid " + StateVersionHeader + " header")

// respond writes the outcome of an action. Failed actions still carry the
// state so the client can render the error toast.
func (h *GameHandler) respond(c *gin.Context, sess *store.Session, v uint64, err error) {
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"version": v, "state": sess.Store.Snapshot()})
	case errors.Is(err, errBadVersion):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrStale):
		c.JSON(http.StatusConflict, gin.H{"error": "state changed, reload and retry", "version": v})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "request cancelled"})
	case errors.Is(err, store.ErrActionFailed):
		c.JSON(http.StatusInternalServerError, gin.H{"error": store.GenericErrorMessage, "version": v, "state": sess.Store.Snapshot()})
	default:
		h.logger.Error("action failed", zap.Int64("account_id", sess.AccountID), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

// bind decodes the JSON body into dst, answering 400 on failure.
func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

// State returns the caller's current state.
// GET /api/state
func (h *GameHandler) State(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	s := sess.Store.Snapshot()
	c.JSON(http.StatusOK, gin.H{"version": s.Version, "state": s})
}

type onboardingRequest struct {
	Name  string               `json:"name" binding:"required,max=32"`
	Class model.CharacterClass `json:"class"`
}

// CompleteOnboarding names the character and picks its class.
// POST /api/onboarding
func (h *GameHandler) CompleteOnboarding(c *gin.Context) {
	var req onboardingRequest
	if !bind(c, &req) {
		return
	}
	h.dispatch(c, "onboarding", "complete_onboarding", func(s *model.GameState, env action.Env) model.Patch {
		return action.CompleteOnboarding(s, env, req.Name, req.Class)
	})
}

// ClaimDailyBonus grants the once-a-day coin bonus.
// POST /api/daily-bonus
func (h *GameHandler) ClaimDailyBonus(c *gin.Context) {
	h.dispatch(c, "claimBonus", "claim_daily_bonus", action.ClaimDailyBonus)
}

// OpenDailyBriefing shows today's briefing on demand.
// POST /api/briefing
func (h *GameHandler) OpenDailyBriefing(c *gin.Context) {
	h.dispatch(c, "briefing", "open_daily_briefing", action.OpenDailyBriefing)
}

// UpdateSettings changes player preferences.
// PUT /api/settings
func (h *GameHandler) UpdateSettings(c *gin.Context) {
	var u model.SettingsUpdate
	if !bind(c, &u) {
		return
	}
	h.dispatch(c, "updateSettings", "update_settings", func(s *model.GameState, env action.Env) model.Patch {
		return action.UpdateSettings(s, env, u)
	})
}

// Register mounts the game routes on an authenticated group.
func (h *GameHandler) Register(g *gin.RouterGroup) {
	g.GET("/state", h.State)
	g.POST("/onboarding", h.CompleteOnboarding)
	g.POST("/daily-bonus", h.ClaimDailyBonus)
	g.POST("/briefing", h.OpenDailyBriefing)
	g.PUT("/settings", h.UpdateSettings)

	g.POST("/habits", h.AddHabit)
	g.POST("/habits/from-template/:id", h.AddHabitFromTemplate)
	g.PUT("/habits/:id", h.UpdateHabit)
	g.POST("/habits/:id/checkin", h.CheckInHabit)
	g.POST("/habits/:id/fight", h.FightAffliction)

	g.POST("/quests", h.AddQuest)
	g.POST("/quests/from-template/:id", h.StartQuestFromTemplate)
	g.DELETE("/quests/template", h.ClearQuestTemplate)
	g.POST("/quests/:id/objectives/:oid/toggle", h.ToggleObjective)
	g.POST("/quests/:id/boss-fight", h.StartBossFight)
	g.DELETE("/boss-fight", h.EndBossFight)
	g.POST("/void", h.AddThought)

	g.POST("/goals", h.AddGoal)
	g.PUT("/goals/:id", h.UpdateGoal)
	g.DELETE("/goals/:id", h.DeleteGoal)
	g.GET("/goals/:id/progress", h.GoalProgress)
	g.POST("/skills", h.AddSkill)

	g.POST("/shop/:id/purchase", h.PurchaseItem)
	g.POST("/gear/:id/equip", h.EquipItem)
	g.PUT("/appearance", h.UpdateAppearance)
	g.POST("/prestige", h.Prestige)
	g.POST("/prestige/upgrades/:id", h.PurchasePrestigeUpgrade)

	g.POST("/friends/:id", h.AddFriend)
	g.POST("/friends/:id/accept", h.AcceptFriend)
	g.DELETE("/friends/:id", h.RemoveFriend)
	g.POST("/guilds", h.CreateGuild)
	g.POST("/guilds/:id/join", h.JoinGuild)
	g.POST("/guilds/leave", h.LeaveGuild)

	g.POST("/journal/reviews", h.SaveWeeklyReview)
	g.POST("/journal/fear-settings", h.SaveFearSetting)

	g.POST("/ui/hide/:signal", h.Hide)
	g.DELETE("/ui/toasts/:id", h.HideToast)
	g.POST("/ui/tutorial/advance", h.AdvanceTutorial)
	g.POST("/ui/tutorial/complete", h.CompleteTutorial)
	g.POST("/ui/ai-chat/toggle", h.ToggleAIChat)
	g.PUT("/ui/review-date", h.SetReviewDate)
}
