package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/lifeos/game/action"
	"github.com/kasuganosora/lifeos/game/store"
	"github.com/kasuganosora/lifeos/model"
)

type addQuestRequest struct {
	model.QuestInput
	VoidThoughtID string `json:"voidThoughtId"`
}

// AddQuest creates a quest, optionally promoting a thought from the void.
// POST /api/quests
func (h *GameHandler) AddQuest(c *gin.Context) {
	var req addQuestRequest
	if !bind(c, &req) {
		return
	}
	h.dispatch(c, "addQuest", "add_quest", func(s *model.GameState, env action.Env) model.Patch {
		return action.AddQuest(s, env, req.QuestInput, req.VoidThoughtID)
	})
}

// ToggleObjective completes or reopens an objective.
// POST /api/quests/:id/objectives/:oid/toggle
func (h *GameHandler) ToggleObjective(c *gin.Context) {
	questID, objectiveID := c.Param("id"), c.Param("oid")
	h.dispatch(c, "objective-"+objectiveID, "toggle_objective", func(s *model.GameState, env action.Env) model.Patch {
		return action.ToggleObjective(s, env, questID, objectiveID)
	})
}

type thoughtRequest struct {
	Text string `json:"text" binding:"required"`
}

// AddThought captures a note in the void.
// POST /api/void
func (h *GameHandler) AddThought(c *gin.Context) {
	var req thoughtRequest
	if !bind(c, &req) {
		return
	}
	h.dispatch(c, "addThought", "add_thought", func(s *model.GameState, env action.Env) model.Patch {
		return action.AddThoughtToVoid(s, env, req.Text)
	})
}

// StartQuestFromTemplate preloads the quest form with a catalog template.
// POST /api/quests/from-template/:id
func (h *GameHandler) StartQuestFromTemplate(c *gin.Context) {
	t, ok := h.reg.Catalog().QuestTemplate(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "quest template not found"})
		return
	}
	h.apply(c, store.StartQuestFromTemplate{Template: t})
}

// ClearQuestTemplate drops the preloaded template.
// DELETE /api/quests/template
func (h *GameHandler) ClearQuestTemplate(c *gin.Context) {
	h.apply(c, store.ClearQuestTemplate{})
}

// StartBossFight opens the boss fight screen for a boss quest.
// POST /api/quests/:id/boss-fight
func (h *GameHandler) StartBossFight(c *gin.Context) {
	h.apply(c, store.StartBossFight{QuestID: c.Param("id")})
}

// EndBossFight closes the boss fight screen.
// DELETE /api/boss-fight
func (h *GameHandler) EndBossFight(c *gin.Context) {
	h.apply(c, store.EndBossFight{})
}
