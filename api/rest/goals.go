package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/lifeos/game/action"
	"github.com/kasuganosora/lifeos/model"
)

// AddGoal creates a goal.
// POST /api/goals
func (h *GameHandler) AddGoal(c *gin.Context) {
	var in model.GoalInput
	if !bind(c, &in) {
		return
	}
	h.dispatch(c, "addGoal", "add_goal", func(s *model.GameState, env action.Env) model.Patch {
		return action.AddGoal(s, env, in)
	})
}

// UpdateGoal edits a goal.
// PUT /api/goals/:id
func (h *GameHandler) UpdateGoal(c *gin.Context) {
	id := c.Param("id")
	var u model.GoalUpdate
	if !bind(c, &u) {
		return
	}
	h.dispatch(c, "updateGoal-"+id, "update_goal", func(s *model.GameState, env action.Env) model.Patch {
		return action.UpdateGoal(s, env, id, u)
	})
}

// DeleteGoal removes a goal and unlinks its quests.
// DELETE /api/goals/:id
func (h *GameHandler) DeleteGoal(c *gin.Context) {
	id := c.Param("id")
	h.dispatch(c, "deleteGoal-"+id, "delete_goal", func(s *model.GameState, env action.Env) model.Patch {
		return action.DeleteGoal(s, env, id)
	})
}

// GoalProgress reports how many of a goal's quests are archived.
// GET /api/goals/:id/progress
func (h *GameHandler) GoalProgress(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var archived, total int
	sess.Store.Read(func(s *model.GameState) {
		archived, total = action.GoalProgress(s, c.Param("id"))
	})
	c.JSON(http.StatusOK, gin.H{"archived": archived, "total": total})
}

// AddSkill creates a skill.
// POST /api/skills
func (h *GameHandler) AddSkill(c *gin.Context) {
	var in model.SkillInput
	if !bind(c, &in) {
		return
	}
	h.dispatch(c, "addSkill", "add_skill", func(s *model.GameState, env action.Env) model.Patch {
		return action.AddSkill(s, env, in)
	})
}
