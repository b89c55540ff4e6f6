package rest

import (
	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/lifeos/game/action"
	"github.com/kasuganosora/lifeos/game/store"
	"github.com/kasuganosora/lifeos/model"
)

// finishTutorial closes the tutorial once the player creates a habit.
func (h *GameHandler) finishTutorial(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	if sess.Store.Snapshot().TutorialStep > 0 {
		_, _ = sess.Store.Apply(store.CompleteTutorial{})
	}
}

// AddHabit creates a habit.
// POST /api/habits
func (h *GameHandler) AddHabit(c *gin.Context) {
	var in model.HabitInput
	if !bind(c, &in) {
		return
	}
	h.finishTutorial(c)
	h.dispatch(c, "addHabit", "add_habit", func(s *model.GameState, env action.Env) model.Patch {
		return action.AddHabit(s, env, in)
	})
}

// AddHabitFromTemplate creates a habit from a catalog template.
// POST /api/habits/from-template/:id
func (h *GameHandler) AddHabitFromTemplate(c *gin.Context) {
	id := c.Param("id")
	h.finishTutorial(c)
	h.dispatch(c, "addHabit", "add_habit_from_template", func(s *model.GameState, env action.Env) model.Patch {
		return action.AddHabitFromTemplate(s, env, id)
	})
}

// UpdateHabit edits a habit.
// PUT /api/habits/:id
func (h *GameHandler) UpdateHabit(c *gin.Context) {
	id := c.Param("id")
	var u model.HabitUpdate
	if !bind(c, &u) {
		return
	}
	h.dispatch(c, "updateHabit-"+id, "update_habit", func(s *model.GameState, env action.Env) model.Patch {
		return action.UpdateHabit(s, env, id, u)
	})
}

// CheckInHabit records today's check-in of a good habit.
// POST /api/habits/:id/checkin
func (h *GameHandler) CheckInHabit(c *gin.Context) {
	id := c.Param("id")
	h.dispatch(c, "habit-"+id, "check_in_habit", func(s *model.GameState, env action.Env) model.Patch {
		return action.CheckInHabit(s, env, id)
	})
}

// FightAffliction records a lapse of an affliction habit.
// POST /api/habits/:id/fight
func (h *GameHandler) FightAffliction(c *gin.Context) {
	id := c.Param("id")
	h.dispatch(c, "habit-"+id, "fight_affliction", func(s *model.GameState, env action.Env) model.Patch {
		return action.FightAffliction(s, env, id)
	})
}
