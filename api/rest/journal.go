package rest

import (
	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/lifeos/game/action"
	"github.com/kasuganosora/lifeos/model"
)

// SaveWeeklyReview stores a weekly review.
// POST /api/journal/reviews
func (h *GameHandler) SaveWeeklyReview(c *gin.Context) {
	var in model.WeeklyReviewInput
	if !bind(c, &in) {
		return
	}
	h.dispatch(c, "saveReview", "save_weekly_review", func(s *model.GameState, env action.Env) model.Patch {
		return action.SaveWeeklyReview(s, env, in)
	})
}

// SaveFearSetting stores a fear-setting exercise.
// POST /api/journal/fear-settings
func (h *GameHandler) SaveFearSetting(c *gin.Context) {
	var in model.FearSettingInput
	if !bind(c, &in) {
		return
	}
	h.dispatch(c, "saveFearSetting", "save_fear_setting", func(s *model.GameState, env action.Env) model.Patch {
		return action.SaveFearSetting(s, env, in)
	})
}
