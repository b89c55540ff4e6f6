package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/lifeos/game/ranking"
	"github.com/kasuganosora/lifeos/game/store"
	mw "github.com/kasuganosora/lifeos/middleware"
	"github.com/kasuganosora/lifeos/model"
	"go.uber.org/zap"
)

// RankingHandler serves the global leaderboard.
type RankingHandler struct {
	board  *ranking.Board
	reg    *store.Registry
	size   int
	logger *zap.Logger
}

// NewRankingHandler creates a RankingHandler listing size players by
// default.
func NewRankingHandler(board *ranking.Board, reg *store.Registry, size int, logger *zap.Logger) *RankingHandler {
	if size <= 0 {
		size = 50
	}
	return &RankingHandler{board: board, reg: reg, size: size, logger: logger}
}

const rankingMax = 100

// Leaderboard returns the top players and the caller's own rank.
// GET /api/leaderboard?limit=20
func (h *RankingHandler) Leaderboard(c *gin.Context) {
	limit := h.size
	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 && l <= rankingMax {
		limit = l
	}
	ctx := c.Request.Context()
	entries, err := h.board.Top(ctx, limit)
	if err != nil {
		h.logger.Error("leaderboard", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "leaderboard unavailable"})
		return
	}

	resp := gin.H{"leaderboard": entries}
	if sess, ok := h.reg.Get(mw.GetAccountID(c)); ok {
		var id string
		sess.Store.Read(func(s *model.GameState) {
			if s.IsOnboarded {
				id = s.Character.ID
			}
		})
		if id != "" {
			if rank, err := h.board.Rank(ctx, id); err == nil && rank > 0 {
				resp["myRank"] = rank
			}
		}
	}
	c.JSON(http.StatusOK, resp)
}
