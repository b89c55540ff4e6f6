package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/lifeos/game/companion"
)

// CompanionHandler serves conversations with the assistant.
type CompanionHandler struct {
	game *GameHandler
	svc  *companion.Service
}

// NewCompanionHandler creates a CompanionHandler.
func NewCompanionHandler(game *GameHandler, svc *companion.Service) *CompanionHandler {
	return &CompanionHandler{game: game, svc: svc}
}

type chatRequest struct {
	Message string `json:"message" binding:"required,max=2000"`
	Screen  string `json:"screen"`
}

// Chat sends a message and returns the assistant's answer.
// POST /api/companion/chat
func (h *CompanionHandler) Chat(c *gin.Context) {
	var req chatRequest
	if !bind(c, &req) {
		return
	}
	sess, ok := h.game.session(c)
	if !ok {
		return
	}
	msg, err := h.svc.Chat(c.Request.Context(), sess.Dispatcher, req.Message, req.Screen)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s := sess.Store.Snapshot()
	c.JSON(http.StatusOK, gin.H{"message": msg, "version": s.Version, "state": s})
}

// AcceptPlan turns a suggested quest plan into a quest.
// POST /api/companion/plans/:id/accept
func (h *CompanionHandler) AcceptPlan(c *gin.Context) {
	sess, ok := h.game.session(c)
	if !ok {
		return
	}
	v, err := h.svc.AcceptPlan(c.Request.Context(), sess.Dispatcher, c.Param("id"))
	if errors.Is(err, companion.ErrNoPlan) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no quest plan on that message"})
		return
	}
	h.game.respond(c, sess, v, err)
}

type chronicleRequest struct {
	Content string `json:"content"`
}

// SubmitChronicle has the assistant grade a journal entry and saves it.
// A failed grading answers with the state, which carries the error toast.
// POST /api/journal/chronicle
func (h *CompanionHandler) SubmitChronicle(c *gin.Context) {
	var req chronicleRequest
	if !bind(c, &req) {
		return
	}
	sess, ok := h.game.session(c)
	if !ok {
		return
	}
	v, err := h.svc.AnalyzeChronicle(c.Request.Context(), sess.Dispatcher, req.Content)
	if errors.Is(err, companion.ErrAnalysisFailed) {
		c.JSON(http.StatusBadGateway, gin.H{"error": companion.AnalysisFailedText, "version": v, "state": sess.Store.Snapshot()})
		return
	}
	h.game.respond(c, sess, v, err)
}

// Register mounts the companion routes on an authenticated group.
func (h *CompanionHandler) Register(g *gin.RouterGroup) {
	g.POST("/companion/chat", h.Chat)
	g.POST("/companion/plans/:id/accept", h.AcceptPlan)
	g.POST("/journal/chronicle", h.SubmitChronicle)
}
