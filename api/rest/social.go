package rest

import (
	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/lifeos/game/action"
	"github.com/kasuganosora/lifeos/model"
)

// AddFriend sends a friend request. Live players see it immediately.
// POST /api/friends/:id
func (h *GameHandler) AddFriend(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	v, err := h.reg.SendFriendRequest(c.Request.Context(), sess.AccountID, c.Param("id"))
	h.respond(c, sess, v, err)
}

// AcceptFriend accepts an incoming request.
// POST /api/friends/:id/accept
func (h *GameHandler) AcceptFriend(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	v, err := h.reg.AcceptFriend(c.Request.Context(), sess.AccountID, c.Param("id"))
	h.respond(c, sess, v, err)
}

// RemoveFriend ends a friendship or withdraws a request.
// DELETE /api/friends/:id
func (h *GameHandler) RemoveFriend(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	v, err := h.reg.RemoveFriend(c.Request.Context(), sess.AccountID, c.Param("id"))
	h.respond(c, sess, v, err)
}

// CreateGuild founds a guild with the player as its first member.
// POST /api/guilds
func (h *GameHandler) CreateGuild(c *gin.Context) {
	var in model.GuildInput
	if !bind(c, &in) {
		return
	}
	h.dispatch(c, "createGuild", "create_guild", func(s *model.GameState, env action.Env) model.Patch {
		return action.CreateGuild(s, env, in)
	})
}

// JoinGuild joins a listed guild.
// POST /api/guilds/:id/join
func (h *GameHandler) JoinGuild(c *gin.Context) {
	id := c.Param("id")
	h.dispatch(c, "joinGuild-"+id, "join_guild", func(s *model.GameState, env action.Env) model.Patch {
		return action.JoinGuild(s, env, id)
	})
}

// LeaveGuild leaves the current guild.
// POST /api/guilds/leave
func (h *GameHandler) LeaveGuild(c *gin.Context) {
	h.dispatch(c, "leaveGuild", "leave_guild", action.LeaveGuild)
}
