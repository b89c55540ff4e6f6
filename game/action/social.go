package action

import (
	"slices"
	"strings"

	"github.com/kasuganosora/lifeos/model"
)

// AddFriend sends a friend request to a directory user. An existing
// relationship of any status is left alone.
func AddFriend(s *model.GameState, env Env, friendID string) model.Patch {
	if _, _, ok := s.FindFriend(friendID); ok {
		return model.Patch{}
	}
	if friendID == s.Character.ID {
		return env.fail("You cannot befriend yourself.")
	}
	u, ok := env.user(friendID)
	if !ok {
		return env.fail("User not found.")
	}
	next := s.Clone()
	next.Friends = append(next.Friends, friendFrom(u, model.FriendPendingOut))
	return model.Patch{
		Friends: &next.Friends,
		Toasts:  env.success("Friend request sent to %s.", u.Name),
	}
}

// ReceiveFriendRequest records an incoming request from another player. If
// we had already asked them, the two requests meet and both become friends.
func ReceiveFriendRequest(s *model.GameState, env Env, from model.DirectoryUser) model.Patch {
	f, i, ok := s.FindFriend(from.ID)
	next := s.Clone()
	switch {
	case !ok:
		next.Friends = append(next.Friends, friendFrom(from, model.FriendPendingIn))
	case f.Status == model.FriendPendingOut:
		next.Friends[i].Status = model.FriendAccepted
	default:
		return model.Patch{}
	}
	return model.Patch{Friends: &next.Friends}
}

// AcceptFriendRequest turns a PENDING_IN request into a friendship.
func AcceptFriendRequest(s *model.GameState, env Env, friendID string) model.Patch {
	f, i, ok := s.FindFriend(friendID)
	if !ok || f.Status != model.FriendPendingIn {
		return env.fail("No pending request from that player.")
	}
	next := s.Clone()
	next.Friends[i].Status = model.FriendAccepted
	return model.Patch{Friends: &next.Friends}
}

// RemoveFriend deletes the relationship whatever its status, which covers
// declining, cancelling and unfriending.
func RemoveFriend(s *model.GameState, env Env, friendID string) model.Patch {
	if _, _, ok := s.FindFriend(friendID); !ok {
		return model.Patch{}
	}
	next := s.Clone()
	next.Friends = slices.DeleteFunc(next.Friends, func(f model.Friend) bool { return f.ID == friendID })
	return model.Patch{Friends: &next.Friends}
}

func friendFrom(u model.DirectoryUser, status model.FriendStatus) model.Friend {
	return model.Friend{ID: u.ID, Name: u.Name, AvatarURL: u.AvatarURL, Level: u.Level, Status: status}
}

// JoinGuild makes guildID the player's guild.
func JoinGuild(s *model.GameState, env Env, guildID string) model.Patch {
	if !slices.ContainsFunc(s.Guilds, func(g model.Guild) bool { return g.ID == guildID }) {
		return env.fail("Guild not found.")
	}
	next := s.Clone()
	next.Character.GuildID = model.Ptr(guildID)
	return model.Patch{Character: &next.Character}
}

// LeaveGuild clears the player's guild; without one it is a no-op.
func LeaveGuild(s *model.GameState, env Env) model.Patch {
	if s.Character.GuildID == nil {
		return model.Patch{}
	}
	next := s.Clone()
	next.Character.GuildID = nil
	return model.Patch{Character: &next.Character}
}

// CreateGuild founds a guild, ranked last, and joins it.
func CreateGuild(s *model.GameState, env Env, in model.GuildInput) model.Patch {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return env.fail("Guild name is required.")
	}
	g := model.Guild{
		ID:          env.NewID(),
		Name:        name,
		Description: in.Description,
		Icon:        in.Icon,
		MemberCount: 1,
		Rank:        len(s.Guilds) + 1,
	}
	next := s.Clone()
	next.Guilds = append(next.Guilds, g)
	next.Character.GuildID = model.Ptr(g.ID)
	return model.Patch{Guilds: &next.Guilds, Character: &next.Character}
}
