// Package action implements one pure handler per player command. A handler
// reads a snapshot of the game state and returns the patch to merge into it;
// it never mutates the snapshot. Rejections (unknown ids, insufficient
// funds, duplicate check-ins) are ordinary patches carrying a toast.
package action

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kasuganosora/lifeos/game/badge"
	"github.com/kasuganosora/lifeos/game/catalog"
	"github.com/kasuganosora/lifeos/game/progression"
	"github.com/kasuganosora/lifeos/model"
)

// Env is the per-call context of a handler.
type Env struct {
	Now     time.Time
	Catalog *catalog.Catalog
	NewID   func() string
	// Users resolves befriendable players. Nil falls back to the catalog
	// directory.
	Users func(id string) (model.DirectoryUser, bool)
}

// NewEnv returns an Env stamped with now that mints uuid ids.
func NewEnv(cat *catalog.Catalog, now time.Time) Env {
	return Env{Now: now, Catalog: cat, NewID: uuid.NewString}
}

func (env Env) user(id string) (model.DirectoryUser, bool) {
	if env.Users != nil {
		return env.Users(id)
	}
	return env.Catalog.User(id)
}

func (env Env) toast(typ model.ToastType, msg string) model.Toast {
	return model.Toast{ID: env.NewID(), Message: msg, Type: typ}
}

func (env Env) info(format string, args ...any) model.Patch {
	return model.Patch{Toasts: []model.Toast{env.toast(model.ToastInfo, fmt.Sprintf(format, args...))}}
}

func (env Env) fail(format string, args ...any) model.Patch {
	return model.Patch{Toasts: []model.Toast{env.toast(model.ToastError, fmt.Sprintf(format, args...))}}
}

func (env Env) success(format string, args ...any) []model.Toast {
	return []model.Toast{env.toast(model.ToastSuccess, fmt.Sprintf(format, args...))}
}

// pushEvent prepends an event and keeps at most model.MaxEvents entries.
func (env Env) pushEvent(events []model.GameEvent, typ model.EventType, format string, args ...any) []model.GameEvent {
	e := model.GameEvent{ID: env.NewID(), Timestamp: env.Now, Message: fmt.Sprintf(format, args...), Type: typ}
	keep := min(len(events), model.MaxEvents-1)
	out := make([]model.GameEvent, 0, keep+1)
	out = append(out, e)
	return append(out, events[:keep]...)
}

// reward applies the standing multipliers of s to an action worth baseXP.
func (env Env) reward(s *model.GameState, baseXP int) (xp, coins int) {
	return progression.Reward(baseXP, s.Settings, s.Character, env.Catalog.PrestigeUpgrades)
}

// gain credits xp and coins to next and logs it, plus a level_up event
// when the xp crossed a threshold.
func (env Env) gain(next *model.GameState, xp, coins int, typ model.EventType, format string, args ...any) {
	var leveled bool
	next.Character, leveled = progression.AddXP(next.Character, xp)
	next.Character.Coins += coins
	next.Events = env.pushEvent(next.Events, typ, format, args...)
	if leveled {
		next.Events = env.pushEvent(next.Events, model.EventLevelUp, "Reached Level %d!", next.Character.Level)
	}
}

// unlockBadge grants the first badge the transition prev -> next makes
// eligible. At most one badge unlocks per action; the rest follow on later
// actions.
func (env Env) unlockBadge(prev, next *model.GameState) *model.Badge {
	b := badge.Next(prev, next, env.Catalog.Badges)
	if b == nil {
		return nil
	}
	var leveled bool
	next.Character, leveled = badge.Grant(next.Character, *b, env.Now, env.Catalog.Item)
	next.Events = env.pushEvent(next.Events, model.EventBadgeUnlock, `Unlocked Badge: "%s"!`, b.Name)
	if leveled {
		next.Events = env.pushEvent(next.Events, model.EventLevelUp, "Reached Level %d!", next.Character.Level)
	}
	return b
}

// withBadges runs the badge evaluation and, when something unlocked, makes
// sure p carries the character, the events and the notification.
func (env Env) withBadges(p model.Patch, prev, next *model.GameState) model.Patch {
	if b := env.unlockBadge(prev, next); b != nil {
		p.Character = &next.Character
		p.Events = &next.Events
		p.BadgeNotification = b
	}
	return p
}
