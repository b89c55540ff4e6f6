// Package badge decides which achievement a state transition unlocks and
// applies its one-time reward.
package badge

import (
	"time"

	"github.com/kasuganosora/lifeos/game/progression"
	"github.com/kasuganosora/lifeos/model"
)

// Counters are the aggregates badge criteria are checked against.
type Counters struct {
	Level           int
	QuestsCompleted int // archived quests
	HabitsCompleted int // habit log entries
	MaxStreak       int
}

// CountersOf derives the badge counters from a state.
func CountersOf(s *model.GameState) Counters {
	c := Counters{Level: s.Character.Level, HabitsCompleted: len(s.HabitLogs)}
	for _, q := range s.Quests {
		if q.Status == model.QuestArchived {
			c.QuestsCompleted++
		}
	}
	for _, h := range s.Habits {
		if h.Streak > c.MaxStreak {
			c.MaxStreak = h.Streak
		}
	}
	return c
}

// Satisfied reports whether b's criterion holds for c.
func (c Counters) Satisfied(b model.Badge) bool {
	v := b.Criteria.Value
	switch b.Criteria.Type {
	case model.CriterionLevel:
		return c.Level >= v
	case model.CriterionQuestsCompleted:
		return c.QuestsCompleted >= v
	case model.CriterionHabitsCompleted:
		return c.HabitsCompleted >= v
	case model.CriterionStreak:
		return c.MaxStreak >= v
	}
	return false
}

// changed is the cheap dirty check run before scanning the catalog.
func changed(prev, next *model.GameState) bool {
	if prev.Character.Level != next.Character.Level ||
		len(prev.Quests) != len(next.Quests) ||
		len(prev.HabitLogs) != len(next.HabitLogs) ||
		len(prev.Habits) != len(next.Habits) {
		return true
	}
	for i := range prev.Habits {
		if prev.Habits[i].ID != next.Habits[i].ID || prev.Habits[i].Streak != next.Habits[i].Streak {
			return true
		}
	}
	for i := range prev.Quests {
		if prev.Quests[i].Status != next.Quests[i].Status {
			return true
		}
	}
	return false
}

// Next returns the next unlockable badge for the transition prev -> next,
// or nil. It returns at most one badge per call: the first locked badge in
// catalog order whose criterion next satisfies. Callers wanting every
// eligible badge must apply the result and call again.
func Next(prev, next *model.GameState, badges []model.Badge) *model.Badge {
	if !changed(prev, next) {
		return nil
	}
	counters := CountersOf(next)
	for _, b := range badges {
		if next.Character.HasBadge(b.ID) {
			continue
		}
		if counters.Satisfied(b) {
			found := b
			return &found
		}
	}
	return nil
}

// ItemLookup resolves reward item ids.
type ItemLookup func(id string) (model.Item, bool)

// Grant records b as unlocked at now and pays its reward: coins, xp through
// AddXP (which may level up again) and the reward item. Boost items take
// effect at once; other items go to the inventory unless already owned.
// Granting an already unlocked badge is a no-op.
func Grant(c model.Character, b model.Badge, now time.Time, items ItemLookup) (model.Character, bool) {
	if c.HasBadge(b.ID) {
		return c, false
	}
	c = c.Clone()
	c.UnlockedBadges = append(c.UnlockedBadges, model.UnlockedBadge{BadgeID: b.ID, UnlockedAt: now})
	c.Coins += b.Reward.Coins
	xp := b.Reward.XP

	if b.Reward.ItemID != "" {
		if it, ok := items(b.Reward.ItemID); ok && it.Type == model.ItemBoost {
			if it.Effect != nil {
				xp += it.Effect.XP
				c.Coins += it.Effect.Coins
				c.HP = min(c.MaxHP, c.HP+it.Effect.HP)
			}
		} else if !c.Owns(b.Reward.ItemID) {
			c.Inventory = append(c.Inventory, b.Reward.ItemID)
		}
	}

	return progression.AddXP(c, xp)
}
