package action

import (
	"strings"

	"github.com/kasuganosora/lifeos/game/progression"
	"github.com/kasuganosora/lifeos/model"
)

// CheckInHabit completes a GOOD habit for today. A second check-in on the
// same calendar day only yields an info toast.
func CheckInHabit(s *model.GameState, env Env, habitID string) model.Patch {
	h, i, ok := s.FindHabit(habitID)
	if !ok {
		return env.fail("Habit not found.")
	}
	if h.Type != model.HabitGood {
		return env.fail(`"%s" cannot be checked in.`, h.Name)
	}
	today := progression.DateKey(env.Now)
	if s.HasLog(h.ID, today) {
		return env.info(`Already completed "%s" today!`, h.Name)
	}

	next := s.Clone()
	streak := 1
	if h.LastCheckedIn != nil && progression.IsYesterday(*h.LastCheckedIn, env.Now) {
		streak = h.Streak + 1
	}
	next.Habits[i].Streak = streak
	next.Habits[i].LastCheckedIn = model.Ptr(env.Now)
	next.HabitLogs = append(next.HabitLogs, model.HabitLogEntry{HabitID: h.ID, Date: today})

	xp, coins := env.reward(s, h.XPValue)
	env.gain(next, xp, coins, model.EventXPGain, `Gained %d XP from "%s"`, xp, h.Name)

	p := model.Patch{
		Character: &next.Character,
		Habits:    &next.Habits,
		HabitLogs: &next.HabitLogs,
		Events:    &next.Events,
	}
	return env.withBadges(p, s, next)
}

// FightAffliction costs the character the affliction's hp loss, floored at
// zero. It can be repeated any number of times a day.
func FightAffliction(s *model.GameState, env Env, habitID string) model.Patch {
	h, _, ok := s.FindHabit(habitID)
	if !ok {
		return env.fail("Habit not found.")
	}
	if h.Type != model.HabitAffliction || h.HPLoss == nil {
		return env.fail(`"%s" is not an affliction.`, h.Name)
	}
	loss := *h.HPLoss

	next := s.Clone()
	next.Character.HP = max(0, next.Character.HP-loss)
	next.Events = env.pushEvent(next.Events, model.EventHPLoss,
		"Lost %d HP in the fight against your affliction: '%s'", loss, h.Name)

	return model.Patch{
		Character:       &next.Character,
		Events:          &next.Events,
		BattleAnimation: &model.BattleAnimation{HPLoss: loss},
	}
}

// AddHabit prepends a new habit with no streak and no check-in.
func AddHabit(s *model.GameState, env Env, in model.HabitInput) model.Patch {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return env.fail("Habit name is required.")
	}
	typ := in.Type
	if typ == "" {
		typ = model.HabitGood
	}
	if typ != model.HabitGood && typ != model.HabitAffliction {
		return env.fail("Unknown habit type %q.", typ)
	}
	if in.StackWithHabitID != nil {
		if _, _, ok := s.FindHabit(*in.StackWithHabitID); !ok {
			return env.fail("Habit to stack with not found.")
		}
	}

	h := model.Habit{
		ID:               env.NewID(),
		Name:             name,
		Type:             typ,
		SkillID:          in.SkillID,
		XPValue:          max(0, in.XPValue),
		HPLoss:           in.HPLoss,
		StackWithHabitID: in.StackWithHabitID,
	}.Clone()
	if typ == model.HabitAffliction {
		h.XPValue = 0
		if h.HPLoss == nil {
			h.HPLoss = model.Ptr(env.Catalog.Rules.AfflictionTemplateHPLoss)
		}
	}

	next := s.Clone()
	next.Habits = append([]model.Habit{h}, next.Habits...)
	return model.Patch{
		Habits: &next.Habits,
		Toasts: env.success(`New habit "%s" created.`, h.Name),
	}
}

// AddHabitFromTemplate creates a habit from a catalog template.
func AddHabitFromTemplate(s *model.GameState, env Env, templateID string) model.Patch {
	t, ok := env.Catalog.HabitTemplate(templateID)
	if !ok {
		return env.fail("Habit template not found.")
	}
	in := model.HabitInput{Name: t.Name, Type: t.Type, SkillID: t.SkillID, XPValue: t.XPValue}
	if t.Type == model.HabitAffliction {
		in.HPLoss = model.Ptr(env.Catalog.Rules.AfflictionTemplateHPLoss)
	}
	return AddHabit(s, env, in)
}

// UpdateHabit applies u to the habit; streak and logs are untouched.
func UpdateHabit(s *model.GameState, env Env, habitID string, u model.HabitUpdate) model.Patch {
	_, i, ok := s.FindHabit(habitID)
	if !ok {
		return env.fail("Habit not found.")
	}
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		return env.fail("Habit name is required.")
	}
	if u.StackWithHabitID != nil && *u.StackWithHabitID == habitID {
		return env.fail("A habit cannot stack with itself.")
	}

	next := s.Clone()
	next.Habits[i] = u.Apply(next.Habits[i])
	return model.Patch{
		Habits: &next.Habits,
		Toasts: []model.Toast{env.toast(model.ToastInfo, "Habit updated.")},
	}
}
