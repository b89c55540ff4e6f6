package action

import (
	"testing"
	"time"

	"github.com/kasuganosora/lifeos/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckInHabit_Basic(t *testing.T) {
	env := testEnv()
	s := quiet(seed())

	p := CheckInHabit(s, env, "h1")
	require.NotNil(t, p.Character)
	assert.Equal(t, 20, p.Character.XP)
	assert.Equal(t, 1260, p.Character.Coins)
	assert.Empty(t, p.Toasts)

	require.NotNil(t, p.Habits)
	h := (*p.Habits)[0]
	assert.Equal(t, 1, h.Streak, "last check-in was months ago")
	require.NotNil(t, h.LastCheckedIn)
	assert.Equal(t, now, *h.LastCheckedIn)

	require.NotNil(t, p.HabitLogs)
	assert.Equal(t, []model.HabitLogEntry{{HabitID: "h1", Date: "2024-05-15"}}, *p.HabitLogs)

	require.NotNil(t, p.Events)
	assert.Equal(t, `Gained 20 XP from "Morning Run"`, (*p.Events)[0].Message)
	assert.Equal(t, model.EventXPGain, (*p.Events)[0].Type)
	assert.Len(t, *p.Events, 3)

	assert.Equal(t, 5, s.Habits[0].Streak, "snapshot untouched")
	assert.Empty(t, s.HabitLogs)
}

func TestCheckInHabit_SameDayIsIdempotent(t *testing.T) {
	env := testEnv()
	s := seed()

	first := CheckInHabit(s, env, "h1")
	after := first.Merge(s)

	again := CheckInHabit(after, env, "h1")
	assert.True(t, again.OnlyToasts())
	requireToast(t, again, model.ToastInfo, `Already completed "Morning Run" today!`)

	merged := again.Merge(after)
	merged.Toasts = after.Toasts
	assert.Equal(t, after, merged)
}

func TestCheckInHabit_Streak(t *testing.T) {
	cases := []struct {
		name string
		last time.Time
		want int
	}{
		{"yesterday late evening", time.Date(2024, 5, 14, 23, 59, 0, 0, time.UTC), 6},
		{"yesterday early morning", time.Date(2024, 5, 14, 0, 1, 0, 0, time.UTC), 6},
		{"two days ago", time.Date(2024, 5, 13, 23, 59, 0, 0, time.UTC), 1},
		{"earlier today without a log", time.Date(2024, 5, 15, 7, 0, 0, 0, time.UTC), 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := quiet(seed())
			s.Habits[0].LastCheckedIn = model.Ptr(tc.last)

			p := CheckInHabit(s, testEnv(), "h1")
			require.NotNil(t, p.Habits)
			assert.Equal(t, tc.want, (*p.Habits)[0].Streak)
		})
	}
}

func TestCheckInHabit_ConsecutiveDays(t *testing.T) {
	env := testEnv()
	s := quiet(seed())
	s.Habits[0].Streak = 0
	s.Habits[0].LastCheckedIn = nil

	for day := 0; day < 3; day++ {
		env.Now = now.AddDate(0, 0, day)
		s = CheckInHabit(s, env, "h1").Merge(s)
	}
	assert.Equal(t, 3, s.Habits[0].Streak)
	assert.Len(t, s.HabitLogs, 3)

	env.Now = now.AddDate(0, 0, 5)
	s = CheckInHabit(s, env, "h1").Merge(s)
	assert.Equal(t, 1, s.Habits[0].Streak)
}

func TestCheckInHabit_PrestigeMultipliers(t *testing.T) {
	s := quiet(seed())
	s.Character.PurchasedPrestigeUpgrades = []string{"pu1", "pu3", "pu2"}

	p := CheckInHabit(s, testEnv(), "h1")
	require.NotNil(t, p.Character)
	assert.Equal(t, 24, p.Character.XP, "20 * 1.1 * 1.1")
	assert.Equal(t, 1250+11, p.Character.Coins, "10 * 1.15")
}

func TestCheckInHabit_LevelUpEvent(t *testing.T) {
	s := quiet(seed())
	s.Character.XP = 90

	p := CheckInHabit(s, testEnv(), "h1")
	require.NotNil(t, p.Character)
	assert.Equal(t, 2, p.Character.Level)
	assert.Equal(t, 10, p.Character.XP)
	events := *p.Events
	assert.Equal(t, "Reached Level 2!", events[0].Message)
	assert.Equal(t, model.EventLevelUp, events[0].Type)
	assert.Equal(t, model.EventXPGain, events[1].Type)
}

func TestCheckInHabit_UnlocksOneBadgePerAction(t *testing.T) {
	s := seed() // h2 already has a 12 day streak

	p := CheckInHabit(s, testEnv(), "h1")
	require.NotNil(t, p.BadgeNotification)
	assert.Equal(t, "b1", p.BadgeNotification.ID)
	c := p.Character
	require.Len(t, c.UnlockedBadges, 1)
	assert.Equal(t, model.UnlockedBadge{BadgeID: "b1", UnlockedAt: now}, c.UnlockedBadges[0])
	assert.Equal(t, 1, c.Level)
	assert.Equal(t, 20+50, c.XP)
	assert.Equal(t, 1250+10+25, c.Coins)
	s = p.Merge(s)

	// b5 (streak) waits for the next action, and its xp reaches level 3.
	env := testEnv()
	env.Now = now.AddDate(0, 0, 1)
	p = CheckInHabit(s, env, "h1")
	require.NotNil(t, p.BadgeNotification)
	assert.Equal(t, "b5", p.BadgeNotification.ID)
	assert.Len(t, p.Character.UnlockedBadges, 2)
	assert.Equal(t, 3, p.Character.Level)
	s = p.Merge(s)

	// b3 (level 2) follows on the action after that.
	env.Now = now.AddDate(0, 0, 2)
	p = CheckInHabit(s, env, "h1")
	require.NotNil(t, p.BadgeNotification)
	assert.Equal(t, "b3", p.BadgeNotification.ID)

	var unlocked []string
	for _, b := range p.Character.UnlockedBadges {
		unlocked = append(unlocked, b.BadgeID)
	}
	assert.Equal(t, []string{"b1", "b5", "b3"}, unlocked)
	assert.Less(t, p.Character.XP, p.Character.XPToNextLevel)
}

func TestCheckInHabit_Rejections(t *testing.T) {
	env := testEnv()
	s := seed()

	requireToast(t, CheckInHabit(s, env, "nope"), model.ToastError, "Habit not found.")
	requireToast(t, CheckInHabit(s, env, "h3"), model.ToastError, `"Eat Junk Food" cannot be checked in.`)
}

func TestFightAffliction(t *testing.T) {
	env := testEnv()
	s := seed()

	p := FightAffliction(s, env, "h3")
	require.NotNil(t, p.Character)
	assert.Equal(t, 75, p.Character.HP)
	assert.Equal(t, &model.BattleAnimation{HPLoss: 10}, p.BattleAnimation)
	assert.Equal(t, "Lost 10 HP in the fight against your affliction: 'Eat Junk Food'", (*p.Events)[0].Message)
	assert.Equal(t, model.EventHPLoss, (*p.Events)[0].Type)
	assert.Nil(t, p.Habits)

	// repeatable, and floored at zero
	s = p.Merge(s)
	s.Character.HP = 4
	p = FightAffliction(s, env, "h3")
	assert.Equal(t, 0, p.Character.HP)
	assert.Equal(t, 0, p.Character.XP)

	requireToast(t, FightAffliction(s, env, "h1"), model.ToastError, `"Morning Run" is not an affliction.`)
}

func TestAddHabit(t *testing.T) {
	env := testEnv()
	s := seed()

	p := AddHabit(s, env, model.HabitInput{Name: "  Meditate ", SkillID: "health", XPValue: 15})
	require.NotNil(t, p.Habits)
	require.Len(t, *p.Habits, 4)
	h := (*p.Habits)[0]
	assert.Equal(t, "Meditate", h.Name)
	assert.Equal(t, model.HabitGood, h.Type)
	assert.Equal(t, 0, h.Streak)
	assert.Nil(t, h.LastCheckedIn)
	requireToast(t, p, model.ToastSuccess, `New habit "Meditate" created.`)

	p = AddHabit(s, env, model.HabitInput{Name: "Doomscrolling", Type: model.HabitAffliction, XPValue: 30})
	h = (*p.Habits)[0]
	require.NotNil(t, h.HPLoss)
	assert.Equal(t, 10, *h.HPLoss)
	assert.Equal(t, 0, h.XPValue)

	requireToast(t, AddHabit(s, env, model.HabitInput{Name: " "}), model.ToastError, "Habit name is required.")
	requireToast(t, AddHabit(s, env, model.HabitInput{Name: "x", StackWithHabitID: model.Ptr("nope")}),
		model.ToastError, "Habit to stack with not found.")
}

func TestAddHabitFromTemplate(t *testing.T) {
	env := testEnv()
	p := AddHabitFromTemplate(seed(), env, "ht2")
	require.NotNil(t, p.Habits)
	h := (*p.Habits)[0]
	assert.Equal(t, "Drink 8 glasses of water", h.Name)
	assert.Equal(t, 15, h.XPValue)
	assert.Equal(t, "health", h.SkillID)

	requireToast(t, AddHabitFromTemplate(seed(), env, "nope"), model.ToastError, "Habit template not found.")
}

func TestUpdateHabit(t *testing.T) {
	env := testEnv()
	s := seed()

	p := UpdateHabit(s, env, "h2", model.HabitUpdate{Name: model.Ptr("Read 20 pages"), StackWithHabitID: model.Ptr("h1")})
	require.NotNil(t, p.Habits)
	h := (*p.Habits)[1]
	assert.Equal(t, "Read 20 pages", h.Name)
	assert.Equal(t, 12, h.Streak)
	require.NotNil(t, h.StackWithHabitID)
	assert.Equal(t, "h1", *h.StackWithHabitID)
	requireToast(t, p, model.ToastInfo, "Habit updated.")

	requireToast(t, UpdateHabit(s, env, "h2", model.HabitUpdate{StackWithHabitID: model.Ptr("h2")}),
		model.ToastError, "A habit cannot stack with itself.")
	requireToast(t, UpdateHabit(s, env, "nope", model.HabitUpdate{}), model.ToastError, "Habit not found.")
}
