package model

// Merge returns a copy of s with p applied. s itself is not modified. The
// copy shares the slices carried by p, so p must not be reused afterwards.
func (p Patch) Merge(s *GameState) *GameState {
	out := s.Clone()
	if p.IsOnboarded != nil {
		out.IsOnboarded = *p.IsOnboarded
	}
	if p.Character != nil {
		out.Character = *p.Character
	}
	assign(&out.Skills, p.Skills)
	assign(&out.Habits, p.Habits)
	assign(&out.HabitLogs, p.HabitLogs)
	assign(&out.Quests, p.Quests)
	assign(&out.Goals, p.Goals)
	assign(&out.Events, p.Events)
	assign(&out.TheVoid, p.TheVoid)
	assign(&out.ChronicleEntries, p.ChronicleEntries)
	assign(&out.WeeklyReviews, p.WeeklyReviews)
	assign(&out.FearSettingExercises, p.FearSettingExercises)
	assign(&out.Guilds, p.Guilds)
	assign(&out.Friends, p.Friends)
	if p.Settings != nil {
		out.Settings = *p.Settings
	}

	out.Toasts = append(out.Toasts, p.Toasts...)
	if p.RewardModal != nil {
		out.RewardModal = p.RewardModal
	}
	if p.BattleAnimation != nil {
		out.BattleAnimation = p.BattleAnimation
	}
	if p.BadgeNotification != nil {
		out.BadgeNotification = p.BadgeNotification
	}
	if p.BossFightVictory != nil {
		out.BossFightVictory = p.BossFightVictory
	}
	if p.DailyBriefing != nil {
		out.DailyBriefing = p.DailyBriefing.Value
	}
	if p.ActiveBossFight != nil {
		out.ActiveBossFight = p.ActiveBossFight.Value
	}
	if p.TutorialStep != nil {
		out.TutorialStep = *p.TutorialStep
	}
	return out
}

func assign[T any](dst *[]T, src *[]T) {
	if src != nil {
		*dst = *src
	}
}
