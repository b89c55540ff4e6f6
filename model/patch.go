package model

// Patch is the partial state returned by an action handler. Every nil field
// means "unchanged"; a non-nil field replaces the whole top-level value.
// Toasts is the exception: new toasts are queued after the existing ones.
type Patch struct {
	IsOnboarded          *bool                  `json:"isOnboarded,omitempty"`
	Character            *Character             `json:"character,omitempty"`
	Skills               *[]Skill               `json:"skills,omitempty"`
	Habits               *[]Habit               `json:"habits,omitempty"`
	HabitLogs            *[]HabitLogEntry       `json:"habitLogs,omitempty"`
	Quests               *[]Quest               `json:"quests,omitempty"`
	Goals                *[]Goal                `json:"goals,omitempty"`
	Events               *[]GameEvent           `json:"events,omitempty"`
	TheVoid              *[]VoidThought         `json:"theVoid,omitempty"`
	ChronicleEntries     *[]ChronicleEntry      `json:"chronicleEntries,omitempty"`
	WeeklyReviews        *[]WeeklyReview        `json:"weeklyReviews,omitempty"`
	FearSettingExercises *[]FearSettingExercise `json:"fearSettingExercises,omitempty"`
	Settings             *Settings              `json:"settings,omitempty"`
	Guilds               *[]Guild               `json:"guilds,omitempty"`
	Friends              *[]Friend              `json:"friends,omitempty"`

	Toasts            []Toast                  `json:"toasts,omitempty"`
	RewardModal       *Reward                  `json:"rewardModalData,omitempty"`
	BattleAnimation   *BattleAnimation         `json:"battleAnimationData,omitempty"`
	BadgeNotification *Badge                   `json:"badgeNotification,omitempty"`
	DailyBriefing     *Nullable[DailyBriefing] `json:"dailyBriefing,omitempty"`
	ActiveBossFight   *Nullable[string]        `json:"activeBossFight,omitempty"`
	BossFightVictory  *Reward                  `json:"bossFightVictoryData,omitempty"`
	TutorialStep      *int                     `json:"tutorialStep,omitempty"`
}

// IsEmpty reports whether p changes nothing.
func (p Patch) IsEmpty() bool {
	return p.IsOnboarded == nil && p.Character == nil && p.Skills == nil &&
		p.Habits == nil && p.HabitLogs == nil && p.Quests == nil &&
		p.Goals == nil && p.Events == nil && p.TheVoid == nil &&
		p.ChronicleEntries == nil && p.WeeklyReviews == nil &&
		p.FearSettingExercises == nil && p.Settings == nil &&
		p.Guilds == nil && p.Friends == nil && len(p.Toasts) == 0 &&
		p.RewardModal == nil && p.BattleAnimation == nil &&
		p.BadgeNotification == nil && p.DailyBriefing == nil &&
		p.ActiveBossFight == nil && p.BossFightVictory == nil &&
		p.TutorialStep == nil
}

// Only reports whether p carries toasts and nothing else.
func (p Patch) OnlyToasts() bool {
	t := p.Toasts
	p.Toasts = nil
	return len(t) > 0 && p.IsEmpty()
}
