package model

import (
	"maps"
	"slices"
)

// GameState is the whole aggregate owned by one player's store. Domain
// fields come first; the trailing block holds transient UI signals.
type GameState struct {
	Version              uint64                `json:"version"`
	IsOnboarded          bool                  `json:"isOnboarded"`
	Character            Character             `json:"character"`
	Skills               []Skill               `json:"skills"`
	Habits               []Habit               `json:"habits"`
	HabitLogs            []HabitLogEntry       `json:"habitLogs"`
	Quests               []Quest               `json:"quests"`
	Goals                []Goal                `json:"goals"`
	Events               []GameEvent           `json:"events"`
	TheVoid              []VoidThought         `json:"theVoid"`
	ChronicleEntries     []ChronicleEntry      `json:"chronicleEntries"`
	WeeklyReviews        []WeeklyReview        `json:"weeklyReviews"`
	FearSettingExercises []FearSettingExercise `json:"fearSettingExercises"`
	Settings             Settings              `json:"settings"`
	Guilds               []Guild               `json:"guilds"`
	Friends              []Friend              `json:"friends"`

	ReviewCalendarDate *string          `json:"reviewCalendarDate"`
	RewardModal        *Reward          `json:"rewardModalData"`
	BattleAnimation    *BattleAnimation `json:"battleAnimationData"`
	BadgeNotification  *Badge           `json:"badgeNotification"`
	DailyBriefing      *DailyBriefing   `json:"dailyBriefing"`
	Toasts             []Toast          `json:"toasts"`
	TemplateForQuest   *QuestTemplate   `json:"templateForQuest"`
	ActiveBossFight    *string          `json:"activeBossFight"`
	BossFightVictory   *Reward          `json:"bossFightVictoryData"`
	TutorialStep       int              `json:"tutorialStep"`
	AIChatOpen         bool             `json:"isAiChatOpen"`
	AIConversation     []AIMessage      `json:"aiConversation"`
	LoadingStates      map[string]bool  `json:"loadingStates"`
}

func (s *GameState) FindHabit(id string) (Habit, int, bool) {
	for i, h := range s.Habits {
		if h.ID == id {
			return h, i, true
		}
	}
	return Habit{}, -1, false
}

func (s *GameState) FindQuest(id string) (Quest, int, bool) {
	for i, q := range s.Quests {
		if q.ID == id {
			return q, i, true
		}
	}
	return Quest{}, -1, false
}

func (s *GameState) FindFriend(id string) (Friend, int, bool) {
	for i, f := range s.Friends {
		if f.ID == id {
			return f, i, true
		}
	}
	return Friend{}, -1, false
}

// HasLog reports whether habitID was checked in on date (YYYY-MM-DD).
func (s *GameState) HasLog(habitID, date string) bool {
	return slices.Contains(s.HabitLogs, HabitLogEntry{HabitID: habitID, Date: date})
}

// Clone returns a deep copy of s. Nothing reachable from the copy aliases s.
func (s *GameState) Clone() *GameState {
	out := *s
	out.Character = s.Character.Clone()
	out.Skills = cloneEach(s.Skills, Skill.Clone)
	out.Habits = cloneEach(s.Habits, Habit.Clone)
	out.HabitLogs = slices.Clone(s.HabitLogs)
	out.Quests = cloneEach(s.Quests, Quest.Clone)
	out.Goals = slices.Clone(s.Goals)
	out.Events = slices.Clone(s.Events)
	out.TheVoid = slices.Clone(s.TheVoid)
	out.ChronicleEntries = slices.Clone(s.ChronicleEntries)
	out.WeeklyReviews = slices.Clone(s.WeeklyReviews)
	out.FearSettingExercises = slices.Clone(s.FearSettingExercises)
	out.Guilds = slices.Clone(s.Guilds)
	out.Friends = slices.Clone(s.Friends)

	out.ReviewCalendarDate = clonePtr(s.ReviewCalendarDate)
	out.RewardModal = clonePtr(s.RewardModal)
	out.BattleAnimation = clonePtr(s.BattleAnimation)
	out.BadgeNotification = clonePtr(s.BadgeNotification)
	out.DailyBriefing = clonePtr(s.DailyBriefing)
	out.Toasts = slices.Clone(s.Toasts)
	if s.TemplateForQuest != nil {
		t := s.TemplateForQuest.Clone()
		out.TemplateForQuest = &t
	}
	out.ActiveBossFight = clonePtr(s.ActiveBossFight)
	out.BossFightVictory = clonePtr(s.BossFightVictory)
	out.AIConversation = cloneEach(s.AIConversation, AIMessage.Clone)
	out.LoadingStates = maps.Clone(s.LoadingStates)
	return &out
}

func cloneEach[T any](in []T, clone func(T) T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	for i, v := range in {
		out[i] = clone(v)
	}
	return out
}
