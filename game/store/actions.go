package store

import (
	"errors"
	"fmt"
	"slices"

	"github.com/kasuganosora/lifeos/model"
)

// TutorialSteps is the length of the guided tour. Step 0 means no tour.
const TutorialSteps = 5

// Action is a state transition understood by the root reducer. Domain
// actions change game data; UI actions only touch the transient signals.
type Action interface {
	Name() string
	reduce(s *model.GameState) error
}

// isDomain reports whether a changes game data rather than UI signals.
func isDomain(a Action) bool {
	switch a.(type) {
	case ApplyPatch, Mutate, CompleteOnboardingUI:
		return true
	}
	return false
}

// reduce applies a to a private copy of s. An empty patch returns s
// itself, which the store treats as a no-op.
func reduce(s *model.GameState, a Action) (*model.GameState, error) {
	switch a := a.(type) {
	case ApplyPatch:
		return merge(s, a.Patch), nil
	case Mutate:
		return merge(s, a.Fn(s)), nil
	}
	next := s.Clone()
	if err := a.reduce(next); err != nil {
		return nil, err
	}
	return next, nil
}

// ApplyPatch merges a handler result.
type ApplyPatch struct {
	Action string
	Patch  model.Patch
}

func (a ApplyPatch) Name() string {
	if a.Action != "" {
		return a.Action
	}
	return "apply"
}

func (a ApplyPatch) reduce(s *model.GameState) error {
	*s = *merge(s, a.Patch)
	return nil
}

// Mutate computes its patch from the live state under the store lock.
// Use it for changes that originate outside the player's own session,
// where there is no snapshot to race against.
type Mutate struct {
	Action string
	Fn     func(s *model.GameState) model.Patch
}

func (a Mutate) Name() string { return a.Action }

func (a Mutate) reduce(s *model.GameState) error {
	*s = *merge(s, a.Fn(s))
	return nil
}

func merge(s *model.GameState, p model.Patch) *model.GameState {
	if p.IsEmpty() {
		return s
	}
	return p.Merge(s)
}

// CompleteOnboardingUI marks the account onboarded with a client-built
// character, bypassing the handler.
type CompleteOnboardingUI struct {
	Character model.Character
}

func (CompleteOnboardingUI) Name() string { return "onboarding_ui" }

func (a CompleteOnboardingUI) reduce(s *model.GameState) error {
	s.IsOnboarded = true
	s.Character = a.Character.Clone()
	return nil
}

type SetLoading struct {
	Key     string
	Loading bool
}

func (SetLoading) Name() string { return "set_loading" }

func (a SetLoading) reduce(s *model.GameState) error {
	if s.LoadingStates == nil {
		s.LoadingStates = map[string]bool{}
	}
	if a.Loading {
		s.LoadingStates[a.Key] = true
	} else {
		delete(s.LoadingStates, a.Key)
	}
	return nil
}

type HideRewardModal struct{}

func (HideRewardModal) Name() string { return "hide_reward_modal" }

func (HideRewardModal) reduce(s *model.GameState) error {
	s.RewardModal = nil
	return nil
}

type HideBattleAnimation struct{}

func (HideBattleAnimation) Name() string { return "hide_battle_animation" }

func (HideBattleAnimation) reduce(s *model.GameState) error {
	s.BattleAnimation = nil
	return nil
}

type HideBadgeNotification struct{}

func (HideBadgeNotification) Name() string { return "hide_badge_notification" }

func (HideBadgeNotification) reduce(s *model.GameState) error {
	s.BadgeNotification = nil
	return nil
}

type HideDailyBriefing struct{}

func (HideDailyBriefing) Name() string { return "hide_daily_briefing" }

func (HideDailyBriefing) reduce(s *model.GameState) error {
	s.DailyBriefing = nil
	return nil
}

// HideToast removes one toast. Unknown ids are ignored; the toast may have
// been dismissed by the player already.
type HideToast struct{ ID string }

func (HideToast) Name() string { return "hide_toast" }

func (a HideToast) reduce(s *model.GameState) error {
	s.Toasts = slices.DeleteFunc(s.Toasts, func(t model.Toast) bool { return t.ID == a.ID })
	return nil
}

// ShowToast queues a toast outside of any handler.
type ShowToast struct{ Toast model.Toast }

func (ShowToast) Name() string { return "show_toast" }

func (a ShowToast) reduce(s *model.GameState) error {
	s.Toasts = append(s.Toasts, a.Toast)
	return nil
}

type SetReviewDate struct{ Date string }

func (SetReviewDate) Name() string { return "set_review_date" }

func (a SetReviewDate) reduce(s *model.GameState) error {
	if a.Date == "" {
		s.ReviewCalendarDate = nil
		return nil
	}
	s.ReviewCalendarDate = model.Ptr(a.Date)
	return nil
}

// StartQuestFromTemplate preselects a template for the quest editor.
type StartQuestFromTemplate struct{ Template model.QuestTemplate }

func (StartQuestFromTemplate) Name() string { return "start_quest_from_template" }

func (a StartQuestFromTemplate) reduce(s *model.GameState) error {
	t := a.Template.Clone()
	s.TemplateForQuest = &t
	return nil
}

type ClearQuestTemplate struct{}

func (ClearQuestTemplate) Name() string { return "clear_quest_template" }

func (ClearQuestTemplate) reduce(s *model.GameState) error {
	s.TemplateForQuest = nil
	return nil
}

var errNotBossQuest = errors.New("store: not an active boss quest")

// StartBossFight focuses a high-leverage quest that is still in progress.
type StartBossFight struct{ QuestID string }

func (StartBossFight) Name() string { return "start_boss_fight" }

func (a StartBossFight) reduce(s *model.GameState) error {
	q, _, ok := s.FindQuest(a.QuestID)
	if !ok || !q.IsHighLeverage || q.Status == model.QuestArchived {
		return fmt.Errorf("%w: %s", errNotBossQuest, a.QuestID)
	}
	s.ActiveBossFight = model.Ptr(q.ID)
	s.BossFightVictory = nil
	return nil
}

// EndBossFight leaves the boss view and dismisses any victory screen.
type EndBossFight struct{}

func (EndBossFight) Name() string { return "end_boss_fight" }

func (EndBossFight) reduce(s *model.GameState) error {
	s.ActiveBossFight = nil
	s.BossFightVictory = nil
	return nil
}

type AdvanceTutorial struct{}

func (AdvanceTutorial) Name() string { return "advance_tutorial" }

func (AdvanceTutorial) reduce(s *model.GameState) error {
	if s.TutorialStep <= 0 {
		return nil
	}
	s.TutorialStep++
	if s.TutorialStep > TutorialSteps {
		s.TutorialStep = 0
	}
	return nil
}

type CompleteTutorial struct{}

func (CompleteTutorial) Name() string { return "complete_tutorial" }

func (CompleteTutorial) reduce(s *model.GameState) error {
	s.TutorialStep = 0
	return nil
}

type ToggleAIChat struct{}

func (ToggleAIChat) Name() string { return "toggle_ai_chat" }

func (ToggleAIChat) reduce(s *model.GameState) error {
	s.AIChatOpen = !s.AIChatOpen
	return nil
}

// UpsertAIMessage appends a transcript message, or replaces the message
// with the same id (the loading placeholder of a pending reply).
type UpsertAIMessage struct{ Message model.AIMessage }

func (UpsertAIMessage) Name() string { return "ai_message" }

func (a UpsertAIMessage) reduce(s *model.GameState) error {
	m := a.Message.Clone()
	if i := slices.IndexFunc(s.AIConversation, func(x model.AIMessage) bool { return x.ID == m.ID }); i >= 0 {
		s.AIConversation[i] = m
		return nil
	}
	s.AIConversation = append(s.AIConversation, m)
	return nil
}
