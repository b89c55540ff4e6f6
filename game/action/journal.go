package action

import (
	"strings"

	"github.com/kasuganosora/lifeos/game/progression"
	"github.com/kasuganosora/lifeos/model"
)

// CompleteOnboarding names the character, marks the account onboarded,
// raises the first daily briefing and starts the tutorial.
func CompleteOnboarding(s *model.GameState, env Env, name string, class model.CharacterClass) model.Patch {
	if s.IsOnboarded {
		return env.info("You are already on your journey.")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return env.fail("Character name is required.")
	}
	if class != "" && !class.Valid() {
		return env.fail("Unknown class %q.", class)
	}

	next := s.Clone()
	next.Character.ID = env.NewID()
	next.Character.Name = name
	if class != "" {
		next.Character.Class = class
	}
	next.Character.LastLogin = model.Ptr(env.Now)

	return model.Patch{
		IsOnboarded:   model.Ptr(true),
		Character:     &next.Character,
		DailyBriefing: model.Set(model.DailyBriefing{Visible: true, Bonus: env.Catalog.Rules.DailyBonus}),
		TutorialStep:  model.Ptr(1),
	}
}

// OpenDailyBriefing raises the daily bonus banner the first time it runs on
// a calendar day after the last login. Otherwise it changes nothing.
func OpenDailyBriefing(s *model.GameState, env Env) model.Patch {
	if !s.IsOnboarded || s.DailyBriefing != nil {
		return model.Patch{}
	}
	if last := s.Character.LastLogin; last != nil &&
		progression.DateKey(last.In(env.Now.Location())) == progression.DateKey(env.Now) {
		return model.Patch{}
	}
	return model.Patch{
		DailyBriefing: model.Set(model.DailyBriefing{Visible: true, Bonus: env.Catalog.Rules.DailyBonus}),
	}
}

// ClaimDailyBonus pays out the pending briefing. Without one it is a no-op.
func ClaimDailyBonus(s *model.GameState, env Env) model.Patch {
	if s.DailyBriefing == nil {
		return model.Patch{}
	}
	bonus := s.DailyBriefing.Bonus

	next := s.Clone()
	env.gain(next, bonus.XP, bonus.Coins, model.EventCoinGain,
		"Claimed daily bonus of %d XP and %d coins!", bonus.XP, bonus.Coins)
	next.Character.LastLogin = model.Ptr(env.Now)

	p := model.Patch{
		Character:     &next.Character,
		Events:        &next.Events,
		DailyBriefing: model.Clear[model.DailyBriefing](),
	}
	return env.withBadges(p, s, next)
}

// SubmitChronicleEntry stores a journal entry and raises wisdom, capped at
// its maximum. The award is clamped to the catalog range.
func SubmitChronicleEntry(s *model.GameState, env Env, in model.ChronicleInput) model.Patch {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return env.fail("Write something first.")
	}
	rules := env.Catalog.Rules
	wisdom := min(max(in.Wisdom, rules.WisdomAwardMin), rules.WisdomAwardMax)

	next := s.Clone()
	w := &next.Character.Attributes.Wisdom
	w.Value = min(w.MaxValue, w.Value+wisdom)
	entry := model.ChronicleEntry{
		ID:            env.NewID(),
		Content:       content,
		Summary:       strings.TrimSpace(in.Summary),
		WisdomAwarded: wisdom,
		Timestamp:     env.Now,
	}
	next.ChronicleEntries = append([]model.ChronicleEntry{entry}, next.ChronicleEntries...)
	next.Events = env.pushEvent(next.Events, model.EventWisdomGain, "Gained %d Wisdom from chronicle entry.", wisdom)

	return model.Patch{
		Character:        &next.Character,
		ChronicleEntries: &next.ChronicleEntries,
		Events:           &next.Events,
		Toasts:           env.success("Chronicle entry saved! (+%d Wisdom)", wisdom),
	}
}

// SaveWeeklyReview prepends a dated weekly reflection.
func SaveWeeklyReview(s *model.GameState, env Env, in model.WeeklyReviewInput) model.Patch {
	r := model.WeeklyReview{
		ID:      env.NewID(),
		Date:    progression.DateKey(env.Now),
		Wins:    in.Wins,
		Lessons: in.Lessons,
		Goals:   in.Goals,
	}
	next := s.Clone()
	next.WeeklyReviews = append([]model.WeeklyReview{r}, next.WeeklyReviews...)
	return model.Patch{
		WeeklyReviews: &next.WeeklyReviews,
		Toasts:        env.success("Weekly reflection saved!"),
	}
}

// SaveFearSetting records a fear-setting exercise, optionally tied to a quest.
func SaveFearSetting(s *model.GameState, env Env, in model.FearSettingInput) model.Patch {
	if in.QuestID != "" {
		if _, _, ok := s.FindQuest(in.QuestID); !ok {
			return env.fail("Quest not found.")
		}
	}
	ex := model.FearSettingExercise{
		ID:      env.NewID(),
		Date:    progression.DateKey(env.Now),
		QuestID: in.QuestID,
		Define:  in.Define,
		Prevent: in.Prevent,
		Repair:  in.Repair,
	}
	next := s.Clone()
	next.FearSettingExercises = append([]model.FearSettingExercise{ex}, next.FearSettingExercises...)
	return model.Patch{
		FearSettingExercises: &next.FearSettingExercises,
		Toasts:               env.success("Fear-setting exercise saved!"),
	}
}

// UpdateSettings applies u after validating the gain rate and difficulty.
func UpdateSettings(s *model.GameState, env Env, u model.SettingsUpdate) model.Patch {
	if u.XPGainRate != nil && *u.XPGainRate < 0 {
		return env.fail("XP gain rate cannot be negative.")
	}
	if u.Difficulty != nil {
		switch *u.Difficulty {
		case model.DifficultyEasy, model.DifficultyNormal, model.DifficultyHard:
		default:
			return env.fail("Unknown difficulty %q.", *u.Difficulty)
		}
	}
	settings := u.Apply(s.Settings)
	return model.Patch{Settings: &settings}
}
