package model

type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyNormal Difficulty = "Normal"
	DifficultyHard   Difficulty = "Hard"
)

type Settings struct {
	Difficulty     Difficulty `json:"difficulty" yaml:"difficulty"`
	Theme          string     `json:"theme" yaml:"theme"`
	PrestigeMode   bool       `json:"prestigeMode" yaml:"prestigeMode"`
	XPGainRate     int        `json:"xpGainRate" yaml:"xpGainRate"` // percent
	DailyReminders bool       `json:"dailyReminders" yaml:"dailyReminders"`
	QuestDeadlines bool       `json:"questDeadlines" yaml:"questDeadlines"`
	HabitCheckins  bool       `json:"habitCheckins" yaml:"habitCheckins"`
	ReminderTime   string     `json:"reminderTime" yaml:"reminderTime"` // HH:MM
}

type SettingsUpdate struct {
	Difficulty     *Difficulty `json:"difficulty,omitempty"`
	Theme          *string     `json:"theme,omitempty"`
	PrestigeMode   *bool       `json:"prestigeMode,omitempty"`
	XPGainRate     *int        `json:"xpGainRate,omitempty"`
	DailyReminders *bool       `json:"dailyReminders,omitempty"`
	QuestDeadlines *bool       `json:"questDeadlines,omitempty"`
	HabitCheckins  *bool       `json:"habitCheckins,omitempty"`
	ReminderTime   *string     `json:"reminderTime,omitempty"`
}

func (u SettingsUpdate) Apply(s Settings) Settings {
	if u.Difficulty != nil {
		s.Difficulty = *u.Difficulty
	}
	if u.Theme != nil {
		s.Theme = *u.Theme
	}
	if u.PrestigeMode != nil {
		s.PrestigeMode = *u.PrestigeMode
	}
	if u.XPGainRate != nil {
		s.XPGainRate = *u.XPGainRate
	}
	if u.DailyReminders != nil {
		s.DailyReminders = *u.DailyReminders
	}
	if u.QuestDeadlines != nil {
		s.QuestDeadlines = *u.QuestDeadlines
	}
	if u.HabitCheckins != nil {
		s.HabitCheckins = *u.HabitCheckins
	}
	if u.ReminderTime != nil {
		s.ReminderTime = *u.ReminderTime
	}
	return s
}
