package model

import "time"

type HabitType string

const (
	HabitGood       HabitType = "GOOD"
	HabitAffliction HabitType = "AFFLICTION"
)

// Habit is a daily routine. GOOD habits are checked in once per calendar day;
// AFFLICTION habits cost HP each time they are fought.
type Habit struct {
	ID               string     `json:"id" yaml:"id"`
	Name             string     `json:"name" yaml:"name"`
	Type             HabitType  `json:"type" yaml:"type"`
	SkillID          string     `json:"skillId" yaml:"skillId"`
	XPValue          int        `json:"xpValue" yaml:"xpValue"`
	HPLoss           *int       `json:"hpLoss,omitempty" yaml:"hpLoss"`
	Streak           int        `json:"streak" yaml:"streak"`
	LastCheckedIn    *time.Time `json:"lastCheckedIn" yaml:"lastCheckedIn"`
	StackWithHabitID *string    `json:"stackWithHabitId,omitempty" yaml:"stackWithHabitId"`
}

func (h Habit) Clone() Habit {
	h.HPLoss = clonePtr(h.HPLoss)
	h.LastCheckedIn = clonePtr(h.LastCheckedIn)
	h.StackWithHabitID = clonePtr(h.StackWithHabitID)
	return h
}

// HabitLogEntry records one completed check-in. (HabitID, Date) is unique.
type HabitLogEntry struct {
	HabitID string `json:"habitId" yaml:"habitId"`
	Date    string `json:"date" yaml:"date"` // YYYY-MM-DD, local calendar
}

type HabitTemplate struct {
	ID      string    `json:"id" yaml:"id"`
	Name    string    `json:"name" yaml:"name"`
	SkillID string    `json:"skillId" yaml:"skillId"`
	XPValue int       `json:"xpValue" yaml:"xpValue"`
	Type    HabitType `json:"type" yaml:"type"`
}

// HabitInput is what a caller supplies to create a habit.
type HabitInput struct {
	Name             string    `json:"name" binding:"required"`
	Type             HabitType `json:"type"`
	SkillID          string    `json:"skillId"`
	XPValue          int       `json:"xpValue"`
	HPLoss           *int      `json:"hpLoss,omitempty"`
	StackWithHabitID *string   `json:"stackWithHabitId,omitempty"`
}

// HabitUpdate carries the habit fields a caller wants to change.
type HabitUpdate struct {
	Name             *string    `json:"name,omitempty"`
	SkillID          *string    `json:"skillId,omitempty"`
	XPValue          *int       `json:"xpValue,omitempty"`
	HPLoss           *int       `json:"hpLoss,omitempty"`
	Type             *HabitType `json:"type,omitempty"`
	StackWithHabitID *string    `json:"stackWithHabitId,omitempty"`
}

// Apply returns h with every non-nil field of u written over it.
func (u HabitUpdate) Apply(h Habit) Habit {
	if u.Name != nil {
		h.Name = *u.Name
	}
	if u.SkillID != nil {
		h.SkillID = *u.SkillID
	}
	if u.XPValue != nil {
		h.XPValue = *u.XPValue
	}
	if u.HPLoss != nil {
		h.HPLoss = clonePtr(u.HPLoss)
	}
	if u.Type != nil {
		h.Type = *u.Type
	}
	if u.StackWithHabitID != nil {
		h.StackWithHabitID = clonePtr(u.StackWithHabitID)
	}
	return h
}
