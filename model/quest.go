package model

import (
	"slices"
	"time"
)

type QuestStatus string

const (
	QuestInProgress QuestStatus = "IN_PROGRESS"
	QuestCompleted  QuestStatus = "COMPLETED"
	QuestArchived   QuestStatus = "ARCHIVED"
)

type ThreatLevel string

const (
	ThreatMinor ThreatLevel = "Minor"
	ThreatMajor ThreatLevel = "Major"
	ThreatEpic  ThreatLevel = "Epic"
)

type Frequency string

const (
	FrequencyWeekly    Frequency = "weekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
)

// RecurrenceRule makes a quest repeat. DayOfWeek (0 = Sunday) only applies
// to weekly rules.
type RecurrenceRule struct {
	Frequency Frequency `json:"frequency" yaml:"frequency"`
	DayOfWeek *int      `json:"dayOfWeek,omitempty" yaml:"dayOfWeek"`
}

type Objective struct {
	ID        string `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	Completed bool   `json:"completed" yaml:"completed"`
	XP        int    `json:"xp" yaml:"xp"`
}

// Quest is a multi-step task. A quest with a recurrence rule never archives.
type Quest struct {
	ID             string          `json:"id" yaml:"id"`
	Name           string          `json:"name" yaml:"name"`
	Description    string          `json:"description" yaml:"description"`
	Purpose        string          `json:"purpose" yaml:"purpose"`
	Status         QuestStatus     `json:"status" yaml:"status"`
	Deadline       string          `json:"deadline" yaml:"deadline"` // YYYY-MM-DD
	Objectives     []Objective     `json:"objectives" yaml:"objectives"`
	SkillID        string          `json:"skillId" yaml:"skillId"`
	ThreatLevel    ThreatLevel     `json:"threatLevel" yaml:"threatLevel"`
	GoalID         *string         `json:"goalId,omitempty" yaml:"goalId"`
	IsHighLeverage bool            `json:"isHighLeverage,omitempty" yaml:"isHighLeverage"`
	Recurrence     *RecurrenceRule `json:"recurrence,omitempty" yaml:"recurrence"`
	Completions    []time.Time     `json:"completions,omitempty" yaml:"completions"`
}

// AllObjectivesDone reports whether every objective is completed. A quest
// without objectives is never done.
func (q Quest) AllObjectivesDone() bool {
	if len(q.Objectives) == 0 {
		return false
	}
	for _, o := range q.Objectives {
		if !o.Completed {
			return false
		}
	}
	return true
}

// TotalXP sums the xp of every objective.
func (q Quest) TotalXP() int {
	total := 0
	for _, o := range q.Objectives {
		total += o.XP
	}
	return total
}

func (q Quest) Clone() Quest {
	q.Objectives = slices.Clone(q.Objectives)
	q.GoalID = clonePtr(q.GoalID)
	if q.Recurrence != nil {
		r := *q.Recurrence
		r.DayOfWeek = clonePtr(r.DayOfWeek)
		q.Recurrence = &r
	}
	q.Completions = slices.Clone(q.Completions)
	return q
}

// ObjectiveInput describes one objective of a quest being created. XP = 0
// selects the threat-level default.
type ObjectiveInput struct {
	Name string `json:"name" binding:"required"`
	XP   int    `json:"xp"`
}

// QuestInput is what a caller supplies to create a quest.
type QuestInput struct {
	Name           string           `json:"name" binding:"required"`
	Description    string           `json:"description"`
	Purpose        string           `json:"purpose"`
	Deadline       string           `json:"deadline"`
	Objectives     []ObjectiveInput `json:"objectives"`
	SkillID        string           `json:"skillId"`
	ThreatLevel    ThreatLevel      `json:"threatLevel"`
	GoalID         *string          `json:"goalId,omitempty"`
	IsHighLeverage bool             `json:"isHighLeverage,omitempty"`
	Recurrence     *RecurrenceRule  `json:"recurrence,omitempty"`
}

type QuestTemplateObjective struct {
	Name string `json:"name" yaml:"name"`
}

type QuestTemplate struct {
	ID          string                   `json:"id" yaml:"id"`
	Name        string                   `json:"name" yaml:"name"`
	Description string                   `json:"description" yaml:"description"`
	SkillID     string                   `json:"skillId" yaml:"skillId"`
	ThreatLevel ThreatLevel              `json:"threatLevel" yaml:"threatLevel"`
	Objectives  []QuestTemplateObjective `json:"objectives" yaml:"objectives"`
	Category    string                   `json:"category" yaml:"category"`
}

func (t QuestTemplate) Clone() QuestTemplate {
	t.Objectives = slices.Clone(t.Objectives)
	return t
}

type GoalStatus string

const (
	GoalInProgress GoalStatus = "IN_PROGRESS"
	GoalCompleted  GoalStatus = "COMPLETED"
)

// Goal groups quests under a long-term aim.
type Goal struct {
	ID          string     `json:"id" yaml:"id"`
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description" yaml:"description"`
	Icon        string     `json:"icon" yaml:"icon"`
	TargetDate  string     `json:"targetDate" yaml:"targetDate"`
	Status      GoalStatus `json:"status" yaml:"status"`
}

type GoalInput struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	TargetDate  string `json:"targetDate"`
}

type GoalUpdate struct {
	Name        *string     `json:"name,omitempty"`
	Description *string     `json:"description,omitempty"`
	Icon        *string     `json:"icon,omitempty"`
	TargetDate  *string     `json:"targetDate,omitempty"`
	Status      *GoalStatus `json:"status,omitempty"`
}

func (u GoalUpdate) Apply(g Goal) Goal {
	if u.Name != nil {
		g.Name = *u.Name
	}
	if u.Description != nil {
		g.Description = *u.Description
	}
	if u.Icon != nil {
		g.Icon = *u.Icon
	}
	if u.TargetDate != nil {
		g.TargetDate = *u.TargetDate
	}
	if u.Status != nil {
		g.Status = *u.Status
	}
	return g
}
