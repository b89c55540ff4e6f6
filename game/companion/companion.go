// Package companion talks to the conversational assistant that answers chat
// messages, proposes quest plans and grades chronicle entries. The engine
// treats the assistant as an opaque function from a prompt and a context
// summary to text or a structured plan.
package companion

import (
	"context"
	"fmt"
	"strings"

	"github.com/kasuganosora/lifeos/model"
)

// Mode tells the assistant what kind of answer is expected.
type Mode string

const (
	ModeChat      Mode = "chat"
	ModeQuestPlan Mode = "quest_plan"
	ModeAnalysis  Mode = "analysis"
)

// Context is the state summary sent along with every prompt.
type Context struct {
	CharacterName string   `json:"characterName"`
	Class         string   `json:"class"`
	Level         int      `json:"level"`
	ActiveQuests  []string `json:"activeQuests"`
	MaxStreak     int      `json:"maxStreak"`
	Screen        string   `json:"screen"`
	Mode          Mode     `json:"mode"`
}

// Reply is the assistant's answer. Plan is set only for a valid quest plan.
type Reply struct {
	Text string
	Plan *model.QuestPlan
}

// Companion is the assistant contract.
type Companion interface {
	Ask(ctx context.Context, prompt string, c Context) (Reply, error)
}

// BuildContext summarises s for the assistant. The quests screen switches
// the assistant into plan mode.
func BuildContext(s *model.GameState, screen string) Context {
	c := Context{
		CharacterName: s.Character.Name,
		Class:         string(s.Character.Class),
		Level:         s.Character.Level,
		ActiveQuests:  []string{},
		Screen:        screen,
		Mode:          ModeChat,
	}
	for _, q := range s.Quests {
		if q.Status == model.QuestInProgress {
			c.ActiveQuests = append(c.ActiveQuests, q.Name)
		}
	}
	for _, h := range s.Habits {
		c.MaxStreak = max(c.MaxStreak, h.Streak)
	}
	if strings.Contains(screen, "/quests") {
		c.Mode = ModeQuestPlan
	}
	return c
}

// Summary renders c the way it is embedded in prompts.
func (c Context) Summary() string {
	active := "None"
	if len(c.ActiveQuests) > 0 {
		active = strings.Join(c.ActiveQuests, ", ")
	}
	return fmt.Sprintf("Current Character Status: - Level: %d, - Class: %s, - Active Quests: %s, - Highest Habit Streak: %d days",
		c.Level, c.Class, active, c.MaxStreak)
}

// Instructions is the system prompt for c.
func (c Context) Instructions() string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are an AI companion in a productivity RPG called LifeOS. Your name is Spark. "+
		"You are helpful, encouraging, and context-aware. The user's name is %s. %s.", c.CharacterName, c.Summary())
	switch c.Mode {
	case ModeQuestPlan:
		b.WriteString(" You are on the Quests screen. If the user asks for help creating a quest, respond with a JSON object " +
			`{"isQuestPlan": true, "questName": string, "questDescription": string, "questPurpose": string, "objectives": [string], "responseText": string}. ` +
			`Otherwise respond with {"isQuestPlan": false, "responseText": string}.`)
	case ModeAnalysis:
		b.WriteString(` Respond only with a JSON object {"wisdomAward": number, "briefSummary": string}.`)
	default:
		if strings.Contains(c.Screen, "/goals") {
			b.WriteString(" You are on the Goals screen.")
		} else {
			b.WriteString(" You are on the main dashboard.")
		}
	}
	return b.String()
}

// AnalysisPrompt asks for a wisdom grade of a chronicle entry.
func AnalysisPrompt(entry string, c Context) string {
	return fmt.Sprintf("Analyze the following chronicle entry for its reflective depth, sentiment, and connection to "+
		"productivity or personal growth. Based on the analysis, award a 'wisdom' score between %d and %d. "+
		`Return the response as a JSON object with this structure: { "wisdomAward": number, "briefSummary": string }. `+
		`Context: %s. Entry: "%s"`, MinWisdom, MaxWisdom, c.Summary(), entry)
}
