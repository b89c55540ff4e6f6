package companion

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kasuganosora/lifeos/model"
)

// Scripted is a deterministic in-process companion. It is used when no
// endpoint is configured.
type Scripted struct{}

func (Scripted) Ask(_ context.Context, prompt string, c Context) (Reply, error) {
	switch {
	case c.Mode == ModeAnalysis:
		return Reply{Text: scriptedAnalysis(prompt)}, nil
	case c.Mode == ModeQuestPlan && strings.Contains(strings.ToLower(prompt), "quest"):
		goal := clip(prompt, 40)
		return Reply{
			Text: "Here's a quest plan to get you started!",
			Plan: scriptedPlan(goal),
		}, nil
	}

	name := c.CharacterName
	if name == "" {
		name = "adventurer"
	}
	switch n := len(c.ActiveQuests); {
	case n == 0:
		return Reply{Text: fmt.Sprintf("Hi %s! You have no active quests. Want to start one?", name)}, nil
	case c.MaxStreak >= 7:
		return Reply{Text: fmt.Sprintf("A %d-day streak, %s! Keep it alive while you push on %q.", c.MaxStreak, name, c.ActiveQuests[0])}, nil
	default:
		return Reply{Text: fmt.Sprintf("Keep going, %s! Level %d with %d active quests. Next up: %q.", name, c.Level, n, c.ActiveQuests[0])}, nil
	}
}

func scriptedPlan(goal string) *model.QuestPlan {
	p := model.QuestPlan{
		Name:        "Quest: " + goal,
		Description: "A short campaign toward: " + goal,
		Purpose:     "To make steady, visible progress.",
		Objectives:  []string{"Define the first concrete step", "Schedule focused time", "Review progress at the end of the week"},
	}
	return &p
}

// scriptedAnalysis grades an entry by its length.
func scriptedAnalysis(prompt string) string {
	entry := prompt
	if i := strings.LastIndex(prompt, `Entry: "`); i >= 0 {
		entry = strings.TrimSuffix(prompt[i+len(`Entry: "`):], `"`)
	}
	words := len(strings.Fields(entry))
	summary := entry
	if i := strings.IndexAny(summary, ".!?"); i >= 0 {
		summary = summary[:i+1]
	}
	raw, _ := json.Marshal(map[string]any{
		"wisdomAward":  min(MinWisdom+words/10, MaxWisdom),
		"briefSummary": clip(summary, maxNameLen),
	})
	return string(raw)
}
