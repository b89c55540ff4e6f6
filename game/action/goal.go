package action

import (
	"slices"
	"strings"

	"github.com/kasuganosora/lifeos/game/progression"
	"github.com/kasuganosora/lifeos/model"
)

// AddGoal prepends a new in-progress goal.
func AddGoal(s *model.GameState, env Env, in model.GoalInput) model.Patch {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return env.fail("Goal name is required.")
	}
	g := model.Goal{
		ID:          env.NewID(),
		Name:        name,
		Description: in.Description,
		Icon:        in.Icon,
		TargetDate:  in.TargetDate,
		Status:      model.GoalInProgress,
	}
	next := s.Clone()
	next.Goals = append([]model.Goal{g}, next.Goals...)
	return model.Patch{Goals: &next.Goals}
}

// UpdateGoal applies u to the goal, rejecting unknown statuses.
func UpdateGoal(s *model.GameState, env Env, goalID string, u model.GoalUpdate) model.Patch {
	i := slices.IndexFunc(s.Goals, func(g model.Goal) bool { return g.ID == goalID })
	if i < 0 {
		return env.fail("Goal not found.")
	}
	if u.Status != nil && *u.Status != model.GoalInProgress && *u.Status != model.GoalCompleted {
		return env.fail("Unknown goal status %q.", *u.Status)
	}
	next := s.Clone()
	next.Goals[i] = u.Apply(next.Goals[i])
	return model.Patch{Goals: &next.Goals}
}

// DeleteGoal removes a goal and unlinks every quest that pointed at it.
func DeleteGoal(s *model.GameState, env Env, goalID string) model.Patch {
	if !slices.ContainsFunc(s.Goals, func(g model.Goal) bool { return g.ID == goalID }) {
		return env.fail("Goal not found.")
	}
	next := s.Clone()
	next.Goals = slices.DeleteFunc(next.Goals, func(g model.Goal) bool { return g.ID == goalID })
	for i := range next.Quests {
		if next.Quests[i].GoalID != nil && *next.Quests[i].GoalID == goalID {
			next.Quests[i].GoalID = nil
		}
	}
	return model.Patch{Goals: &next.Goals, Quests: &next.Quests}
}

// GoalProgress counts the archived and total quests linked to goalID.
func GoalProgress(s *model.GameState, goalID string) (archived, total int) {
	for _, q := range s.Quests {
		if q.GoalID == nil || *q.GoalID != goalID {
			continue
		}
		total++
		if q.Status == model.QuestArchived {
			archived++
		}
	}
	return archived, total
}

// AddSkill appends a level-1 skill with no perks.
func AddSkill(s *model.GameState, env Env, in model.SkillInput) model.Patch {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return env.fail("Skill name is required.")
	}
	sk := progression.ResetSkill(model.Skill{
		ID:          env.NewID(),
		Name:        name,
		Icon:        in.Icon,
		Description: in.Description,
	})
	next := s.Clone()
	next.Skills = append(next.Skills, sk)
	return model.Patch{Skills: &next.Skills}
}
