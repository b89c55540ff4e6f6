package action

import (
	"slices"
	"strings"
	"time"

	"github.com/kasuganosora/lifeos/game/progression"
	"github.com/kasuganosora/lifeos/model"
)

// ToggleObjective flips an objective. Only the false -> true transition pays
// out; un-completing never claws anything back. When the last objective
// completes, a recurring quest resets and reschedules while any other quest
// archives, and the reward signal depends on whether it was a boss fight.
func ToggleObjective(s *model.GameState, env Env, questID, objectiveID string) model.Patch {
	q, qi, ok := s.FindQuest(questID)
	if !ok {
		return env.fail("Quest not found.")
	}
	oi := slices.IndexFunc(q.Objectives, func(o model.Objective) bool { return o.ID == objectiveID })
	if oi < 0 {
		return env.fail("Objective not found.")
	}
	if q.Status == model.QuestArchived {
		return env.info(`Quest "%s" is already complete.`, q.Name)
	}

	next := s.Clone()
	nq := &next.Quests[qi]
	completing := !nq.Objectives[oi].Completed
	nq.Objectives[oi].Completed = completing

	p := model.Patch{Quests: &next.Quests}
	if completing {
		xp, coins := env.reward(s, nq.Objectives[oi].XP)
		env.gain(next, xp, coins, model.EventXPGain, "Completed objective for %d XP", xp)
		p.Character = &next.Character
		p.Events = &next.Events

		if nq.AllObjectivesDone() {
			totalXP := q.TotalXP()
			totalCoins := totalXP / 2

			if nq.Recurrence != nil {
				for j := range nq.Objectives {
					nq.Objectives[j].Completed = false
				}
				nq.Deadline = progression.DateKey(progression.NextDeadline(nq.Recurrence, env.Now))
				nq.Completions = append(nq.Completions, env.Now)
			} else {
				nq.Status = model.QuestArchived
			}

			if q.IsHighLeverage {
				p.BossFightVictory = &model.Reward{XP: totalXP * 2, Coins: totalCoins * 3}
				p.ActiveBossFight = model.Clear[string]()
			} else {
				p.RewardModal = &model.Reward{XP: totalXP, Coins: totalCoins}
			}
		}
	}
	return env.withBadges(p, s, next)
}

// AddQuest prepends a new IN_PROGRESS quest with one open objective per
// input. Objectives without xp get the threat level default. A non-empty
// voidThoughtID removes the captured thought the quest was made from.
func AddQuest(s *model.GameState, env Env, in model.QuestInput, voidThoughtID string) model.Patch {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return env.fail("Quest name is required.")
	}
	threat := in.ThreatLevel
	switch threat {
	case "":
		threat = model.ThreatMinor
	case model.ThreatMinor, model.ThreatMajor, model.ThreatEpic:
	default:
		return env.fail("Unknown threat level %q.", threat)
	}
	if in.Deadline != "" {
		if _, err := time.Parse(progression.DateLayout, in.Deadline); err != nil {
			return env.fail("Deadline must be a date like 2006-01-02.")
		}
	}
	if in.GoalID != nil && !slices.ContainsFunc(s.Goals, func(g model.Goal) bool { return g.ID == *in.GoalID }) {
		return env.fail("Goal not found.")
	}
	if r := in.Recurrence; r != nil {
		switch r.Frequency {
		case model.FrequencyWeekly, model.FrequencyMonthly, model.FrequencyQuarterly:
		default:
			return env.fail("Unknown recurrence %q.", r.Frequency)
		}
		if r.DayOfWeek != nil && (*r.DayOfWeek < 0 || *r.DayOfWeek > 6) {
			return env.fail("Day of week must be between 0 and 6.")
		}
	}

	q := model.Quest{
		ID:             env.NewID(),
		Name:           name,
		Description:    in.Description,
		Purpose:        in.Purpose,
		Status:         model.QuestInProgress,
		Deadline:       in.Deadline,
		Objectives:     make([]model.Objective, 0, len(in.Objectives)),
		SkillID:        in.SkillID,
		ThreatLevel:    threat,
		GoalID:         in.GoalID,
		IsHighLeverage: in.IsHighLeverage,
		Recurrence:     in.Recurrence,
	}.Clone()
	for _, o := range in.Objectives {
		xp := o.XP
		if xp <= 0 {
			xp = env.Catalog.ThreatXP(threat)
		}
		q.Objectives = append(q.Objectives, model.Objective{ID: env.NewID(), Name: strings.TrimSpace(o.Name), XP: xp})
	}
	if q.Deadline == "" && q.Recurrence != nil {
		q.Deadline = progression.DateKey(progression.NextDeadline(q.Recurrence, env.Now))
	}

	next := s.Clone()
	next.Quests = append([]model.Quest{q}, next.Quests...)
	p := model.Patch{
		Quests: &next.Quests,
		Toasts: env.success(`Quest "%s" has been forged!`, q.Name),
	}
	if voidThoughtID != "" {
		next.TheVoid = slices.DeleteFunc(next.TheVoid, func(t model.VoidThought) bool { return t.ID == voidThoughtID })
		p.TheVoid = &next.TheVoid
	}
	return p
}

// AddQuestFromPlan turns a companion quest plan into a quest. The plan is
// expected to be validated already; it is trimmed here and attached to the
// character's first skill.
func AddQuestFromPlan(s *model.GameState, env Env, plan model.QuestPlan, voidThoughtID string) model.Patch {
	in := model.QuestInput{
		Name:        plan.Name,
		Description: strings.TrimSpace(plan.Description),
		Purpose:     strings.TrimSpace(plan.Purpose),
		ThreatLevel: model.ThreatMinor,
	}
	if len(s.Skills) > 0 {
		in.SkillID = s.Skills[0].ID
	}
	for _, name := range plan.Objectives {
		if name = strings.TrimSpace(name); name != "" {
			in.Objectives = append(in.Objectives, model.ObjectiveInput{Name: name})
		}
	}
	if len(in.Objectives) == 0 {
		return env.fail("The quest plan has no objectives.")
	}
	return AddQuest(s, env, in, voidThoughtID)
}

// AddThoughtToVoid captures a free-form note.
func AddThoughtToVoid(s *model.GameState, env Env, text string) model.Patch {
	text = strings.TrimSpace(text)
	if text == "" {
		return env.fail("Nothing to capture.")
	}
	next := s.Clone()
	next.TheVoid = append([]model.VoidThought{{ID: env.NewID(), Text: text, CreatedAt: env.Now}}, next.TheVoid...)
	return model.Patch{TheVoid: &next.TheVoid}
}
