package model

import "slices"

// Skill is a life area that levels independently of the character.
type Skill struct {
	ID            string   `json:"id" yaml:"id"`
	Name          string   `json:"name" yaml:"name"`
	Level         int      `json:"level" yaml:"level"`
	XP            int      `json:"xp" yaml:"xp"`
	XPToNextLevel int      `json:"xpToNextLevel" yaml:"xpToNextLevel"`
	Icon          string   `json:"icon" yaml:"icon"`
	Description   string   `json:"description" yaml:"description"`
	Perks         []string `json:"perks" yaml:"perks"`
}

func (s Skill) Clone() Skill {
	s.Perks = slices.Clone(s.Perks)
	return s
}

// SkillInput is what a caller supplies to create a skill.
type SkillInput struct {
	Name        string `json:"name" binding:"required"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
}
