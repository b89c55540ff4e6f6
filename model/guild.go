package model

type Guild struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Icon        string `json:"icon" yaml:"icon"`
	MemberCount int    `json:"memberCount" yaml:"memberCount"`
	TotalXP     int    `json:"totalXp" yaml:"totalXp"`
	Rank        int    `json:"rank" yaml:"rank"`
}

type GuildInput struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// LeaderboardEntry is one row of the global xp ranking.
type LeaderboardEntry struct {
	Rank          int    `json:"rank"`
	CharacterID   string `json:"characterId"`
	CharacterName string `json:"characterName"`
	Level         int    `json:"level"`
	XP            int    `json:"xp"`
	AvatarURL     string `json:"avatarUrl"`
}
