// Package catalog holds the static game content: badges, shop items,
// prestige upgrades, templates, the public player directory and the
// starting state of a fresh account.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/kasuganosora/lifeos/model"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Rules are the numeric constants of the progression system.
type Rules struct {
	BaseXPToNextLevel        int                       `yaml:"base_xp_to_next_level" json:"baseXpToNextLevel"`
	PrestigeMinLevel         int                       `yaml:"prestige_min_level" json:"prestigeMinLevel"`
	PrestigePointsPerLevels  int                       `yaml:"prestige_points_per_levels" json:"prestigePointsPerLevels"`
	AfflictionTemplateHPLoss int                       `yaml:"affliction_template_hp_loss" json:"afflictionTemplateHpLoss"`
	DailyBonus               model.Reward              `yaml:"daily_bonus" json:"dailyBonus"`
	ThreatLevelXP            map[model.ThreatLevel]int `yaml:"threat_level_xp" json:"threatLevelXp"`
	WisdomAwardMin           int                       `yaml:"wisdom_award_min" json:"wisdomAwardMin"`
	WisdomAwardMax           int                       `yaml:"wisdom_award_max" json:"wisdomAwardMax"`
}

// Start is the seed content of a newly created game state.
type Start struct {
	Character model.Character   `yaml:"character"`
	Settings  model.Settings    `yaml:"settings"`
	Skills    []model.Skill     `yaml:"skills"`
	Habits    []model.Habit     `yaml:"habits"`
	Quests    []model.Quest     `yaml:"quests"`
	Goals     []model.Goal      `yaml:"goals"`
	Events    []model.GameEvent `yaml:"events"`
	Guilds    []model.Guild     `yaml:"guilds"`
	Friends   []model.Friend    `yaml:"friends"`
}

// Catalog is immutable after loading and safe for concurrent use.
type Catalog struct {
	Rules            Rules                   `yaml:"rules"`
	PrestigeUpgrades []model.PrestigeUpgrade `yaml:"prestige_upgrades"`
	Badges           []model.Badge           `yaml:"badges"`
	Items            []model.Item            `yaml:"items"`
	HabitTemplates   []model.HabitTemplate   `yaml:"habit_templates"`
	QuestTemplates   []model.QuestTemplate   `yaml:"quest_templates"`
	Users            []model.DirectoryUser   `yaml:"users"`
	Start            Start                   `yaml:"start"`
}

// Default returns the catalog compiled into the binary.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded catalog is invalid: %v", err))
	}
	return c
}

// Load reads a catalog file. An empty path selects the embedded catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates a YAML catalog.
func Parse(raw []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	var errs []error
	if c.Rules.BaseXPToNextLevel <= 0 {
		errs = append(errs, errors.New("rules.base_xp_to_next_level must be positive"))
	}
	if c.Rules.PrestigePointsPerLevels <= 0 {
		errs = append(errs, errors.New("rules.prestige_points_per_levels must be positive"))
	}
	errs = append(errs, uniqueIDs("prestige_upgrades", c.PrestigeUpgrades, func(u model.PrestigeUpgrade) string { return u.ID })...)
	errs = append(errs, uniqueIDs("badges", c.Badges, func(b model.Badge) string { return b.ID })...)
	errs = append(errs, uniqueIDs("items", c.Items, func(i model.Item) string { return i.ID })...)
	errs = append(errs, uniqueIDs("habit_templates", c.HabitTemplates, func(t model.HabitTemplate) string { return t.ID })...)
	errs = append(errs, uniqueIDs("quest_templates", c.QuestTemplates, func(t model.QuestTemplate) string { return t.ID })...)
	errs = append(errs, uniqueIDs("users", c.Users, func(u model.DirectoryUser) string { return u.ID })...)

	for _, it := range c.Items {
		if it.Type == model.ItemGear && it.Slot == "" {
			errs = append(errs, fmt.Errorf("items: gear %q has no slot", it.ID))
		}
	}
	for _, b := range c.Badges {
		if b.Reward.ItemID != "" {
			if _, ok := c.Item(b.Reward.ItemID); !ok {
				errs = append(errs, fmt.Errorf("badges: %q rewards unknown item %q", b.ID, b.Reward.ItemID))
			}
		}
	}
	return errors.Join(errs...)
}

func uniqueIDs[T any](section string, list []T, id func(T) string) []error {
	seen := make(map[string]bool, len(list))
	var errs []error
	for _, v := range list {
		k := id(v)
		if k == "" {
			errs = append(errs, fmt.Errorf("%s: entry without id", section))
			continue
		}
		if seen[k] {
			errs = append(errs, fmt.Errorf("%s: duplicate id %q", section, k))
		}
		seen[k] = true
	}
	return errs
}

// Item looks up a shop item or gear piece by id.
func (c *Catalog) Item(id string) (model.Item, bool) {
	return find(c.Items, func(i model.Item) bool { return i.ID == id })
}

func (c *Catalog) Upgrade(id string) (model.PrestigeUpgrade, bool) {
	return find(c.PrestigeUpgrades, func(u model.PrestigeUpgrade) bool { return u.ID == id })
}

func (c *Catalog) Badge(id string) (model.Badge, bool) {
	return find(c.Badges, func(b model.Badge) bool { return b.ID == id })
}

func (c *Catalog) HabitTemplate(id string) (model.HabitTemplate, bool) {
	return find(c.HabitTemplates, func(t model.HabitTemplate) bool { return t.ID == id })
}

func (c *Catalog) QuestTemplate(id string) (model.QuestTemplate, bool) {
	t, ok := find(c.QuestTemplates, func(t model.QuestTemplate) bool { return t.ID == id })
	return t.Clone(), ok
}

// User looks up a befriendable player in the public directory.
func (c *Catalog) User(id string) (model.DirectoryUser, bool) {
	return find(c.Users, func(u model.DirectoryUser) bool { return u.ID == id })
}

// ThreatXP is the default objective xp for a threat level; unknown levels
// fall back to Minor.
func (c *Catalog) ThreatXP(level model.ThreatLevel) int {
	if xp, ok := c.Rules.ThreatLevelXP[level]; ok {
		return xp
	}
	return c.Rules.ThreatLevelXP[model.ThreatMinor]
}

func find[T any](list []T, match func(T) bool) (T, bool) {
	for _, v := range list {
		if match(v) {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// NewState builds the pre-onboarding state of a fresh account. The result
// shares nothing with the catalog.
func (c *Catalog) NewState() *model.GameState {
	s := &model.GameState{
		Character:            c.Start.Character,
		Settings:             c.Start.Settings,
		Skills:               c.Start.Skills,
		Habits:               c.Start.Habits,
		HabitLogs:            []model.HabitLogEntry{},
		Quests:               c.Start.Quests,
		Goals:                c.Start.Goals,
		Events:               c.Start.Events,
		TheVoid:              []model.VoidThought{},
		ChronicleEntries:     []model.ChronicleEntry{},
		WeeklyReviews:        []model.WeeklyReview{},
		FearSettingExercises: []model.FearSettingExercise{},
		Guilds:               c.Start.Guilds,
		Friends:              c.Start.Friends,
		Toasts:               []model.Toast{},
		AIConversation:       []model.AIMessage{},
		LoadingStates:        map[string]bool{},
	}
	if s.Character.Inventory == nil {
		s.Character.Inventory = []string{}
	}
	s.Character.UnlockedBadges = []model.UnlockedBadge{}
	if s.Character.PurchasedPrestigeUpgrades == nil {
		s.Character.PurchasedPrestigeUpgrades = []string{}
	}
	return s.Clone()
}
