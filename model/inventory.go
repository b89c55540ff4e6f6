package model

type ItemType string

const (
	ItemBoost  ItemType = "Boost"
	ItemSkin   ItemType = "Skin"
	ItemAvatar ItemType = "Avatar"
	ItemGear   ItemType = "Gear"
)

type GearSlot string

const (
	SlotHead  GearSlot = "head"
	SlotTorso GearSlot = "torso"
	SlotLegs  GearSlot = "legs"
)

// BoostEffect is applied the moment a Boost item is bought.
type BoostEffect struct {
	XP    int `json:"xp,omitempty" yaml:"xp"`
	Coins int `json:"coins,omitempty" yaml:"coins"`
	HP    int `json:"hp,omitempty" yaml:"hp"`
}

// Item is anything sold in the shop. Gear items also carry a Slot.
type Item struct {
	ID          string       `json:"id" yaml:"id"`
	Name        string       `json:"name" yaml:"name"`
	Description string       `json:"description" yaml:"description"`
	Price       int          `json:"price" yaml:"price"`
	Rarity      string       `json:"rarity" yaml:"rarity"`
	Icon        string       `json:"icon" yaml:"icon"`
	Type        ItemType     `json:"type" yaml:"type"`
	Slot        GearSlot     `json:"slot,omitempty" yaml:"slot"`
	Effect      *BoostEffect `json:"effect,omitempty" yaml:"effect"`
}

// Reward is an xp/coin grant, optionally with an item.
type Reward struct {
	XP     int    `json:"xp" yaml:"xp"`
	Coins  int    `json:"coins" yaml:"coins"`
	ItemID string `json:"itemId,omitempty" yaml:"itemId"`
}

type BadgeCriterion string

const (
	CriterionLevel           BadgeCriterion = "level"
	CriterionStreak          BadgeCriterion = "streak"
	CriterionQuestsCompleted BadgeCriterion = "questsCompleted"
	CriterionHabitsCompleted BadgeCriterion = "habitsCompleted"
)

type BadgeCriteria struct {
	Type  BadgeCriterion `json:"type" yaml:"type"`
	Value int            `json:"value" yaml:"value"`
}

type Badge struct {
	ID          string        `json:"id" yaml:"id"`
	Name        string        `json:"name" yaml:"name"`
	Description string        `json:"description" yaml:"description"`
	Icon        string        `json:"icon" yaml:"icon"`
	Criteria    BadgeCriteria `json:"criteria" yaml:"criteria"`
	Reward      Reward        `json:"reward" yaml:"reward"`
}

type UpgradeType string

const (
	UpgradeXPBoost   UpgradeType = "xp_boost"
	UpgradeCoinBoost UpgradeType = "coin_boost"
)

// PrestigeUpgrade is a permanent multiplier bought with prestige points.
type PrestigeUpgrade struct {
	ID          string      `json:"id" yaml:"id"`
	Name        string      `json:"name" yaml:"name"`
	Description string      `json:"description" yaml:"description"`
	Cost        int         `json:"cost" yaml:"cost"`
	Type        UpgradeType `json:"type" yaml:"type"`
	Value       float64     `json:"value" yaml:"value"`
}
