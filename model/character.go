package model

import (
	"slices"
	"time"
)

// CharacterClass is the archetype chosen at onboarding.
type CharacterClass string

const (
	ClassArchitect CharacterClass = "Architect"
	ClassWarrior   CharacterClass = "Warrior"
	ClassScholar   CharacterClass = "Scholar"
	ClassMerchant  CharacterClass = "Merchant"
	ClassHealer    CharacterClass = "Healer"
	ClassInventor  CharacterClass = "Inventor"
)

// Valid reports whether c is one of the known classes.
func (c CharacterClass) Valid() bool {
	switch c {
	case ClassArchitect, ClassWarrior, ClassScholar, ClassMerchant, ClassHealer, ClassInventor:
		return true
	}
	return false
}

// Attribute is a bounded stat.
type Attribute struct {
	Value    int `json:"value" yaml:"value"`
	MaxValue int `json:"maxValue" yaml:"maxValue"`
}

type Attributes struct {
	Vitality   Attribute `json:"vitality" yaml:"vitality"`
	Focus      Attribute `json:"focus" yaml:"focus"`
	Discipline Attribute `json:"discipline" yaml:"discipline"`
	Creativity Attribute `json:"creativity" yaml:"creativity"`
	Wisdom     Attribute `json:"wisdom" yaml:"wisdom"`
	Charisma   Attribute `json:"charisma" yaml:"charisma"`
}

// Equipment maps each gear slot to the id of the item worn there.
type Equipment struct {
	Head  *string `json:"head" yaml:"head"`
	Torso *string `json:"torso" yaml:"torso"`
	Legs  *string `json:"legs" yaml:"legs"`
}

// Slot returns the item id worn in slot, or nil.
func (e Equipment) Slot(slot GearSlot) *string {
	switch slot {
	case SlotHead:
		return e.Head
	case SlotTorso:
		return e.Torso
	case SlotLegs:
		return e.Legs
	}
	return nil
}

// SetSlot replaces the item worn in slot. Unknown slots are ignored.
func (e *Equipment) SetSlot(slot GearSlot, itemID *string) {
	switch slot {
	case SlotHead:
		e.Head = itemID
	case SlotTorso:
		e.Torso = itemID
	case SlotLegs:
		e.Legs = itemID
	}
}

type Appearance struct {
	Hairstyle  string `json:"hairstyle" yaml:"hairstyle"`
	HairColor  string `json:"hairColor" yaml:"hairColor"`
	EyeColor   string `json:"eyeColor" yaml:"eyeColor"`
	SkinTone   string `json:"skinTone" yaml:"skinTone"`
	BodyType   string `json:"bodyType" yaml:"bodyType"`
	FaceShape  string `json:"faceShape" yaml:"faceShape"`
	EyeStyle   string `json:"eyeStyle" yaml:"eyeStyle"`
	NoseStyle  string `json:"noseStyle" yaml:"noseStyle"`
	MouthStyle string `json:"mouthStyle" yaml:"mouthStyle"`
}

// AppearanceUpdate carries the appearance fields a caller wants to change.
type AppearanceUpdate struct {
	Hairstyle  *string `json:"hairstyle,omitempty"`
	HairColor  *string `json:"hairColor,omitempty"`
	EyeColor   *string `json:"eyeColor,omitempty"`
	SkinTone   *string `json:"skinTone,omitempty"`
	BodyType   *string `json:"bodyType,omitempty"`
	FaceShape  *string `json:"faceShape,omitempty"`
	EyeStyle   *string `json:"eyeStyle,omitempty"`
	NoseStyle  *string `json:"noseStyle,omitempty"`
	MouthStyle *string `json:"mouthStyle,omitempty"`
}

// Apply returns a with every non-nil field of u written over it.
func (u AppearanceUpdate) Apply(a Appearance) Appearance {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&a.Hairstyle, u.Hairstyle)
	set(&a.HairColor, u.HairColor)
	set(&a.EyeColor, u.EyeColor)
	set(&a.SkinTone, u.SkinTone)
	set(&a.BodyType, u.BodyType)
	set(&a.FaceShape, u.FaceShape)
	set(&a.EyeStyle, u.EyeStyle)
	set(&a.NoseStyle, u.NoseStyle)
	set(&a.MouthStyle, u.MouthStyle)
	return a
}

type UnlockedBadge struct {
	BadgeID    string    `json:"badgeId"`
	UnlockedAt time.Time `json:"unlockedAt"`
}

// Character is the player's avatar and the carrier of all progression.
type Character struct {
	ID                        string          `json:"id" yaml:"id"`
	Name                      string          `json:"name" yaml:"name"`
	Class                     CharacterClass  `json:"class" yaml:"class"`
	Level                     int             `json:"level" yaml:"level"`
	XP                        int             `json:"xp" yaml:"xp"`
	XPToNextLevel             int             `json:"xpToNextLevel" yaml:"xpToNextLevel"`
	HP                        int             `json:"hp" yaml:"hp"`
	MaxHP                     int             `json:"maxHp" yaml:"maxHp"`
	Coins                     int             `json:"coins" yaml:"coins"`
	Streak                    int             `json:"streak" yaml:"streak"`
	Attributes                Attributes      `json:"attributes" yaml:"attributes"`
	Equipment                 Equipment       `json:"equipment" yaml:"equipment"`
	Appearance                Appearance      `json:"appearance" yaml:"appearance"`
	Inventory                 []string        `json:"inventory" yaml:"inventory"`
	UnlockedBadges            []UnlockedBadge `json:"unlockedBadges" yaml:"-"`
	LastLogin                 *time.Time      `json:"lastLogin" yaml:"-"`
	PrestigeLevel             int             `json:"prestigeLevel" yaml:"prestigeLevel"`
	PrestigePoints            int             `json:"prestigePoints" yaml:"prestigePoints"`
	PurchasedPrestigeUpgrades []string        `json:"purchasedPrestigeUpgrades" yaml:"purchasedPrestigeUpgrades"`
	GuildID                   *string         `json:"guildId" yaml:"guildId"`
}

// Owns reports whether itemID is in the inventory.
func (c Character) Owns(itemID string) bool {
	return slices.Contains(c.Inventory, itemID)
}

func (c Character) HasBadge(badgeID string) bool {
	return slices.ContainsFunc(c.UnlockedBadges, func(b UnlockedBadge) bool { return b.BadgeID == badgeID })
}

func (c Character) HasUpgrade(upgradeID string) bool {
	return slices.Contains(c.PurchasedPrestigeUpgrades, upgradeID)
}

// Clone returns a deep copy of c.
func (c Character) Clone() Character {
	out := c
	out.Inventory = slices.Clone(c.Inventory)
	out.UnlockedBadges = slices.Clone(c.UnlockedBadges)
	out.PurchasedPrestigeUpgrades = slices.Clone(c.PurchasedPrestigeUpgrades)
	out.Equipment = Equipment{
		Head:  clonePtr(c.Equipment.Head),
		Torso: clonePtr(c.Equipment.Torso),
		Legs:  clonePtr(c.Equipment.Legs),
	}
	out.LastLogin = clonePtr(c.LastLogin)
	out.GuildID = clonePtr(c.GuildID)
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }
