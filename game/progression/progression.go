// Package progression holds the numeric rules of the game: leveling,
// reward multipliers and recurrence scheduling. Every function is pure.
package progression

import (
	"math"

	"github.com/kasuganosora/lifeos/model"
)

// BaseXPToNextLevel is the threshold of a level-1 character or skill.
const BaseXPToNextLevel = 100

// epsilon absorbs float error before flooring, so 20*1.1*1.1 = 24.2 never
// lands on 24.199999.
const epsilon = 1e-9

// AddXP adds amount to the character's xp and levels up while xp reaches
// the threshold, growing the threshold by floor(1.5x) each time. The
// post-condition xp < xpToNextLevel always holds. Non-positive amounts are
// a no-op.
func AddXP(c model.Character, amount int) (model.Character, bool) {
	if amount <= 0 {
		return c, false
	}
	if c.XPToNextLevel <= 0 {
		c.XPToNextLevel = BaseXPToNextLevel
	}
	c.XP += amount
	startLevel := c.Level
	for c.XP >= c.XPToNextLevel {
		c.Level++
		c.XP -= c.XPToNextLevel
		c.XPToNextLevel = c.XPToNextLevel * 3 / 2
	}
	return c, c.Level > startLevel
}

// Multipliers returns the xp and coin multipliers granted by the purchased
// prestige upgrades: the product of (1 + value) per upgrade of each type.
// Unknown ids are ignored.
func Multipliers(purchased []string, upgrades []model.PrestigeUpgrade) (xp, coin float64) {
	xp, coin = 1, 1
	for _, id := range purchased {
		for _, u := range upgrades {
			if u.ID != id {
				continue
			}
			switch u.Type {
			case model.UpgradeXPBoost:
				xp *= 1 + u.Value
			case model.UpgradeCoinBoost:
				coin *= 1 + u.Value
			}
			break
		}
	}
	return xp, coin
}

// Reward computes the xp and coins earned for an action worth baseXP:
//
//	xp    = floor(baseXP * xpGainRate/100 * xpMultiplier)
//	coins = floor(floor(baseXP/2) * coinMultiplier)
func Reward(baseXP int, settings model.Settings, c model.Character, upgrades []model.PrestigeUpgrade) (xp, coins int) {
	if baseXP <= 0 {
		return 0, 0
	}
	xpMult, coinMult := Multipliers(c.PurchasedPrestigeUpgrades, upgrades)
	rate := float64(settings.XPGainRate) / 100
	xp = int(math.Floor(float64(baseXP)*rate*xpMult + epsilon))
	coins = int(math.Floor(float64(baseXP/2)*coinMult + epsilon))
	if xp < 0 {
		xp = 0
	}
	return xp, coins
}

// PrestigePoints is the number of points earned by prestiging at level.
func PrestigePoints(level, perLevels int) int {
	if perLevels <= 0 {
		return 0
	}
	return level / perLevels
}

// ResetSkill returns s at level 1 with no xp and no perks.
func ResetSkill(s model.Skill) model.Skill {
	s.Level = 1
	s.XP = 0
	s.XPToNextLevel = BaseXPToNextLevel
	s.Perks = []string{}
	return s
}
