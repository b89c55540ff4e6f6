package action

import (
	"github.com/kasuganosora/lifeos/game/progression"
	"github.com/kasuganosora/lifeos/model"
)

// PurchaseItem buys a catalog item. Boost items take effect at once and are
// never stored; anything else lands in the inventory and can only be bought
// once.
func PurchaseItem(s *model.GameState, env Env, itemID string) model.Patch {
	it, ok := env.Catalog.Item(itemID)
	if !ok {
		return env.fail("Item not found.")
	}
	if it.Type != model.ItemBoost && s.Character.Owns(it.ID) {
		return env.info(`You already own "%s".`, it.Name)
	}
	if it.Price > s.Character.Coins {
		return env.fail("Not enough coins!")
	}

	next := s.Clone()
	next.Character.Coins -= it.Price
	next.Events = env.pushEvent(next.Events, model.EventItemGet, `Purchased "%s" for %d coins.`, it.Name, it.Price)
	if it.Type == model.ItemBoost {
		if e := it.Effect; e != nil {
			next.Character.Coins += e.Coins
			next.Character.HP = min(next.Character.MaxHP, next.Character.HP+e.HP)
			var leveled bool
			next.Character, leveled = progression.AddXP(next.Character, e.XP)
			if leveled {
				next.Events = env.pushEvent(next.Events, model.EventLevelUp, "Reached Level %d!", next.Character.Level)
			}
		}
	} else {
		next.Character.Inventory = append(next.Character.Inventory, it.ID)
	}

	p := model.Patch{
		Character: &next.Character,
		Events:    &next.Events,
		Toasts:    env.success(`Purchased "%s"!`, it.Name),
	}
	return env.withBadges(p, s, next)
}

// EquipItem wears an owned gear piece in its slot, or takes it off when the
// slot already holds it.
func EquipItem(s *model.GameState, env Env, gearID string) model.Patch {
	it, ok := env.Catalog.Item(gearID)
	if !ok || it.Type != model.ItemGear {
		return env.fail("Gear not found.")
	}
	if !s.Character.Owns(it.ID) {
		return env.fail(`You don't own "%s".`, it.Name)
	}

	next := s.Clone()
	eq := &next.Character.Equipment
	if cur := eq.Slot(it.Slot); cur != nil && *cur == it.ID {
		eq.SetSlot(it.Slot, nil)
	} else {
		eq.SetSlot(it.Slot, model.Ptr(it.ID))
	}
	return model.Patch{Character: &next.Character}
}

// UpdateAppearance changes the character's look.
func UpdateAppearance(s *model.GameState, env Env, u model.AppearanceUpdate) model.Patch {
	next := s.Clone()
	next.Character.Appearance = u.Apply(next.Character.Appearance)
	return model.Patch{Character: &next.Character}
}

// Prestige resets level, xp, coins and skills in exchange for prestige
// points. Below the minimum level it changes nothing. Habits, quests,
// goals, items and bought upgrades survive.
func Prestige(s *model.GameState, env Env) model.Patch {
	rules := env.Catalog.Rules
	if s.Character.Level < rules.PrestigeMinLevel {
		return model.Patch{}
	}

	next := s.Clone()
	c := &next.Character
	c.PrestigePoints += progression.PrestigePoints(c.Level, rules.PrestigePointsPerLevels)
	c.PrestigeLevel++
	c.Level = 1
	c.XP = 0
	c.XPToNextLevel = rules.BaseXPToNextLevel
	c.Coins = 0
	for i := range next.Skills {
		next.Skills[i] = progression.ResetSkill(next.Skills[i])
	}
	next.Events = env.pushEvent(next.Events, model.EventLevelUp,
		"You have prestiged! Your journey begins anew, but with greater wisdom.")

	return model.Patch{Character: &next.Character, Skills: &next.Skills, Events: &next.Events}
}

// PurchasePrestigeUpgrade spends prestige points on a permanent multiplier.
// The multiplier is looked up by id whenever a reward is computed.
func PurchasePrestigeUpgrade(s *model.GameState, env Env, upgradeID string) model.Patch {
	u, ok := env.Catalog.Upgrade(upgradeID)
	if !ok {
		return env.fail("Upgrade not found.")
	}
	if s.Character.HasUpgrade(u.ID) {
		return env.fail(`"%s" is already unlocked.`, u.Name)
	}
	if s.Character.PrestigePoints < u.Cost {
		return env.fail("Not enough prestige points!")
	}

	next := s.Clone()
	next.Character.PrestigePoints -= u.Cost
	next.Character.PurchasedPrestigeUpgrades = append(next.Character.PurchasedPrestigeUpgrades, u.ID)
	return model.Patch{
		Character: &next.Character,
		Toasts:    env.success(`Unlocked "%s"!`, u.Name),
	}
}
