package action

import (
	"testing"

	"github.com/kasuganosora/lifeos/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPurchaseItem_Gear(t *testing.T) {
	env := testEnv()
	s := seed()

	p := PurchaseItem(s, env, "gear3")
	require.NotNil(t, p.Character)
	assert.Equal(t, 1100, p.Character.Coins)
	assert.Equal(t, []string{"gear1", "gear3"}, p.Character.Inventory)
	assert.Equal(t, `Purchased "Scholar's Robes" for 150 coins.`, (*p.Events)[0].Message)
	assert.Equal(t, model.EventItemGet, (*p.Events)[0].Type)
	requireToast(t, p, model.ToastSuccess, `Purchased "Scholar's Robes"!`)

	s = p.Merge(s)
	again := PurchaseItem(s, env, "gear3")
	assert.True(t, again.OnlyToasts())
	requireToast(t, again, model.ToastInfo, `You already own "Scholar's Robes".`)
}

func TestPurchaseItem_NotEnoughCoins(t *testing.T) {
	env := testEnv()
	s := seed()
	s.Character.Coins = 999

	p := PurchaseItem(s, env, "item3")
	assert.True(t, p.OnlyToasts())
	requireToast(t, p, model.ToastError, "Not enough coins!")

	requireToast(t, PurchaseItem(s, env, "nope"), model.ToastError, "Item not found.")
}

func TestPurchaseItem_BoostIsConsumed(t *testing.T) {
	env := testEnv()
	s := quiet(seed())
	s.Character.XP = 60

	p := PurchaseItem(s, env, "item1")
	require.NotNil(t, p.Character)
	assert.Equal(t, 1150, p.Character.Coins)
	assert.Equal(t, 2, p.Character.Level)
	assert.Equal(t, 10, p.Character.XP)
	assert.NotContains(t, p.Character.Inventory, "item1")
	assert.Equal(t, "Reached Level 2!", (*p.Events)[0].Message)

	// boosts can be bought again
	s = p.Merge(s)
	p = PurchaseItem(s, env, "item1")
	assert.Equal(t, 1050, p.Character.Coins)
}

func TestEquipItem_Toggles(t *testing.T) {
	env := testEnv()
	s := seed()
	s.Character.Inventory = []string{"gear1", "gear2"}

	// gear2 is worn on the head; equipping gear1 swaps it out
	p := EquipItem(s, env, "gear1")
	require.NotNil(t, p.Character)
	assert.Equal(t, "gear1", *p.Character.Equipment.Head)
	s = p.Merge(s)

	p = EquipItem(s, env, "gear1")
	assert.Nil(t, p.Character.Equipment.Head)

	requireToast(t, EquipItem(s, env, "gear3"), model.ToastError, `You don't own "Scholar's Robes".`)
	requireToast(t, EquipItem(s, env, "item1"), model.ToastError, "Gear not found.")
}

func TestUpdateAppearance(t *testing.T) {
	p := UpdateAppearance(seed(), testEnv(), model.AppearanceUpdate{HairColor: model.Ptr("#ff0000")})
	require.NotNil(t, p.Character)
	assert.Equal(t, "#ff0000", p.Character.Appearance.HairColor)
	assert.Equal(t, "short01", p.Character.Appearance.Hairstyle)
}

func TestPrestige_BelowMinimumIsNoOp(t *testing.T) {
	s := seed()
	s.Character.Level = 19
	assert.True(t, Prestige(s, testEnv()).IsEmpty())
}

func TestPrestige_Resets(t *testing.T) {
	env := testEnv()
	s := seed()
	s.Character.Level = 25
	s.Character.XP = 300
	s.Character.XPToNextLevel = 5000
	s.Character.PrestigePoints = 1
	s.Character.PurchasedPrestigeUpgrades = []string{"pu1"}

	p := Prestige(s, env)
	require.NotNil(t, p.Character)
	c := p.Character
	assert.Equal(t, 1, c.Level)
	assert.Equal(t, 0, c.XP)
	assert.Equal(t, 100, c.XPToNextLevel)
	assert.Equal(t, 0, c.Coins)
	assert.Equal(t, 1, c.PrestigeLevel)
	assert.Equal(t, 3, c.PrestigePoints)
	assert.Equal(t, []string{"pu1"}, c.PurchasedPrestigeUpgrades)
	assert.Equal(t, []string{"gear1"}, c.Inventory)

	require.NotNil(t, p.Skills)
	for _, sk := range *p.Skills {
		assert.Equal(t, 1, sk.Level)
		assert.Equal(t, 0, sk.XP)
		assert.Equal(t, 100, sk.XPToNextLevel)
		assert.Empty(t, sk.Perks)
	}
	assert.Nil(t, p.Habits)
	assert.Nil(t, p.Quests)
	assert.Nil(t, p.Goals)

	after := p.Merge(s)
	assert.Equal(t, s.Habits, after.Habits)
	assert.Equal(t, s.Quests, after.Quests)
	assert.Equal(t, s.Goals, after.Goals)
	assert.Equal(t, "You have prestiged! Your journey begins anew, but with greater wisdom.", after.Events[0].Message)
}

func TestPurchasePrestigeUpgrade(t *testing.T) {
	env := testEnv()
	s := seed()
	s.Character.PrestigePoints = 2

	p := PurchasePrestigeUpgrade(s, env, "pu1")
	require.NotNil(t, p.Character)
	assert.Equal(t, 1, p.Character.PrestigePoints)
	assert.Equal(t, []string{"pu1"}, p.Character.PurchasedPrestigeUpgrades)
	requireToast(t, p, model.ToastSuccess, `Unlocked "Path of the Scholar"!`)
	s = p.Merge(s)

	requireToast(t, PurchasePrestigeUpgrade(s, env, "pu1"), model.ToastError, `"Path of the Scholar" is already unlocked.`)
	requireToast(t, PurchasePrestigeUpgrade(s, env, "pu3"), model.ToastError, "Not enough prestige points!")
	requireToast(t, PurchasePrestigeUpgrade(s, env, "nope"), model.ToastError, "Upgrade not found.")
}
