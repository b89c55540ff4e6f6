package rest

import (
	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/lifeos/game/action"
	"github.com/kasuganosora/lifeos/model"
)

// PurchaseItem buys a catalog item with coins.
// POST /api/shop/:id/purchase
func (h *GameHandler) PurchaseItem(c *gin.Context) {
	id := c.Param("id")
	h.dispatch(c, "purchase-"+id, "purchase_item", func(s *model.GameState, env action.Env) model.Patch {
		return action.PurchaseItem(s, env, id)
	})
}

// EquipItem toggles an owned piece of gear.
// POST /api/gear/:id/equip
func (h *GameHandler) EquipItem(c *gin.Context) {
	id := c.Param("id")
	h.dispatch(c, "equip-"+id, "equip_item", func(s *model.GameState, env action.Env) model.Patch {
		return action.EquipItem(s, env, id)
	})
}

// UpdateAppearance changes the avatar.
// PUT /api/appearance
func (h *GameHandler) UpdateAppearance(c *gin.Context) {
	var u model.AppearanceUpdate
	if !bind(c, &u) {
		return
	}
	h.dispatch(c, "updateAppearance", "update_appearance", func(s *model.GameState, env action.Env) model.Patch {
		return action.UpdateAppearance(s, env, u)
	})
}

// Prestige resets progress for prestige points.
// POST /api/prestige
func (h *GameHandler) Prestige(c *gin.Context) {
	h.dispatch(c, "prestige", "prestige", action.Prestige)
}

// PurchasePrestigeUpgrade spends prestige points.
// POST /api/prestige/upgrades/:id
func (h *GameHandler) PurchasePrestigeUpgrade(c *gin.Context) {
	id := c.Param("id")
	h.dispatch(c, "purchasePrestige-"+id, "purchase_prestige_upgrade", func(s *model.GameState, env action.Env) model.Patch {
		return action.PurchasePrestigeUpgrade(s, env, id)
	})
}
