package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/lifeos/game/catalog"
)

// CatalogHandler lists the static game data.
type CatalogHandler struct {
	cat *catalog.Catalog
}

func NewCatalogHandler(cat *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{cat: cat}
}

// Catalog returns items, badges, templates, upgrades and directory users.
// GET /api/catalog
func (h *CatalogHandler) Catalog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"items":            h.cat.Items,
		"badges":           h.cat.Badges,
		"habitTemplates":   h.cat.HabitTemplates,
		"questTemplates":   h.cat.QuestTemplates,
		"prestigeUpgrades": h.cat.PrestigeUpgrades,
		"users":            h.cat.Users,
		"rules":            h.cat.Rules,
	})
}
