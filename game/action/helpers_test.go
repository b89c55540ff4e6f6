package action

import (
	"fmt"
	"testing"
	"time"

	"github.com/kasuganosora/lifeos/game/catalog"
	"github.com/kasuganosora/lifeos/model"
	"github.com/stretchr/testify/require"
)

// Wednesday.
var now = time.Date(2024, 5, 15, 9, 0, 0, 0, time.UTC)

func testEnv() Env {
	n := 0
	return Env{
		Now:     now,
		Catalog: catalog.Default(),
		NewID: func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		},
	}
}

func seed() *model.GameState {
	return catalog.Default().NewState()
}

// quiet marks every badge unlocked so reward math is not mixed with badge
// payouts.
func quiet(s *model.GameState) *model.GameState {
	for _, b := range catalog.Default().Badges {
		s.Character.UnlockedBadges = append(s.Character.UnlockedBadges, model.UnlockedBadge{BadgeID: b.ID})
	}
	return s
}

func requireToast(t *testing.T, p model.Patch, typ model.ToastType, msg string) {
	t.Helper()
	require.Len(t, p.Toasts, 1)
	require.Equal(t, typ, p.Toasts[0].Type)
	require.Equal(t, msg, p.Toasts[0].Message)
}
