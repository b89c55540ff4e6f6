package store

import (
	"context"
	"testing"

	"github.com/kasuganosora/lifeos/game/catalog"
	"github.com/kasuganosora/lifeos/model"
	"github.com/kasuganosora/lifeos/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRoundTripDropsTransientSignals(t *testing.T) {
	s := catalog.Default().NewState()
	s.Version = 12
	s.IsOnboarded = true
	s.Toasts = []model.Toast{{ID: "t"}}
	s.LoadingStates["habit-h1"] = true
	s.RewardModal = &model.Reward{XP: 1}
	s.DailyBriefing = &model.DailyBriefing{Visible: true}
	s.TutorialStep = 2

	payload, err := EncodeSnapshot(s)
	require.NoError(t, err)
	got, err := DecodeSnapshot(snapshotCodec, payload)
	require.NoError(t, err)

	assert.True(t, got.IsOnboarded)
	assert.Equal(t, s.Character, got.Character)
	assert.Equal(t, s.Quests, got.Quests)
	assert.Equal(t, 2, got.TutorialStep)
	assert.NotNil(t, got.DailyBriefing, "the briefing survives a restart")
	assert.Empty(t, got.Toasts)
	assert.Empty(t, got.LoadingStates)
	assert.Nil(t, got.RewardModal)
	assert.Len(t, s.Toasts, 1, "the source state is untouched")
}

func TestDecodeSnapshotUnknownCodec(t *testing.T) {
	_, err := DecodeSnapshot("gob", nil)
	assert.Error(t, err)
}

func TestSaveAndLoadSnapshot(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)

	_, err := LoadSnapshot(ctx, db, 1)
	assert.ErrorIs(t, err, ErrNoSnapshot)

	s := catalog.Default().NewState()
	s.Version = 3
	s.Character.Coins = 7
	require.NoError(t, SaveSnapshot(ctx, db, 1, s))

	s.Version = 4
	s.Character.Coins = 8
	require.NoError(t, SaveSnapshot(ctx, db, 1, s), "second save upserts")

	got, err := LoadSnapshot(ctx, db, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), got.Version)
	assert.Equal(t, 8, got.Character.Coins)

	var n int64
	db.Model(&model.GameSnapshot{}).Count(&n)
	assert.Equal(t, int64(1), n)
}
