// Package ranking keeps the global leaderboard in a cache sorted set.
// Scores order by level first and xp within a level.
package ranking

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kasuganosora/lifeos/cache"
	"github.com/kasuganosora/lifeos/model"
	"go.uber.org/zap"
)

const (
	zKey       = "ranking:level"
	playerKey  = "ranking:player:"
	levelScale = 1_000_000
)

// Board is the leaderboard service.
type Board struct {
	cache  cache.Cache
	logger *zap.Logger
}

// New creates a Board over c.
func New(c cache.Cache, logger *zap.Logger) *Board {
	return &Board{cache: c, logger: logger}
}

// Score is the sort key of a player.
func Score(level, xp int) float64 {
	return float64(level)*levelScale + float64(xp)
}

// Update records the player's current standing. Players without a
// character id are ignored.
func (b *Board) Update(ctx context.Context, u model.DirectoryUser) error {
	if u.ID == "" {
		return nil
	}
	raw, err := json.Marshal(u)
	if err != nil {
		return err
	}
	if err := b.cache.Set(ctx, playerKey+u.ID, string(raw), 0); err != nil {
		return fmt.Errorf("ranking: store player: %w", err)
	}
	if err := b.cache.ZAdd(ctx, zKey, Score(u.Level, u.XP), u.ID); err != nil {
		return fmt.Errorf("ranking: zadd: %w", err)
	}
	return nil
}

// Seed records every user, typically the catalog directory at startup.
func (b *Board) Seed(ctx context.Context, users []model.DirectoryUser) error {
	for _, u := range users {
		if err := b.Update(ctx, u); err != nil {
			return err
		}
	}
	return nil
}

// Remove drops a player from the board.
func (b *Board) Remove(ctx context.Context, id string) error {
	if err := b.cache.ZRem(ctx, zKey, id); err != nil {
		return err
	}
	return b.cache.Del(ctx, playerKey+id)
}

// Top returns the best n players, rank 1 first.
func (b *Board) Top(ctx context.Context, n int) ([]model.LeaderboardEntry, error) {
	if n <= 0 {
		return []model.LeaderboardEntry{}, nil
	}
	members, err := b.cache.ZRevRangeWithScores(ctx, zKey, 0, int64(n-1))
	if err != nil {
		return nil, fmt.Errorf("ranking: range: %w", err)
	}
	out := make([]model.LeaderboardEntry, 0, len(members))
	for _, m := range members {
		u, err := b.player(ctx, m.Member)
		if err != nil {
			// Score without a profile; skip rather than render a blank row.
			b.logger.Warn("ranking player missing", zap.String("character_id", m.Member), zap.Error(err))
			continue
		}
		out = append(out, model.LeaderboardEntry{
			Rank:          len(out) + 1,
			CharacterID:   u.ID,
			CharacterName: u.Name,
			Level:         u.Level,
			XP:            u.XP,
			AvatarURL:     u.AvatarURL,
		})
	}
	return out, nil
}

// Rank returns the 1-based position of id, or 0 if it is not ranked.
func (b *Board) Rank(ctx context.Context, id string) (int, error) {
	r, err := b.cache.ZRevRank(ctx, zKey, id)
	if cache.IsNotFound(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return int(r) + 1, nil
}

func (b *Board) player(ctx context.Context, id string) (model.DirectoryUser, error) {
	var u model.DirectoryUser
	raw, err := b.cache.Get(ctx, playerKey+id)
	if err != nil {
		return u, err
	}
	err = json.Unmarshal([]byte(raw), &u)
	return u, err
}
