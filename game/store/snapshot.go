package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/kasuganosora/lifeos/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const snapshotCodec = "zstd+json"

// ErrNoSnapshot is returned by LoadSnapshot for an account that was never saved.
var ErrNoSnapshot = errors.New("store: no snapshot")

var (
	zenc, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	zdec, _ = zstd.NewReader(nil)
)

// persistable drops the signals that only make sense while a client is
// watching: spinners, toasts and animations whose hide timers die with the
// session.
func persistable(s *model.GameState) *model.GameState {
	out := s.Clone()
	out.LoadingStates = map[string]bool{}
	out.Toasts = []model.Toast{}
	out.RewardModal = nil
	out.BattleAnimation = nil
	out.BadgeNotification = nil
	out.BossFightVictory = nil
	return out
}

// EncodeSnapshot serialises s for storage.
func EncodeSnapshot(s *model.GameState) ([]byte, error) {
	raw, err := json.Marshal(persistable(s))
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return zenc.EncodeAll(raw, make([]byte, 0, len(raw)/4)), nil
}

func DecodeSnapshot(codec string, payload []byte) (*model.GameState, error) {
	if codec != snapshotCodec {
		return nil, fmt.Errorf("decode snapshot: unknown codec %q", codec)
	}
	raw, err := zdec.DecodeAll(payload, nil)
	if err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	var s model.GameState
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if s.LoadingStates == nil {
		s.LoadingStates = map[string]bool{}
	}
	return &s, nil
}

// SaveSnapshot upserts the account's snapshot row.
func SaveSnapshot(ctx context.Context, db *gorm.DB, accountID int64, s *model.GameState) error {
	payload, err := EncodeSnapshot(s)
	if err != nil {
		return err
	}
	row := model.GameSnapshot{
		AccountID: accountID,
		Version:   s.Version,
		Codec:     snapshotCodec,
		Payload:   payload,
	}
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "account_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"version", "codec", "payload", "updated_at"}),
	}).Create(&row).Error
}

func LoadSnapshot(ctx context.Context, db *gorm.DB, accountID int64) (*model.GameState, error) {
	var row model.GameSnapshot
	err := db.WithContext(ctx).Where("account_id = ?", accountID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, err
	}
	s, err := DecodeSnapshot(row.Codec, row.Payload)
	if err != nil {
		return nil, err
	}
	s.Version = row.Version
	return s, nil
}
