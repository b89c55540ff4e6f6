package model

import "time"

// GameSnapshot is the persisted, compressed game state of one account.
type GameSnapshot struct {
	AccountID int64     `gorm:"primaryKey" json:"account_id"`
	Version   uint64    `json:"version"`
	Codec     string    `gorm:"size:16;not null" json:"codec"` // "zstd+json"
	Payload   []byte    `gorm:"not null" json:"-"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (GameSnapshot) TableName() string { return "game_snapshots" }
