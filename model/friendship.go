package model

// FriendStatus is the state of a relationship from the owner's point of view.
type FriendStatus string

const (
	FriendAccepted   FriendStatus = "FRIEND"
	FriendPendingIn  FriendStatus = "PENDING_IN"
	FriendPendingOut FriendStatus = "PENDING_OUT"
)

// Friend is keyed by the other user's character id.
type Friend struct {
	ID        string       `json:"id" yaml:"id"`
	Name      string       `json:"name" yaml:"name"`
	AvatarURL string       `json:"avatarUrl" yaml:"avatarUrl"`
	Level     int          `json:"level" yaml:"level"`
	Status    FriendStatus `json:"status" yaml:"status"`
}

// DirectoryUser is a publicly visible player that can be befriended.
type DirectoryUser struct {
	ID        string `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	Level     int    `json:"level" yaml:"level"`
	XP        int    `json:"xp" yaml:"xp"`
	AvatarURL string `json:"avatarUrl" yaml:"avatarUrl"`
}
