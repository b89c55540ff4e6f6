package model

import "time"

type EventType string

const (
	EventXPGain      EventType = "xp_gain"
	EventHPLoss      EventType = "hp_loss"
	EventCoinGain    EventType = "coin_gain"
	EventItemGet     EventType = "item_get"
	EventLevelUp     EventType = "level_up"
	EventBadgeUnlock EventType = "badge_unlock"
	EventWisdomGain  EventType = "wisdom_gain"
)

// MaxEvents bounds the event log; the oldest entries fall off.
const MaxEvents = 50

// GameEvent is one line of the activity log, newest first.
type GameEvent struct {
	ID        string    `json:"id" yaml:"id"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Message   string    `json:"message" yaml:"message"`
	Type      EventType `json:"type" yaml:"type"`
}

// VoidThought is an unstructured note awaiting conversion into a quest.
type VoidThought struct {
	ID        string    `json:"id" yaml:"id"`
	Text      string    `json:"text" yaml:"text"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
}

type ChronicleEntry struct {
	ID            string    `json:"id" yaml:"id"`
	Content       string    `json:"content" yaml:"content"`
	Summary       string    `json:"summary" yaml:"summary"`
	WisdomAwarded int       `json:"wisdomAwarded" yaml:"wisdomAwarded"`
	Timestamp     time.Time `json:"timestamp" yaml:"timestamp"`
}

type WeeklyReview struct {
	ID      string `json:"id" yaml:"id"`
	Date    string `json:"date" yaml:"date"`
	Wins    string `json:"wins" yaml:"wins"`
	Lessons string `json:"lessons" yaml:"lessons"`
	Goals   string `json:"goals" yaml:"goals"`
}

type FearSettingExercise struct {
	ID      string `json:"id" yaml:"id"`
	Date    string `json:"date" yaml:"date"`
	QuestID string `json:"questId" yaml:"questId"`
	Define  string `json:"define" yaml:"define"`
	Prevent string `json:"prevent" yaml:"prevent"`
	Repair  string `json:"repair" yaml:"repair"`
}

type ChronicleInput struct {
	Content string `json:"content" binding:"required"`
	Summary string `json:"summary"`
	Wisdom  int    `json:"wisdomAwarded"`
}

type WeeklyReviewInput struct {
	Wins    string `json:"wins"`
	Lessons string `json:"lessons"`
	Goals   string `json:"goals"`
}

type FearSettingInput struct {
	QuestID string `json:"questId"`
	Define  string `json:"define"`
	Prevent string `json:"prevent"`
	Repair  string `json:"repair"`
}
