package model

import "slices"

type ToastType string

const (
	ToastSuccess ToastType = "success"
	ToastInfo    ToastType = "info"
	ToastError   ToastType = "error"
)

type Toast struct {
	ID      string    `json:"id"`
	Message string    `json:"message"`
	Type    ToastType `json:"type"`
}

type BattleAnimation struct {
	HPLoss int `json:"hpLoss"`
}

type DailyBriefing struct {
	Visible bool   `json:"visible"`
	Bonus   Reward `json:"bonus"`
}

type AISender string

const (
	SenderUser AISender = "user"
	SenderAI   AISender = "ai"
)

// QuestPlan is a structured quest proposal produced by the companion.
type QuestPlan struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Purpose     string   `json:"purpose"`
	Objectives  []string `json:"objectives"`
}

type AIMessage struct {
	ID        string     `json:"id"`
	Sender    AISender   `json:"sender"`
	Text      string     `json:"text"`
	IsLoading bool       `json:"isLoading,omitempty"`
	Plan      *QuestPlan `json:"plan,omitempty"`
}

func (m AIMessage) Clone() AIMessage {
	if m.Plan != nil {
		p := *m.Plan
		p.Objectives = slices.Clone(p.Objectives)
		m.Plan = &p
	}
	return m
}

// Nullable is a patch field that can either set a value or clear it. A nil
// *Nullable leaves the field unchanged.
type Nullable[T any] struct {
	Value *T `json:"value"`
}

// Set returns a Nullable that assigns v.
func Set[T any](v T) *Nullable[T] { return &Nullable[T]{Value: &v} }

// Clear returns a Nullable that resets the field to none.
func Clear[T any]() *Nullable[T] { return &Nullable[T]{} }
