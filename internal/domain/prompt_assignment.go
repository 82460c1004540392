package domain

import "time"

const (
	PromptKindTruth   = "truth"
	PromptKindDare    = "dare"
	PromptKindTwister = "twister"
)

// PromptAssignment records every generated prompt for a (phone, kind) pair,
// written at generation time whether or not the user ever responds.
type PromptAssignment struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Phone      string    `gorm:"not null;index:idx_history_phone_kind;column:phone" json:"phone"`
	Kind       string    `gorm:"not null;index:idx_history_phone_kind;column:kind" json:"kind"`
	Prompt     string    `gorm:"not null;column:prompt" json:"prompt"`
	AssignedAt time.Time `gorm:"not null;column:assigned_at" json:"assigned_at"`
}

func (PromptAssignment) TableName() string { return "truth_dare_history" }
