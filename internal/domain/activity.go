package domain

import (
	"time"

	"gorm.io/datatypes"
)

const (
	ActivityKindTruth         = "Truth"
	ActivityKindDare          = "Dare"
	ActivityKindMeme          = "Meme"
	ActivityKindTongueTwister = "TongueTwister"
)

// Activity is one row of the append-only activity log. Rows are never
// updated or deleted once written.
type Activity struct {
	ID           uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Phone        string         `gorm:"not null;index;column:phone" json:"phone"`
	ActivityType string         `gorm:"not null;column:activity_type" json:"activity_type"`
	Prompt       *string        `gorm:"column:prompt" json:"prompt,omitempty"`
	ResponseText *string        `gorm:"column:response_text" json:"response_text,omitempty"`
	FilePath     *string        `gorm:"column:file_path" json:"file_path,omitempty"`
	FileMeta     datatypes.JSON `gorm:"column:file_meta" json:"file_meta,omitempty"`
	CreatedAt    time.Time      `gorm:"not null;index;column:timestamp" json:"timestamp"`
}

func (Activity) TableName() string { return "activities" }

// ActivityWithUser is the listing row: an activity joined with the display
// name of the user who produced it.
type ActivityWithUser struct {
	Activity
	Name string `json:"name"`
}
