package domain

import "time"

// User is keyed by phone number; registering the same phone again replaces
// the whole row, including created_at and the admin flag.
type User struct {
	Phone     string    `gorm:"primaryKey;column:phone" json:"phone"`
	Name      string    `gorm:"not null;column:name" json:"name"`
	Age       int       `gorm:"not null;column:age" json:"age"`
	Gender    string    `gorm:"not null;column:gender" json:"gender"`
	IsAdmin   bool      `gorm:"not null;default:false;column:is_admin" json:"is_admin"`
	CreatedAt time.Time `gorm:"not null;column:created_at" json:"created_at"`
}

func (User) TableName() string { return "users" }
