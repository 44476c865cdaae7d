package models

import "time"

// Base holds the identity and timestamps gorm manages. UpdatedAt is refreshed
// on every Save/Updates.
type Base struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
