package models

import "time"

// Category groups products. Deleting a category deletes its products.
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description *string   `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`

	Products []Product `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
