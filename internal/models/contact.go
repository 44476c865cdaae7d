package models

import "time"

// Contact is an inquiry from the contact form. CreatedAt is write-once.
type Contact struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Email     string    `gorm:"size:120;not null" json:"email"`
	Subject   string    `gorm:"size:200;not null" json:"subject"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	CreatedAt time.Time `gorm:"<-:create" json:"created_at"`
	IsRead    bool      `gorm:"not null;default:false" json:"is_read"`
}
