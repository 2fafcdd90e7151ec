package model

import "time"

// MenuItem is a dish on a user's published menu
type MenuItem struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"userId" gorm:"index;not null"`
	Name      string    `json:"name" gorm:"type:varchar(255)"`
	Price     float64   `json:"price"`
	Image     string    `json:"image" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
