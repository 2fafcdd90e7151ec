package model

import "time"

// Table is a QR-addressable seating unit, independent of staff assignment
type Table struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"type:varchar(100);not null"`
	HotelName    string    `json:"hotelName" gorm:"type:varchar(255);index"`
	RestaurantID uint      `json:"restaurant_id" gorm:"index"`
	CreatedAt    time.Time `json:"created_at"`
}
