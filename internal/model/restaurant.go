package model

import "time"

// Restaurant is the stable join key behind the display-name strings that
// orders, staff and tables are scoped by. Two restaurants may not share a
// name; renames only touch the Name column.
type Restaurant struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"type:varchar(255);uniqueIndex;not null"`
	OwnerUserID uint      `json:"owner_user_id" gorm:"index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
