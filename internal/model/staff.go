package model

import "time"

// Staff is an employee responsible for zero or more tables within one
// restaurant. The authoritative table mapping lives in TableAssignment;
// AssignedTables is filled in for API responses.
type Staff struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"type:varchar(100)"`
	HotelName    string    `json:"hotelName" gorm:"type:varchar(255);index"`
	RestaurantID uint      `json:"restaurant_id" gorm:"index"`
	UserID       uint      `json:"userId" gorm:"index;not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	AssignedTables []string `json:"assignedTables" gorm:"-"`
}

// TableAssignment maps a table name to the staff member serving it. The
// unique index is what keeps a table on at most one staff member per
// restaurant even under concurrent reassignment.
type TableAssignment struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	RestaurantID uint      `json:"restaurant_id" gorm:"uniqueIndex:idx_restaurant_table;not null"`
	TableName    string    `json:"table_name" gorm:"type:varchar(100);uniqueIndex:idx_restaurant_table;not null"`
	StaffID      uint      `json:"staff_id" gorm:"index;not null"`
	CreatedAt    time.Time `json:"created_at"`
}
