package model

import "time"

// Order lifecycle states. An order is created Pending and can only move to
// Completed, never back.
const (
	OrderStatusPending   = "Pending"
	OrderStatusCompleted = "Completed"
)

// Order is a customer order placed from a table's QR menu
type Order struct {
	ID            uint        `json:"id" gorm:"primaryKey"`
	Restaurant    string      `json:"restaurant" gorm:"type:varchar(255);index"`
	RestaurantID  uint        `json:"restaurant_id" gorm:"index"`
	QRName        string      `json:"qrName" gorm:"type:varchar(100);index"`
	Items         []OrderItem `json:"items" gorm:"foreignKey:OrderID"`
	Total         float64     `json:"total"`
	PaymentMethod string      `json:"paymentMethod" gorm:"type:varchar(50)"`
	Time          time.Time   `json:"time" gorm:"index"`
	Status        string      `json:"status" gorm:"type:varchar(20);default:Pending;index"`
	Read          bool        `json:"read" gorm:"default:false"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// OrderItem is a single line of an order, kept in placement order
type OrderItem struct {
	ID      uint    `json:"id" gorm:"primaryKey"`
	OrderID uint    `json:"-" gorm:"index;not null"`
	Name    string  `json:"name" gorm:"type:varchar(255)"`
	Price   float64 `json:"price"`
	Image   string  `json:"image" gorm:"type:text"`
}

// IsCompleted reports whether the order reached its terminal state
func (o *Order) IsCompleted() bool {
	return o.Status == OrderStatusCompleted
}
