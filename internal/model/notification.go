package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Notification payload variants
const (
	NotificationTypeOrder      = "order"
	NotificationTypeAssignment = "assignment"
)

// Notification is a durable per-user message. Message is display text only;
// consumers that need the table or restaurant read the typed Payload instead
// of parsing the sentence.
type Notification struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	UserID    uint           `json:"userId" gorm:"index;not null"`
	Message   string         `json:"message" gorm:"type:text"`
	Type      string         `json:"type" gorm:"type:varchar(20)"`
	Payload   datatypes.JSON `json:"payload,omitempty"`
	IsRead    bool           `json:"isRead" gorm:"default:false"`
	Time      time.Time      `json:"time" gorm:"index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// OrderPayload is the structured payload of an order notification
type OrderPayload struct {
	QRName     string `json:"qr_name"`
	Restaurant string `json:"restaurant"`
}

// AssignmentPayload is the structured payload of a table-assignment notification
type AssignmentPayload struct {
	Tables []string `json:"tables"`
}

// MarshalPayload encodes a payload variant into the JSON column type
func MarshalPayload(payload interface{}) datatypes.JSON {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	return datatypes.JSON(data)
}
