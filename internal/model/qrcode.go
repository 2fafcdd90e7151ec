package model

import "time"

// QRCode is a generated table QR image owned by a user
type QRCode struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	UserID       uint      `json:"userId" gorm:"index"`
	QRName       string    `json:"qrName" gorm:"type:varchar(100);index"`
	Image        string    `json:"image" gorm:"type:text"` // base64
	Link         string    `json:"link" gorm:"type:text"`
	DownloadedAt time.Time `json:"downloadedAt"`
	CreatedAt    time.Time `json:"created_at"`
}
