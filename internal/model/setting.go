package model

import "time"

// Setting is a per-user profile/payment/QR preference bag, upserted
// wholesale on save
type Setting struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	UserID        uint      `json:"userId" gorm:"uniqueIndex;not null"`
	Name          string    `json:"name" gorm:"type:varchar(100)"`
	Email         string    `json:"email" gorm:"type:varchar(100)"`
	Phone         string    `json:"phone" gorm:"type:varchar(30)"`
	CountryCode   string    `json:"countryCode" gorm:"type:varchar(10)"`
	Restaurant    string    `json:"restaurant" gorm:"type:varchar(255)"`
	Theme         string    `json:"theme" gorm:"type:varchar(30)"`
	QRSize        string    `json:"qrSize" gorm:"type:varchar(20)"`
	QRColor       string    `json:"qrColor" gorm:"type:varchar(20)"`
	UpiID         string    `json:"upiId" gorm:"type:varchar(100)"`
	BankName      string    `json:"bankName" gorm:"type:varchar(100)"`
	AccountNumber string    `json:"accountNumber" gorm:"type:varchar(50)"`
	IFSC          string    `json:"ifsc" gorm:"type:varchar(20)"`
	MenuID        string    `json:"menuId" gorm:"type:varchar(100);index"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
