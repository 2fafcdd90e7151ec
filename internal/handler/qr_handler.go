package handler

import (
	"errors"
	"net/http"
	"time"

	"smartserve/internal/model"
	"smartserve/pkg/database"
	"smartserve/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SaveQRCode handles POST /api/qrcode/save. Saving a table QR also registers
// the table itself under the owner's restaurant so staff assignment can see
// it straight away.
func SaveQRCode(c echo.Context) error {
	log := logger.FromContext(c)

	var req struct {
		UserID uint   `json:"userId"`
		QRName string `json:"qrName"`
		Image  string `json:"image"`
		Link   string `json:"link"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse QR save request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request"})
	}
	if req.UserID == 0 || req.QRName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "userId and qrName are required"})
	}

	qr := model.QRCode{
		UserID: req.UserID,
		QRName: req.QRName,
		Image:  req.Image,
		Link:   req.Link,
	}

	db := database.GetDB()
	if err := db.Create(&qr).Error; err != nil {
		log.Error("Failed to save QR code",
			zap.Uint("user_id", req.UserID),
			zap.String("qr_name", req.QRName),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to save QR code"})
	}

	registerTableForQR(db, log, req.UserID, req.QRName)

	return c.JSON(http.StatusCreated, echo.Map{"message": "QR code saved successfully!"})
}

// registerTableForQR upserts the Table record for a QR name under the
// owner's restaurant. Best effort: a missing restaurant just means the owner
// has not saved settings yet.
func registerTableForQR(db *gorm.DB, log *zap.Logger, userID uint, qrName string) {
	var restaurant model.Restaurant
	if err := db.Where("owner_user_id = ?", userID).First(&restaurant).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn("Restaurant lookup failed while registering table",
				zap.Uint("user_id", userID), zap.Error(err))
		}
		return
	}

	var table model.Table
	err := db.Where("restaurant_id = ? AND name = ?", restaurant.ID, qrName).First(&table).Error
	if err == nil {
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Warn("Table lookup failed", zap.String("qr_name", qrName), zap.Error(err))
		return
	}

	table = model.Table{
		Name:         qrName,
		HotelName:    restaurant.Name,
		RestaurantID: restaurant.ID,
	}
	if err := db.Create(&table).Error; err != nil {
		log.Warn("Failed to register table for QR",
			zap.String("qr_name", qrName),
			zap.Error(err))
	}
}

// GetQRCode handles GET /api/qrcode/:userId
func GetQRCode(c echo.Context) error {
	log := logger.FromContext(c)
	userID := c.Param("userId")

	var qr model.QRCode
	err := database.GetDB().Where("user_id = ?", userID).Order("created_at DESC").First(&qr).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "QR code not found"})
		}
		log.Error("Failed to fetch QR code", zap.String("user_id", userID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to fetch QR code"})
	}
	return c.JSON(http.StatusOK, qr)
}

// SaveDownload handles POST /api/downloads
func SaveDownload(c echo.Context) error {
	log := logger.FromContext(c)

	var req struct {
		UserID uint   `json:"userId"`
		QRName string `json:"qrName"`
		Image  string `json:"image"`
		Link   string `json:"link"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse download request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request"})
	}
	if req.UserID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "User ID is required"})
	}

	download := model.QRCode{
		UserID:       req.UserID,
		QRName:       req.QRName,
		Image:        req.Image,
		Link:         req.Link,
		DownloadedAt: time.Now(),
	}
	if err := database.GetDB().Create(&download).Error; err != nil {
		log.Error("Failed to save download", zap.Uint("user_id", req.UserID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to save download"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Download saved"})
}

// ListDownloads handles GET /api/downloads?userId=
func ListDownloads(c echo.Context) error {
	log := logger.FromContext(c)
	userID := c.QueryParam("userId")

	var downloads []model.QRCode
	err := database.GetDB().
		Where("user_id = ?", userID).
		Order("downloaded_at DESC").
		Find(&downloads).Error
	if err != nil {
		log.Error("Failed to list downloads", zap.String("user_id", userID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to fetch downloads"})
	}
	return c.JSON(http.StatusOK, echo.Map{"downloads": downloads})
}
