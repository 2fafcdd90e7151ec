package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"smartserve/internal/model"
	"smartserve/pkg/database"
	"smartserve/pkg/logger"
	"smartserve/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ListMenu handles GET /api/menu/:userId
func ListMenu(c echo.Context) error {
	log := logger.FromContext(c)
	userID := c.Param("userId")

	var items []model.MenuItem
	if err := database.GetDB().Where("user_id = ?", userID).Order("id ASC").Find(&items).Error; err != nil {
		log.Error("Failed to list menu items", zap.String("user_id", userID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error fetching items"})
	}
	return c.JSON(http.StatusOK, items)
}

// CreateMenuItem handles POST /api/menu
func CreateMenuItem(c echo.Context) error {
	log := logger.FromContext(c)

	var req struct {
		Name   string  `json:"name"`
		Price  float64 `json:"price"`
		Image  string  `json:"image"`
		UserID uint    `json:"userId"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse menu item request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request"})
	}
	if req.UserID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "User ID is required"})
	}

	item := model.MenuItem{
		Name:   req.Name,
		Price:  req.Price,
		Image:  req.Image,
		UserID: req.UserID,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := database.GetDB().Create(&item).Error; err != nil {
		log.Error("Failed to save menu item",
			zap.Uint("user_id", req.UserID),
			zap.String("name", req.Name),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error saving item"})
	}

	log.Info("Menu item created",
		zap.Uint("item_id", item.ID),
		zap.Uint("user_id", item.UserID),
		zap.String("name", item.Name))
	return c.JSON(http.StatusCreated, item)
}

// DeleteMenuItem handles DELETE /api/menu/:id
func DeleteMenuItem(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	result := database.GetDB().Delete(&model.MenuItem{}, "id = ?", id)
	if result.Error != nil {
		log.Error("Failed to delete menu item", zap.String("item_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Error deleting menu item"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Menu item not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Menu item deleted successfully"})
}

// ReplaceMenu handles PUT /api/menu/:userId: the posted list becomes the
// user's whole menu.
func ReplaceMenu(c echo.Context) error {
	log := logger.FromContext(c)
	userIDParam := c.Param("userId")
	userID, err := strconv.ParseUint(userIDParam, 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid user ID"})
	}

	var req struct {
		MenuItems []model.MenuItem `json:"menuItems"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse menu update request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request"})
	}

	items := make([]model.MenuItem, 0, len(req.MenuItems))
	for _, item := range req.MenuItems {
		items = append(items, model.MenuItem{
			Name:   item.Name,
			Price:  item.Price,
			Image:  item.Image,
			UserID: uint(userID),
		})
	}

	defer prometheus.TrackDBOperation("transaction")(time.Now())
	err = database.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&model.MenuItem{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
	if err != nil {
		log.Error("Failed to replace menu", zap.Uint64("user_id", userID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update menu"})
	}

	log.Info("Menu replaced", zap.Uint64("user_id", userID), zap.Int("items", len(items)))
	return c.JSON(http.StatusOK, echo.Map{"success": true, "items": items})
}

// ValidateQRMenu handles GET /api/validateQrMenu?menuID=&qrName=. A QR name
// that does not belong to the menu owner is a user-facing validation
// failure; the response never echoes internal identifiers.
func ValidateQRMenu(c echo.Context) error {
	log := logger.FromContext(c)
	menuID := c.QueryParam("menuID")
	qrName := c.QueryParam("qrName")

	if menuID == "" || qrName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"valid": false, "message": "Missing menuID or qrName"})
	}

	var qr model.QRCode
	err := database.GetDB().Where("user_id = ? AND qr_name = ?", menuID, qrName).First(&qr).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"valid": false, "message": "QR does not match menu"})
		}
		log.Error("QR validation query failed",
			zap.String("menu_id", menuID),
			zap.String("qr_name", qrName),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"valid": false, "message": "Server error"})
	}

	return c.JSON(http.StatusOK, echo.Map{"valid": true})
}
