package handler

import (
	"errors"
	"net/http"
	"time"

	"smartserve/internal/model"
	"smartserve/pkg/database"
	"smartserve/pkg/logger"
	"smartserve/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SaveSettings handles POST /api/settings. Settings are upserted wholesale;
// saving also makes sure the owner's restaurant and staff records exist so
// assignment and order routing work without a separate onboarding step.
func SaveSettings(c echo.Context) error {
	log := logger.FromContext(c)

	var req model.Setting
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse settings request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "Invalid request"})
	}
	if req.UserID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "User ID is required"})
	}

	db := database.GetDB()
	defer prometheus.TrackDBOperation("transaction")(time.Now())
	err := db.Transaction(func(tx *gorm.DB) error {
		var existing model.Setting
		err := tx.Where("user_id = ?", req.UserID).First(&existing).Error
		switch {
		case err == nil:
			req.ID = existing.ID
			req.CreatedAt = existing.CreatedAt
			if err := tx.Save(&req).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(&req).Error; err != nil {
				return err
			}
		default:
			return err
		}

		if req.Restaurant == "" {
			return nil
		}

		restaurant, err := findOrCreateRestaurant(tx, req.Restaurant, req.UserID)
		if err != nil {
			return err
		}

		// Add staff if not exists
		var staff model.Staff
		err = tx.Where("restaurant_id = ? AND name = ?", restaurant.ID, req.Name).First(&staff).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			staff = model.Staff{
				Name:         req.Name,
				HotelName:    req.Restaurant,
				RestaurantID: restaurant.ID,
				UserID:       req.UserID,
			}
			if err := tx.Create(&staff).Error; err != nil {
				return err
			}
			log.Info("Staff record created from settings",
				zap.Uint("staff_id", staff.ID),
				zap.Uint("user_id", req.UserID),
				zap.String("restaurant", req.Restaurant))
			return nil
		}
		return err
	})
	if err != nil {
		log.Error("Failed to save settings", zap.Uint("user_id", req.UserID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "Failed to save settings or add staff"})
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// GetSettingsByMenu handles GET /api/settings/by-menu/:menuId
func GetSettingsByMenu(c echo.Context) error {
	log := logger.FromContext(c)
	menuID := c.Param("menuId")

	var setting model.Setting
	err := database.GetDB().Where("menu_id = ?", menuID).First(&setting).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Settings not found for this menu."})
		}
		log.Error("Failed to fetch settings", zap.String("menu_id", menuID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Server error"})
	}
	return c.JSON(http.StatusOK, setting)
}
