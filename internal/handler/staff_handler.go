package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"smartserve/internal/model"
	"smartserve/internal/realtime"
	"smartserve/pkg/database"
	"smartserve/pkg/logger"
	"smartserve/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// errNoStaffAssigned is returned by resolveStaffForTable when no staff
// member serves the table (or the restaurant is unknown)
var errNoStaffAssigned = errors.New("no staff assigned to table")

// resolveStaffForTable finds the staff member serving a table within a
// restaurant. The unique (restaurant, table) index on assignments guarantees
// at most one row; ordering by staff id keeps the pick deterministic even if
// the index is ever bypassed.
func resolveStaffForTable(db *gorm.DB, restaurantName, tableName string) (*model.Staff, error) {
	restaurant, err := getRestaurantByName(db, restaurantName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNoStaffAssigned
		}
		return nil, err
	}

	var assignment model.TableAssignment
	err = db.Where("restaurant_id = ? AND table_name = ?", restaurant.ID, tableName).
		Order("staff_id ASC").
		First(&assignment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNoStaffAssigned
		}
		return nil, err
	}

	var staff model.Staff
	if err := db.First(&staff, assignment.StaffID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNoStaffAssigned
		}
		return nil, err
	}
	return &staff, nil
}

// loadAssignedTables fills the derived AssignedTables list for staff rows
func loadAssignedTables(db *gorm.DB, staff []model.Staff) error {
	for i := range staff {
		tables := []string{}
		err := db.Model(&model.TableAssignment{}).
			Where("staff_id = ?", staff[i].ID).
			Order("table_name ASC").
			Pluck("table_name", &tables).Error
		if err != nil {
			return err
		}
		staff[i].AssignedTables = tables
	}
	return nil
}

// ListStaff handles GET /api/staff?hotel=
func ListStaff(c echo.Context) error {
	log := logger.FromContext(c)
	hotel := c.QueryParam("hotel")

	db := database.GetDB()
	var staff []model.Staff
	if err := db.Where("hotel_name = ?", hotel).Order("id ASC").Find(&staff).Error; err != nil {
		log.Error("Failed to list staff", zap.String("hotel", hotel), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve staff"})
	}
	if err := loadAssignedTables(db, staff); err != nil {
		log.Error("Failed to load table assignments", zap.String("hotel", hotel), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve staff"})
	}
	return c.JSON(http.StatusOK, staff)
}

// ListTables handles GET /api/tables?hotel=
func ListTables(c echo.Context) error {
	log := logger.FromContext(c)
	hotel := c.QueryParam("hotel")

	var tables []model.Table
	if err := database.GetDB().Where("hotel_name = ?", hotel).Order("name ASC").Find(&tables).Error; err != nil {
		log.Error("Failed to list tables", zap.String("hotel", hotel), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve tables"})
	}
	return c.JSON(http.StatusOK, tables)
}

// AssignTables handles POST /api/staff/assign. The assignment is a full
// replace of the target staff's table set; any of the requested tables held
// by other staff in the same restaurant move to the target atomically.
func AssignTables(c echo.Context) error {
	log := logger.FromContext(c)

	var req struct {
		StaffID uint     `json:"staffId"`
		Tables  []string `json:"tables"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse assignment request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Invalid request"})
	}

	db := database.GetDB()

	// Validate the target exists before touching anyone's assignments
	var staff model.Staff
	if err := db.First(&staff, req.StaffID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn("Assignment target not found", zap.Uint("staff_id", req.StaffID))
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "Staff not found"})
		}
		log.Error("Failed to load staff", zap.Uint("staff_id", req.StaffID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Assignment failed"})
	}

	defer prometheus.TrackDBOperation("transaction")(time.Now())
	err := db.Transaction(func(tx *gorm.DB) error {
		// Release the target's current set
		if err := tx.Where("staff_id = ?", staff.ID).
			Delete(&model.TableAssignment{}).Error; err != nil {
			return err
		}
		if len(req.Tables) == 0 {
			return nil
		}
		// Take the requested tables away from any other staff in this restaurant
		if err := tx.Where("restaurant_id = ? AND table_name IN ?", staff.RestaurantID, req.Tables).
			Delete(&model.TableAssignment{}).Error; err != nil {
			return err
		}
		assignments := make([]model.TableAssignment, 0, len(req.Tables))
		for _, name := range req.Tables {
			assignments = append(assignments, model.TableAssignment{
				RestaurantID: staff.RestaurantID,
				TableName:    name,
				StaffID:      staff.ID,
			})
		}
		return tx.Create(&assignments).Error
	})
	if err != nil {
		log.Error("Assignment transaction failed",
			zap.Uint("staff_id", staff.ID),
			zap.Strings("tables", req.Tables),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Assignment failed"})
	}

	log.Info("Staff assigned to tables",
		zap.Uint("staff_id", staff.ID),
		zap.String("staff_name", staff.Name),
		zap.Strings("tables", req.Tables))

	// Tell the staff member about their new tables. Best effort: the
	// assignment itself already succeeded.
	if len(req.Tables) > 0 {
		notification := model.Notification{
			UserID:  staff.UserID,
			Message: fmt.Sprintf("You are now serving tables %s at %s", strings.Join(req.Tables, ", "), staff.HotelName),
			Type:    model.NotificationTypeAssignment,
			Payload: model.MarshalPayload(model.AssignmentPayload{Tables: req.Tables}),
			IsRead:  false,
			Time:    time.Now(),
		}
		if err := db.Create(&notification).Error; err != nil {
			log.Warn("Failed to save assignment notification",
				zap.Uint("user_id", staff.UserID),
				zap.Error(err))
		} else {
			prometheus.RecordNotificationOperation("created")
			emitToUser(staff.UserID, realtime.Event{
				Event:   "receiveNotification",
				Message: notification.Message,
				Payload: model.AssignmentPayload{Tables: req.Tables},
			})
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Staff updated successfully"})
}
