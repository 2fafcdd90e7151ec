package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"smartserve/internal/middleware"
	"smartserve/internal/model"
	"smartserve/internal/realtime"
	"smartserve/pkg/database"
	"smartserve/pkg/logger"
	"smartserve/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// notifyStaffForOrder resolves the staff member serving a table, persists an
// order notification for their user and pushes it to their room. Persistence
// always precedes emission; a missed push is recovered by the next fetch of
// the durable list.
func notifyStaffForOrder(log *zap.Logger, restaurant, qrName string) (*model.Notification, error) {
	db := database.GetDB()

	staff, err := resolveStaffForTable(db, restaurant, qrName)
	if err != nil {
		return nil, err
	}

	payload := model.OrderPayload{QRName: qrName, Restaurant: restaurant}
	notification := model.Notification{
		UserID:  staff.UserID,
		Message: fmt.Sprintf("New order from table %q at %s", qrName, restaurant),
		Type:    model.NotificationTypeOrder,
		Payload: model.MarshalPayload(payload),
		IsRead:  false,
		Time:    time.Now(),
	}
	if err := db.Create(&notification).Error; err != nil {
		return nil, err
	}
	prometheus.RecordNotificationOperation("created")

	emitToUser(staff.UserID, realtime.Event{
		Event:   "receiveNotification",
		Message: notification.Message,
		Payload: payload,
	})

	log.Info("Staff notified for order",
		zap.Uint("staff_id", staff.ID),
		zap.Uint("user_id", staff.UserID),
		zap.String("qr_name", qrName),
		zap.String("restaurant", restaurant))
	return &notification, nil
}

// SendToStaff handles POST /api/notifications/send-to-staff. A table with no
// assigned staff is a 404; the order itself stays valid either way.
func SendToStaff(c echo.Context) error {
	log := logger.FromContext(c)

	var req struct {
		QRName     string `json:"qrName"`
		Restaurant string `json:"restaurant"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse send-to-staff request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request"})
	}
	if req.QRName == "" || req.Restaurant == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "qrName and restaurant are required"})
	}

	notification, err := notifyStaffForOrder(log, req.Restaurant, req.QRName)
	if err != nil {
		if errors.Is(err, errNoStaffAssigned) {
			log.Warn("No staff assigned for table",
				zap.String("qr_name", req.QRName),
				zap.String("restaurant", req.Restaurant))
			return c.JSON(http.StatusNotFound, echo.Map{"message": "No staff assigned to this table."})
		}
		log.Error("Failed to notify staff", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Server error while sending notification."})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Notification sent to staff.", "notification": notification})
}

// CreateNotification handles POST /api/notifications
func CreateNotification(c echo.Context) error {
	log := logger.FromContext(c)

	var req struct {
		UserID  uint   `json:"userId"`
		Message string `json:"message"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse notification request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request"})
	}
	if req.UserID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "User ID is required"})
	}

	notification := model.Notification{
		UserID:  req.UserID,
		Message: req.Message,
		IsRead:  false,
		Time:    time.Now(),
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := database.GetDB().Create(&notification).Error; err != nil {
		log.Error("Failed to save notification", zap.Uint("user_id", req.UserID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to save notification"})
	}
	prometheus.RecordNotificationOperation("created")

	return c.JSON(http.StatusCreated, notification)
}

// ListNotifications handles GET /api/notifications/:userId, newest first.
// An authenticated caller may only read their own list.
func ListNotifications(c echo.Context) error {
	log := logger.FromContext(c)
	userID := c.Param("userId")

	if callerID, ok := middleware.GetUserIDFromContext(c); ok {
		if strconv.FormatUint(uint64(callerID), 10) != userID {
			log.Warn("Notification list requested for another user",
				zap.Uint("caller_id", callerID),
				zap.String("user_id", userID))
			return c.JSON(http.StatusForbidden, echo.Map{"error": "Cannot read another user's notifications"})
		}
	}

	var notifications []model.Notification
	err := database.GetDB().
		Where("user_id = ?", userID).
		Order("time DESC").
		Find(&notifications).Error
	if err != nil {
		log.Error("Failed to list notifications", zap.String("user_id", userID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to fetch notifications"})
	}
	return c.JSON(http.StatusOK, notifications)
}

// MarkAllRead handles PUT /api/notifications/mark-as-read/:userId. Running
// it twice leaves the same state as running it once.
func MarkAllRead(c echo.Context) error {
	log := logger.FromContext(c)
	userID := c.Param("userId")

	defer prometheus.TrackDBOperation("update")(time.Now())
	err := database.GetDB().
		Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
	if err != nil {
		log.Error("Failed to mark notifications as read", zap.String("user_id", userID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update notifications"})
	}
	prometheus.RecordNotificationOperation("mark_all_read")

	return c.JSON(http.StatusOK, echo.Map{"message": "Notifications marked as read"})
}

// MarkOneRead handles PUT /api/notifications/mark-one-as-read/:id
func MarkOneRead(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	db := database.GetDB()
	var notification model.Notification
	if err := db.First(&notification, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Notification not found"})
		}
		log.Error("Failed to load notification", zap.String("notification_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}

	if err := db.Model(&notification).Update("is_read", true).Error; err != nil {
		log.Error("Failed to mark notification as read", zap.String("notification_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}
	prometheus.RecordNotificationOperation("mark_one_read")

	return c.JSON(http.StatusOK, echo.Map{"message": "Notification marked as read", "notification": notification})
}

// DeleteNotification handles DELETE /api/notifications/:id
func DeleteNotification(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	result := database.GetDB().Delete(&model.Notification{}, "id = ?", id)
	if result.Error != nil {
		log.Error("Failed to delete notification", zap.String("notification_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Error deleting notification"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Notification not found"})
	}
	prometheus.RecordNotificationOperation("deleted")

	return c.JSON(http.StatusOK, echo.Map{"message": "Notification deleted successfully"})
}
