package handler

import (
	"errors"
	"math"
	"net/http"
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

// PlaceOrder handles POST /api/orders/place. The order is persisted first;
// staff fan-out runs synchronously afterwards and its failure never rolls
// the order back — staff dashboards polling pending orders are the fallback
// delivery path.
func PlaceOrder(c echo.Context) error {
	log := logger.FromContext(c)

	var req struct {
		Restaurant    string            `json:"restaurant"`
		QRName        string            `json:"qrName"`
		Items         []model.OrderItem `json:"items"`
		Total         float64           `json:"total"`
		PaymentMethod string            `json:"paymentMethod"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse order request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request"})
	}

	if req.Restaurant == "" || req.QRName == "" {
		log.Warn("Order missing restaurant or table",
			zap.String("restaurant", req.Restaurant),
			zap.String("qr_name", req.QRName))
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Restaurant and qrName are required"})
	}
	if len(req.Items) == 0 {
		log.Warn("Order has no items",
			zap.String("restaurant", req.Restaurant),
			zap.String("qr_name", req.QRName))
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Order must contain at least one item"})
	}

	// The client total is advisory only; the server's sum of item prices is
	// what gets stored.
	total := 0.0
	for _, item := range req.Items {
		total += item.Price
	}
	if math.Abs(total-req.Total) > 0.009 {
		log.Warn("Client total disagrees with item prices",
			zap.Float64("client_total", req.Total),
			zap.Float64("computed_total", total))
	}

	db := database.GetDB()
	restaurant, err := findOrCreateRestaurant(db, req.Restaurant, 0)
	if err != nil {
		log.Error("Failed to resolve restaurant", zap.String("restaurant", req.Restaurant), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to place order"})
	}

	order := model.Order{
		Restaurant:    req.Restaurant,
		RestaurantID:  restaurant.ID,
		QRName:        req.QRName,
		Items:         req.Items,
		Total:         total,
		PaymentMethod: req.PaymentMethod,
		Time:          time.Now(),
		Status:        model.OrderStatusPending,
		Read:          false,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := db.Create(&order).Error; err != nil {
		log.Error("Failed to save order",
			zap.String("restaurant", req.Restaurant),
			zap.String("qr_name", req.QRName),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to place order"})
	}
	prometheus.RecordOrderOperation("place")

	log.Info("Order placed",
		zap.Uint("order_id", order.ID),
		zap.String("restaurant", order.Restaurant),
		zap.String("qr_name", order.QRName),
		zap.Float64("total", order.Total))

	// Staff fan-out, part of placement rather than a second client call
	if _, err := notifyStaffForOrder(log, order.Restaurant, order.QRName); err != nil {
		if errors.Is(err, errNoStaffAssigned) {
			log.Warn("No staff assigned for placed order",
				zap.Uint("order_id", order.ID),
				zap.String("qr_name", order.QRName))
		} else {
			log.Error("Staff notification failed for placed order",
				zap.Uint("order_id", order.ID),
				zap.Error(err))
		}
	}

	// Push the new order onto the owner's dashboard as well
	if restaurant.OwnerUserID != 0 {
		emitToUser(restaurant.OwnerUserID, realtime.Event{Event: "newOrder", Payload: order})
	}

	return c.JSON(http.StatusCreated, echo.Map{"message": "Order placed successfully", "order": order})
}

// ListOrdersByStatus handles GET /api/orders/:restaurant/:status
func ListOrdersByStatus(c echo.Context) error {
	log := logger.FromContext(c)
	restaurant := c.Param("restaurant")
	status := c.Param("status")

	var orders []model.Order
	err := database.GetDB().
		Preload("Items").
		Where("restaurant = ? AND status = ?", restaurant, status).
		Order("time DESC").
		Find(&orders).Error
	if err != nil {
		log.Error("Failed to list orders",
			zap.String("restaurant", restaurant),
			zap.String("status", status),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to fetch orders"})
	}
	return c.JSON(http.StatusOK, orders)
}

// LatestPendingOrder handles GET /api/orders/latest?qrName=&restaurant=.
// No pending order is a normal state, reported as 404.
func LatestPendingOrder(c echo.Context) error {
	log := logger.FromContext(c)
	qrName := c.QueryParam("qrName")
	restaurant := c.QueryParam("restaurant")

	var order model.Order
	err := database.GetDB().
		Preload("Items").
		Where("qr_name = ? AND restaurant = ? AND status = ?", qrName, restaurant, model.OrderStatusPending).
		Order("time DESC").
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "No pending order found"})
		}
		log.Error("Failed to fetch latest pending order",
			zap.String("restaurant", restaurant),
			zap.String("qr_name", qrName),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to fetch order"})
	}
	return c.JSON(http.StatusOK, order)
}

// CompleteOrder handles PUT /api/orders/complete/:id. Pending is the only
// state that transitions; completing an already-Completed order returns it
// unchanged so double submissions are harmless.
func CompleteOrder(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	db := database.GetDB()
	var order model.Order
	if err := db.Preload("Items").First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Order not found"})
		}
		log.Error("Failed to load order", zap.String("order_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}

	if order.IsCompleted() {
		return c.JSON(http.StatusOK, order)
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := db.Model(&order).Update("status", model.OrderStatusCompleted).Error; err != nil {
		log.Error("Failed to complete order", zap.String("order_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}
	prometheus.RecordOrderOperation("complete")

	log.Info("Order completed", zap.Uint("order_id", order.ID))
	return c.JSON(http.StatusOK, order)
}
