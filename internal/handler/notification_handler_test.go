package handler

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"smartserve/internal/model"
)

func TestSendToStaffUnassignedTable(t *testing.T) {
	db := setupTestDB(t)
	seedRestaurant(t, db, "Cafe Anna", 1, "Priya", 7, "T1")

	c, rec := newTestContext(t, http.MethodPost, "/api/notifications/send-to-staff", map[string]string{
		"qrName":     "T9",
		"restaurant": "Cafe Anna",
	})
	if err := SendToStaff(c); err != nil {
		t.Fatalf("SendToStaff: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "No staff assigned to this table.") {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestSendToStaffMissingFields(t *testing.T) {
	setupTestDB(t)

	c, rec := newTestContext(t, http.MethodPost, "/api/notifications/send-to-staff", map[string]string{
		"qrName": "T1",
	})
	if err := SendToStaff(c); err != nil {
		t.Fatalf("SendToStaff: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSendToStaffPersistsThenPushes(t *testing.T) {
	db := setupTestDB(t)
	_, staff := seedRestaurant(t, db, "Cafe Anna", 1, "Priya", 7, "T1")

	h := useTestHub(t)
	client := joinRoom(t, h, "7")

	c, rec := newTestContext(t, http.MethodPost, "/api/notifications/send-to-staff", map[string]string{
		"qrName":     "T1",
		"restaurant": "Cafe Anna",
	})
	if err := SendToStaff(c); err != nil {
		t.Fatalf("SendToStaff: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var notification model.Notification
	if err := db.Where("user_id = ?", staff.UserID).First(&notification).Error; err != nil {
		t.Fatalf("notification not persisted: %v", err)
	}
	if notification.IsRead {
		t.Fatal("new notification must be unread")
	}

	select {
	case msg := <-client.Send:
		if !strings.Contains(string(msg), `"event":"receiveNotification"`) {
			t.Fatalf("unexpected push: %s", msg)
		}
	default:
		t.Fatal("expected a pushed notification")
	}
}

func TestCreateNotification(t *testing.T) {
	db := setupTestDB(t)

	c, rec := newTestContext(t, http.MethodPost, "/api/notifications", map[string]interface{}{
		"message": "hello",
	})
	if err := CreateNotification(c); err != nil {
		t.Fatalf("CreateNotification: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status without userId = %d, want 400", rec.Code)
	}

	c, rec = newTestContext(t, http.MethodPost, "/api/notifications", map[string]interface{}{
		"userId":  7,
		"message": "Your shift starts at 9",
	})
	if err := CreateNotification(c); err != nil {
		t.Fatalf("CreateNotification: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}

	var stored model.Notification
	if err := db.Where("user_id = ?", 7).First(&stored).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if stored.Message != "Your shift starts at 9" || stored.IsRead {
		t.Fatalf("stored = %+v", stored)
	}
}

func TestListNotificationsNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		n := model.Notification{UserID: 7, Message: fmt.Sprintf("n%d", i), Time: base.Add(time.Duration(i) * time.Minute)}
		if err := db.Create(&n).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	other := model.Notification{UserID: 8, Message: "not yours", Time: time.Now()}
	if err := db.Create(&other).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	c, rec := newTestContext(t, http.MethodGet, "/", nil)
	c.SetParamNames("userId")
	c.SetParamValues("7")
	if err := ListNotifications(c); err != nil {
		t.Fatalf("ListNotifications: %v", err)
	}

	var notifications []model.Notification
	decodeBody(t, rec, &notifications)
	if len(notifications) != 3 {
		t.Fatalf("notifications = %d, want 3", len(notifications))
	}
	if notifications[0].Message != "n2" || notifications[2].Message != "n0" {
		t.Fatalf("not newest first: %+v", notifications)
	}
}

func TestListNotificationsOwnerOnly(t *testing.T) {
	db := setupTestDB(t)
	n := model.Notification{UserID: 7, Message: "m", Time: time.Now()}
	if err := db.Create(&n).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	c, rec := newTestContext(t, http.MethodGet, "/", nil)
	c.SetParamNames("userId")
	c.SetParamValues("7")
	c.Set("user_id", uint(8)) // authenticated as someone else
	if err := ListNotifications(c); err != nil {
		t.Fatalf("ListNotifications: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}

	c, rec = newTestContext(t, http.MethodGet, "/", nil)
	c.SetParamNames("userId")
	c.SetParamValues("7")
	c.Set("user_id", uint(7))
	if err := ListNotifications(c); err != nil {
		t.Fatalf("ListNotifications: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestMarkAllReadIdempotent(t *testing.T) {
	db := setupTestDB(t)
	for i := 0; i < 2; i++ {
		n := model.Notification{UserID: 7, Message: "m", Time: time.Now()}
		if err := db.Create(&n).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	markAll := func() int {
		c, rec := newTestContext(t, http.MethodPut, "/", nil)
		c.SetParamNames("userId")
		c.SetParamValues("7")
		if err := MarkAllRead(c); err != nil {
			t.Fatalf("MarkAllRead: %v", err)
		}
		return rec.Code
	}

	unread := func() int64 {
		var count int64
		db.Model(&model.Notification{}).Where("user_id = ? AND is_read = ?", 7, false).Count(&count)
		return count
	}

	if code := markAll(); code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if got := unread(); got != 0 {
		t.Fatalf("unread = %d after mark, want 0", got)
	}

	if code := markAll(); code != http.StatusOK {
		t.Fatalf("second run status = %d, want 200", code)
	}
	if got := unread(); got != 0 {
		t.Fatalf("unread = %d after second run, want 0", got)
	}
}

func TestMarkOneRead(t *testing.T) {
	db := setupTestDB(t)
	n := model.Notification{UserID: 7, Message: "m", Time: time.Now()}
	if err := db.Create(&n).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	c, rec := newTestContext(t, http.MethodPut, "/", nil)
	c.SetParamNames("id")
	c.SetParamValues("424242")
	if err := MarkOneRead(c); err != nil {
		t.Fatalf("MarkOneRead: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}

	c, rec = newTestContext(t, http.MethodPut, "/", nil)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(n.ID))
	if err := MarkOneRead(c); err != nil {
		t.Fatalf("MarkOneRead: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var stored model.Notification
	if err := db.First(&stored, n.ID).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if !stored.IsRead {
		t.Fatal("notification still unread")
	}
}

func TestDeleteNotification(t *testing.T) {
	db := setupTestDB(t)
	n := model.Notification{UserID: 7, Message: "m", Time: time.Now()}
	if err := db.Create(&n).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	c, rec := newTestContext(t, http.MethodDelete, "/", nil)
	c.SetParamNames("id")
	c.SetParamValues("424242")
	if err := DeleteNotification(c); err != nil {
		t.Fatalf("DeleteNotification: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}

	c, rec = newTestContext(t, http.MethodDelete, "/", nil)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(n.ID))
	if err := DeleteNotification(c); err != nil {
		t.Fatalf("DeleteNotification: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var count int64
	db.Model(&model.Notification{}).Count(&count)
	if count != 0 {
		t.Fatalf("notifications = %d after delete, want 0", count)
	}
}
