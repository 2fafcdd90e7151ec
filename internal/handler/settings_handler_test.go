package handler

import (
	"net/http"
	"testing"

	"smartserve/internal/model"
)

func saveSettings(t *testing.T, body map[string]interface{}) (int, string) {
	t.Helper()
	c, rec := newTestContext(t, http.MethodPost, "/api/settings", body)
	if err := SaveSettings(c); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}
	return rec.Code, rec.Body.String()
}

func TestSaveSettingsUpsert(t *testing.T) {
	db := setupTestDB(t)

	if code, _ := saveSettings(t, map[string]interface{}{"name": "Priya"}); code != http.StatusBadRequest {
		t.Fatalf("status without userId = %d, want 400", code)
	}

	if code, body := saveSettings(t, map[string]interface{}{
		"userId":     7,
		"name":       "Priya",
		"restaurant": "Cafe Anna",
		"theme":      "dark",
	}); code != http.StatusOK {
		t.Fatalf("status = %d: %s", code, body)
	}

	var first model.Setting
	if err := db.Where("user_id = ?", 7).First(&first).Error; err != nil {
		t.Fatalf("setting not created: %v", err)
	}

	// Second save replaces the row in place
	if code, body := saveSettings(t, map[string]interface{}{
		"userId":     7,
		"name":       "Priya",
		"restaurant": "Cafe Anna",
		"theme":      "light",
	}); code != http.StatusOK {
		t.Fatalf("status = %d: %s", code, body)
	}

	var count int64
	db.Model(&model.Setting{}).Where("user_id = ?", 7).Count(&count)
	if count != 1 {
		t.Fatalf("settings rows = %d, want 1", count)
	}
	var second model.Setting
	if err := db.Where("user_id = ?", 7).First(&second).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("upsert changed row identity: %d -> %d", first.ID, second.ID)
	}
	if second.Theme != "light" {
		t.Fatalf("theme = %q, want light", second.Theme)
	}
}

func TestSaveSettingsCreatesRestaurantAndStaff(t *testing.T) {
	db := setupTestDB(t)

	if code, body := saveSettings(t, map[string]interface{}{
		"userId":     7,
		"name":       "Priya",
		"restaurant": "Cafe Anna",
	}); code != http.StatusOK {
		t.Fatalf("status = %d: %s", code, body)
	}

	var restaurant model.Restaurant
	if err := db.Where("name = ?", "Cafe Anna").First(&restaurant).Error; err != nil {
		t.Fatalf("restaurant not created: %v", err)
	}
	if restaurant.OwnerUserID != 7 {
		t.Fatalf("owner = %d, want 7", restaurant.OwnerUserID)
	}

	var staff model.Staff
	if err := db.Where("restaurant_id = ? AND name = ?", restaurant.ID, "Priya").First(&staff).Error; err != nil {
		t.Fatalf("staff not created: %v", err)
	}
	if staff.UserID != 7 {
		t.Fatalf("staff user = %d, want 7", staff.UserID)
	}

	// Saving again must not duplicate the staff record
	if code, body := saveSettings(t, map[string]interface{}{
		"userId":     7,
		"name":       "Priya",
		"restaurant": "Cafe Anna",
	}); code != http.StatusOK {
		t.Fatalf("status = %d: %s", code, body)
	}
	var count int64
	db.Model(&model.Staff{}).Where("restaurant_id = ?", restaurant.ID).Count(&count)
	if count != 1 {
		t.Fatalf("staff rows = %d, want 1", count)
	}
}

func TestGetSettingsByMenu(t *testing.T) {
	db := setupTestDB(t)

	c, rec := newTestContext(t, http.MethodGet, "/", nil)
	c.SetParamNames("menuId")
	c.SetParamValues("menu-7")
	if err := GetSettingsByMenu(c); err != nil {
		t.Fatalf("GetSettingsByMenu: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}

	setting := model.Setting{UserID: 7, Name: "Priya", MenuID: "menu-7", UpiID: "priya@upi"}
	if err := db.Create(&setting).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	c, rec = newTestContext(t, http.MethodGet, "/", nil)
	c.SetParamNames("menuId")
	c.SetParamValues("menu-7")
	if err := GetSettingsByMenu(c); err != nil {
		t.Fatalf("GetSettingsByMenu: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got model.Setting
	decodeBody(t, rec, &got)
	if got.UserID != 7 || got.UpiID != "priya@upi" {
		t.Fatalf("got = %+v", got)
	}
}
