package handler

import (
	"errors"

	"smartserve/internal/model"

	"gorm.io/gorm"
)

// findOrCreateRestaurant resolves a display name to its stable restaurant
// record, creating one owned by ownerUserID on first sight of the name.
func findOrCreateRestaurant(db *gorm.DB, name string, ownerUserID uint) (*model.Restaurant, error) {
	var restaurant model.Restaurant
	err := db.Where("name = ?", name).First(&restaurant).Error
	if err == nil {
		// A row first seen on the customer order path has no owner yet; the
		// first owner-supplying caller (signup, settings save) adopts it so
		// the owner's push room starts receiving orders.
		if restaurant.OwnerUserID == 0 && ownerUserID != 0 {
			if err := db.Model(&restaurant).Update("owner_user_id", ownerUserID).Error; err != nil {
				return nil, err
			}
			restaurant.OwnerUserID = ownerUserID
		}
		return &restaurant, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	restaurant = model.Restaurant{Name: name, OwnerUserID: ownerUserID}
	if err := db.Create(&restaurant).Error; err != nil {
		return nil, err
	}
	return &restaurant, nil
}

// getRestaurantByName resolves a display name without creating anything
func getRestaurantByName(db *gorm.DB, name string) (*model.Restaurant, error) {
	var restaurant model.Restaurant
	if err := db.Where("name = ?", name).First(&restaurant).Error; err != nil {
		return nil, err
	}
	return &restaurant, nil
}
