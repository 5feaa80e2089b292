package models

import (
	"encoding/json"
	"time"
)

// RoomInfo is the singleton descriptor shown on the landing page.
type RoomInfo struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Title           string    `gorm:"size:255" json:"title"`
	AboutText       string    `gorm:"column:about_text;type:text" json:"about_text"`
	Description     string    `gorm:"type:text" json:"description"`
	PricePerItem    float64   `gorm:"column:price_per_item" json:"price_per_item"`
	PricePerDay     float64   `gorm:"column:price_per_day" json:"price_per_day"`
	PricePerSession float64   `gorm:"column:price_per_session" json:"price_per_session"`
	ImageURL        *string   `gorm:"column:image_url;size:1024" json:"image_url"`
	UpdatedBy       *string   `gorm:"column:updated_by;size:36" json:"updated_by,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// MarshalJSON reports an unsaved descriptor (the defaults) with "id": null.
func (r RoomInfo) MarshalJSON() ([]byte, error) {
	type plain RoomInfo
	var id *uint
	if r.ID != 0 {
		id = &r.ID
	}
	return json.Marshal(struct {
		ID *uint `json:"id"`
		plain
	}{ID: id, plain: plain(r)})
}
