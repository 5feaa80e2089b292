package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PaymentType string

const (
	PaymentFree PaymentType = "free"
	PaymentPaid PaymentType = "paid"
)

type BookingStatus string

const (
	StatusPending  BookingStatus = "pending"
	StatusApproved BookingStatus = "approved"
	StatusRejected BookingStatus = "rejected"
)

// StatusChange is one entry of a booking's status history.
type StatusChange struct {
	Status BookingStatus `json:"status"`
	By     string        `json:"by"`
	At     time.Time     `json:"at"`
}

// Booking is a customer's request for one slot on one day.
// booking_date + time_slot is unique; the per-day ceiling is enforced by the admission check.
type Booking struct {
	ID     string `gorm:"primaryKey;size:36" json:"id"`
	UserID string `gorm:"column:user_id;size:36;index;not null" json:"user_id"`

	BookingDate string `gorm:"column:booking_date;size:10;not null;uniqueIndex:idx_bookings_date_slot,priority:1" json:"booking_date"`
	TimeSlot    string `gorm:"column:time_slot;size:32;not null;uniqueIndex:idx_bookings_date_slot,priority:2" json:"time_slot"`

	CustomerName  string  `gorm:"column:customer_name;size:255;not null" json:"customer_name"`
	CustomerPhone *string `gorm:"column:customer_phone;size:50" json:"customer_phone"`
	Notes         *string `gorm:"column:notes;type:text" json:"notes"`

	PaymentType   PaymentType                       `gorm:"column:payment_type;size:16;not null" json:"payment_type"`
	Status        BookingStatus                     `gorm:"column:status;size:16;not null;index" json:"status"`
	StatusHistory datatypes.JSONSlice[StatusChange] `gorm:"column:status_history" json:"status_history,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// BookingDay is the per-date lock row taken before bookings of that date are counted.
type BookingDay struct {
	Date      string    `gorm:"primaryKey;size:10"`
	CreatedAt time.Time
}
