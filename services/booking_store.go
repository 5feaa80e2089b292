package services

import (
	"context"
	"errors"
	"fmt"

	"rageroom-backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BookingFilter narrows List. Empty fields do not filter.
type BookingFilter struct {
	From string // inclusive YYYY-MM-DD
	To   string // inclusive YYYY-MM-DD
}

// BookingStore is the persistence boundary of the booking service.
type BookingStore interface {
	List(ctx context.Context, f BookingFilter) ([]models.Booking, error)
	ListByDate(ctx context.Context, date string) ([]models.Booking, error)
	Get(ctx context.Context, id string) (*models.Booking, error)
	// Admit loads the bookings already held on b.BookingDate, passes them to check and
	// inserts b only if check returns nil. Concurrent Admit calls for the same date are
	// serialized, so check always sees every booking committed before it.
	Admit(ctx context.Context, b *models.Booking, check func(existing []models.Booking) error) error
	UpdateStatus(ctx context.Context, id string, change models.StatusChange) (*models.Booking, error)
	// Delete removes the booking; a non-empty ownerID restricts it to that owner's booking.
	Delete(ctx context.Context, id, ownerID string) (bool, error)
}

// GormBookingStore is the BookingStore over the service database.
type GormBookingStore struct {
	DB *gorm.DB
}

func NewGormBookingStore(db *gorm.DB) *GormBookingStore {
	return &GormBookingStore{DB: db}
}

// forUpdate adds a row lock on dialects that have one. SQLite serializes writers anyway.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func (s *GormBookingStore) List(ctx context.Context, f BookingFilter) ([]models.Booking, error) {
	q := s.DB.WithContext(ctx).Order("booking_date ASC").Order("time_slot ASC")
	if f.From != "" {
		q = q.Where("booking_date >= ?", f.From)
	}
	if f.To != "" {
		q = q.Where("booking_date <= ?", f.To)
	}

	list := []models.Booking{}
	if err := q.Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return list, nil
}

func (s *GormBookingStore) ListByDate(ctx context.Context, date string) ([]models.Booking, error) {
	list := []models.Booking{}
	if err := s.DB.WithContext(ctx).
		Where("booking_date = ?", date).
		Order("time_slot ASC").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list bookings for %s: %w", date, err)
	}
	return list, nil
}

func (s *GormBookingStore) Get(ctx context.Context, id string) (*models.Booking, error) {
	var b models.Booking
	if err := s.DB.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to load booking: %w", err)
	}
	return &b, nil
}

func (s *GormBookingStore) Admit(ctx context.Context, b *models.Booking, check func(existing []models.Booking) error) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Every admission for a date goes through this row's lock.
		day := models.BookingDay{Date: b.BookingDate}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&day).Error; err != nil {
			return fmt.Errorf("failed to prepare booking day: %w", err)
		}
		if err := forUpdate(tx).Where("date = ?", b.BookingDate).First(&day).Error; err != nil {
			return fmt.Errorf("failed to lock booking day: %w", err)
		}

		var existing []models.Booking
		if err := forUpdate(tx).
			Select("id", "time_slot").
			Where("booking_date = ?", b.BookingDate).
			Find(&existing).Error; err != nil {
			return fmt.Errorf("failed to load bookings for %s: %w", b.BookingDate, err)
		}

		if err := check(existing); err != nil {
			return err
		}

		if err := tx.Create(b).Error; err != nil {
			if isDuplicateKeyError(err) {
				return ErrSlotTaken
			}
			return fmt.Errorf("failed to create booking: %w", err)
		}
		return nil
	})
}

func (s *GormBookingStore) UpdateStatus(ctx context.Context, id string, change models.StatusChange) (*models.Booking, error) {
	var b models.Booking
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&b, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return err
		}

		history := append(b.StatusHistory, change)
		if err := tx.Model(&b).Updates(map[string]any{
			"status":         change.Status,
			"status_history": history,
		}).Error; err != nil {
			return err
		}
		b.Status = change.Status
		b.StatusHistory = history
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}
	return &b, nil
}

func (s *GormBookingStore) Delete(ctx context.Context, id, ownerID string) (bool, error) {
	q := s.DB.WithContext(ctx).Where("id = ?", id)
	if ownerID != "" {
		q = q.Where("user_id = ?", ownerID)
	}
	res := q.Delete(&models.Booking{})
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete booking: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}
