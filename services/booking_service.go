package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"rageroom-backend/metrics"
	"rageroom-backend/models"
	"rageroom-backend/utils"
)

type CreateBookingInput struct {
	BookingDate   string
	TimeSlot      string
	CustomerName  string
	CustomerPhone string
	Notes         string
	PaymentType   string
}

// ListQuery mirrors the query string of GET /api/bookings.
type ListQuery struct {
	All   bool
	Month string
	Year  string
}

type SlotAvailability struct {
	Slot      string `json:"slot"`
	Label     string `json:"label"`
	Available bool   `json:"available"`
}

type DayAvailability struct {
	Date      string             `json:"date"`
	Capacity  int                `json:"capacity"`
	Booked    int                `json:"booked"`
	Remaining int                `json:"remaining"`
	Slots     []SlotAvailability `json:"slots"`
}

// BookingService applies the booking rules on top of a BookingStore.
type BookingService struct {
	Store       BookingStore
	Rule        AdmissionRule
	OwnerDelete bool
	Events      *EventHub // optional
	Logger      *slog.Logger
	now         func() time.Time
}

func NewBookingService(store BookingStore, rule AdmissionRule, ownerDelete bool, events *EventHub, logger *slog.Logger) *BookingService {
	return &BookingService{
		Store:       store,
		Rule:        rule,
		OwnerDelete: ownerDelete,
		Events:      events,
		Logger:      logger,
		now:         time.Now,
	}
}

func (s *BookingService) publish(kind string, id string, b *models.Booking) {
	if s.Events == nil {
		return
	}
	s.Events.Publish(BookingEvent{Type: kind, BookingID: id, Booking: b, At: s.now().UTC()})
}

// Slots lists the bookable slots in catalogue order.
func (s *BookingService) Slots() []SlotAvailability {
	out := make([]SlotAvailability, 0, len(s.Rule.Slots))
	for _, slot := range s.Rule.Slots {
		out = append(out, SlotAvailability{Slot: slot, Label: utils.SlotLabel(slot), Available: true})
	}
	return out
}

// List returns bookings ordered by date then slot. Non-admins see other customers'
// bookings without their contact fields.
func (s *BookingService) List(ctx context.Context, actor Actor, q ListQuery) ([]models.Booking, error) {
	var f BookingFilter
	if q.All {
		if !actor.IsAdmin {
			return nil, ErrForbidden
		}
	} else if q.Month != "" && q.Year != "" {
		from, to, err := utils.MonthRange(q.Month, q.Year)
		if err != nil {
			return nil, ErrInvalidPeriod
		}
		f = BookingFilter{From: from, To: to}
	}

	list, err := s.Store.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin {
		for i := range list {
			if list[i].UserID != actor.UserID {
				redact(&list[i])
			}
		}
	}
	return list, nil
}

func redact(b *models.Booking) {
	b.CustomerName = ""
	b.CustomerPhone = nil
	b.Notes = nil
	b.StatusHistory = nil
}

// Availability reports which slots of date can still be booked.
func (s *BookingService) Availability(ctx context.Context, date string) (*DayAvailability, error) {
	day, err := utils.ParseDate(date)
	if err != nil {
		return nil, ErrInvalidDate
	}
	existing, err := s.Store.ListByDate(ctx, day)
	if err != nil {
		return nil, err
	}

	taken := make(map[string]bool, len(existing))
	for _, b := range existing {
		taken[b.TimeSlot] = true
	}
	full := len(existing) >= s.Rule.DailyCapacity

	out := &DayAvailability{
		Date:      day,
		Capacity:  s.Rule.DailyCapacity,
		Booked:    len(existing),
		Remaining: max(s.Rule.DailyCapacity-len(existing), 0),
		Slots:     make([]SlotAvailability, 0, len(s.Rule.Slots)),
	}
	for _, slot := range s.Rule.Slots {
		out.Slots = append(out.Slots, SlotAvailability{
			Slot:      slot,
			Label:     utils.SlotLabel(slot),
			Available: !full && !taken[slot],
		})
	}
	return out, nil
}

// Create admits a new booking for actor. Rejections are *AppError values:
// ErrMissingFields, ErrInvalidDate, ErrInvalidSlot, ErrCapacityReached or ErrSlotTaken.
func (s *BookingService) Create(ctx context.Context, actor Actor, in CreateBookingInput) (*models.Booking, error) {
	name := strings.TrimSpace(in.CustomerName)
	slot := strings.TrimSpace(in.TimeSlot)
	if strings.TrimSpace(in.BookingDate) == "" || slot == "" || name == "" {
		return nil, ErrMissingFields
	}
	date, err := utils.ParseDate(in.BookingDate)
	if err != nil {
		return nil, ErrInvalidDate
	}
	if !s.Rule.ValidSlot(slot) {
		return nil, ErrInvalidSlot
	}

	payment := s.Rule.PaymentType(in.PaymentType)
	status := s.Rule.InitialStatus(payment)
	b := &models.Booking{
		UserID:        actor.UserID,
		BookingDate:   date,
		TimeSlot:      slot,
		CustomerName:  name,
		CustomerPhone: optional(in.CustomerPhone),
		Notes:         optional(in.Notes),
		PaymentType:   payment,
		Status:        status,
		StatusHistory: []models.StatusChange{{Status: status, By: actor.UserID, At: s.now().UTC()}},
	}

	err = s.Store.Admit(ctx, b, func(existing []models.Booking) error {
		return s.Rule.Check(existing, slot)
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrCapacityReached):
			metrics.IncBookingRejected("capacity")
		case errors.Is(err, ErrSlotTaken):
			metrics.IncBookingRejected("slot_taken")
			err = slotTakenError(utils.SlotLabel(slot))
		}
		return nil, err
	}

	metrics.IncBookingCreated(string(b.Status))
	s.Logger.Info("booking created",
		"booking_id", b.ID, "date", b.BookingDate, "slot", b.TimeSlot,
		"payment_type", b.PaymentType, "status", b.Status, "user_id", actor.UserID)
	s.publish(EventBookingCreated, b.ID, b)
	return b, nil
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

// Get returns a booking its owner or an admin may see.
func (s *BookingService) Get(ctx context.Context, actor Actor, id string) (*models.Booking, error) {
	b, err := s.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin && b.UserID != actor.UserID {
		return nil, ErrForbidden
	}
	return b, nil
}

// UpdateStatus is the admin decision on a booking. Any booking may be re-decided.
func (s *BookingService) UpdateStatus(ctx context.Context, actor Actor, id string, status string) (*models.Booking, error) {
	if !actor.IsAdmin {
		return nil, ErrAdminOnlyStatus
	}
	target := models.BookingStatus(status)
	if target != models.StatusApproved && target != models.StatusRejected {
		return nil, ErrInvalidStatus
	}

	b, err := s.Store.UpdateStatus(ctx, id, models.StatusChange{Status: target, By: actor.UserID, At: s.now().UTC()})
	if err != nil {
		return nil, err
	}

	metrics.IncBookingDecision(status)
	s.Logger.Info("booking status changed", "booking_id", id, "status", status, "admin_id", actor.UserID)
	s.publish(EventBookingStatusChanged, b.ID, b)
	return b, nil
}

// Delete removes a booking. Admins delete any booking; customers only their own, and only
// while owner deletion is enabled.
func (s *BookingService) Delete(ctx context.Context, actor Actor, id string) error {
	owner := ""
	if !actor.IsAdmin {
		if !s.OwnerDelete {
			return ErrForbidden
		}
		owner = actor.UserID
	}

	deleted, err := s.Store.Delete(ctx, id, owner)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrBookingNotFound
	}

	metrics.IncBookingDeleted()
	s.Logger.Info("booking deleted", "booking_id", id, "user_id", actor.UserID, "admin", actor.IsAdmin)
	s.publish(EventBookingDeleted, id, nil)
	return nil
}
