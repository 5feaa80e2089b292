package services

import (
	"strings"

	"rageroom-backend/models"
	"rageroom-backend/utils"
)

// AdmissionRule decides whether a booking may be added to a day.
type AdmissionRule struct {
	Slots           []string
	DailyCapacity   int
	AutoApproveFree bool
}

// Check returns nil when slot may be booked on a day that already holds existing.
// The capacity ceiling is checked before the slot so a full day always reports capacity.
func (r AdmissionRule) Check(existing []models.Booking, slot string) error {
	if len(existing) >= r.DailyCapacity {
		return capacityError(r.DailyCapacity)
	}
	for _, b := range existing {
		if b.TimeSlot == slot {
			return slotTakenError(utils.SlotLabel(slot))
		}
	}
	return nil
}

func (r AdmissionRule) ValidSlot(slot string) bool {
	for _, s := range r.Slots {
		if s == slot {
			return true
		}
	}
	return false
}

// PaymentType normalises a requested payment type; anything unknown is a free session.
func (r AdmissionRule) PaymentType(raw string) models.PaymentType {
	if models.PaymentType(strings.ToLower(strings.TrimSpace(raw))) == models.PaymentPaid {
		return models.PaymentPaid
	}
	return models.PaymentFree
}

// InitialStatus is approved for free sessions when auto approval is on, pending otherwise.
func (r AdmissionRule) InitialStatus(p models.PaymentType) models.BookingStatus {
	if r.AutoApproveFree && p == models.PaymentFree {
		return models.StatusApproved
	}
	return models.StatusPending
}
