package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"rageroom-backend/config"
	"rageroom-backend/models"
)

func TestCreateBookingScenario(t *testing.T) {
	svc := newTestBookingService(t, periods)
	ctx := context.Background()
	const day = "2025-06-10"

	a, err := svc.Create(ctx, ana, CreateBookingInput{BookingDate: day, TimeSlot: "morning", CustomerName: "Ana"})
	if err != nil {
		t.Fatalf("Ana: %v", err)
	}
	if a.Status != models.StatusApproved || a.PaymentType != models.PaymentFree {
		t.Errorf("Ana status=%s payment=%s", a.Status, a.PaymentType)
	}

	b, err := svc.Create(ctx, bruno, CreateBookingInput{BookingDate: day, TimeSlot: "afternoon", CustomerName: "Bruno", PaymentType: "paid"})
	if err != nil {
		t.Fatalf("Bruno: %v", err)
	}
	if b.Status != models.StatusPending {
		t.Errorf("Bruno status = %s, want pending", b.Status)
	}

	_, err = svc.Create(ctx, ana, CreateBookingInput{BookingDate: day, TimeSlot: "morning", CustomerName: "Carla"})
	if !errors.Is(err, ErrCapacityReached) {
		// the day is already full, so capacity wins over the slot conflict
		t.Fatalf("Carla: got %v, want capacity", err)
	}

	_, err = svc.Create(ctx, bruno, CreateBookingInput{BookingDate: day, TimeSlot: "afternoon", CustomerName: "Duda"})
	if !errors.Is(err, ErrCapacityReached) {
		t.Fatalf("Duda: got %v, want capacity", err)
	}
}

func TestCreateBookingSlotConflict(t *testing.T) {
	svc := newTestBookingService(t, periods)
	ctx := context.Background()

	if _, err := svc.Create(ctx, ana, CreateBookingInput{BookingDate: "2025-06-10", TimeSlot: "morning", CustomerName: "Ana"}); err != nil {
		t.Fatalf("Ana: %v", err)
	}
	_, err := svc.Create(ctx, bruno, CreateBookingInput{BookingDate: "2025-06-10", TimeSlot: "morning", CustomerName: "Carla"})
	if !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("got %v, want slot taken", err)
	}
	var appErr *AppError
	if !errors.As(err, &appErr) || appErr.Status != 409 || appErr.Message != `O horario "Manha" ja esta reservado neste dia` {
		t.Fatalf("error = %#v", err)
	}
}

func TestCreateBookingValidation(t *testing.T) {
	svc := newTestBookingService(t, periods)
	ctx := context.Background()

	tests := []struct {
		name string
		in   CreateBookingInput
		want error
	}{
		{"missing name", CreateBookingInput{BookingDate: "2025-06-10", TimeSlot: "morning", CustomerName: "  "}, ErrMissingFields},
		{"missing date", CreateBookingInput{TimeSlot: "morning", CustomerName: "Ana"}, ErrMissingFields},
		{"bad date", CreateBookingInput{BookingDate: "10/06/2025", TimeSlot: "morning", CustomerName: "Ana"}, ErrInvalidDate},
		{"unknown slot", CreateBookingInput{BookingDate: "2025-06-10", TimeSlot: "evening", CustomerName: "Ana"}, ErrInvalidSlot},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Create(ctx, ana, tt.in); !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCreateBookingAlwaysPending(t *testing.T) {
	rule := periods
	rule.AutoApproveFree = false
	svc := newTestBookingService(t, rule)

	b, err := svc.Create(context.Background(), ana, CreateBookingInput{BookingDate: "2025-06-10", TimeSlot: "morning", CustomerName: "Ana", PaymentType: "free"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if b.Status != models.StatusPending {
		t.Fatalf("status = %s, want pending", b.Status)
	}
}

func TestCreateBookingConcurrentRequestsRespectCapacity(t *testing.T) {
	rule := AdmissionRule{Slots: config.DefaultTimeSlots, DailyCapacity: 2, AutoApproveFree: true}
	svc := newTestBookingService(t, rule)
	ctx := context.Background()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		created  int
		rejected int
	)
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			slot := rule.Slots[i%len(rule.Slots)]
			_, err := svc.Create(ctx, ana, CreateBookingInput{BookingDate: "2025-06-11", TimeSlot: slot, CustomerName: "Ana"})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errors.Is(err, ErrCapacityReached), errors.Is(err, ErrSlotTaken):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if created != 2 || rejected != 10 {
		t.Fatalf("created=%d rejected=%d, want 2 and 10", created, rejected)
	}
	list, err := svc.Store.ListByDate(ctx, "2025-06-11")
	if err != nil {
		t.Fatalf("ListByDate: %v", err)
	}
	if len(list) != 2 || list[0].TimeSlot == list[1].TimeSlot {
		t.Fatalf("stored bookings = %+v", list)
	}
}

func TestAdmitUniqueIndexBackstop(t *testing.T) {
	store := NewGormBookingStore(newTestDB(t))
	ctx := context.Background()
	noCheck := func([]models.Booking) error { return nil }

	first := &models.Booking{UserID: "u1", BookingDate: "2025-06-10", TimeSlot: "morning", CustomerName: "Ana",
		PaymentType: models.PaymentFree, Status: models.StatusApproved}
	if err := store.Admit(ctx, first, noCheck); err != nil {
		t.Fatalf("first Admit: %v", err)
	}
	dup := &models.Booking{UserID: "u2", BookingDate: "2025-06-10", TimeSlot: "morning", CustomerName: "Bia",
		PaymentType: models.PaymentFree, Status: models.StatusApproved}
	if err := store.Admit(ctx, dup, noCheck); !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("duplicate Admit: got %v, want slot taken", err)
	}
}

func TestListBookings(t *testing.T) {
	svc := newTestBookingService(t, periods)
	ctx := context.Background()

	mustCreate := func(a Actor, date, slot, name string) {
		t.Helper()
		if _, err := svc.Create(ctx, a, CreateBookingInput{BookingDate: date, TimeSlot: slot, CustomerName: name, CustomerPhone: "47999990000"}); err != nil {
			t.Fatalf("Create %s: %v", name, err)
		}
	}
	mustCreate(bruno, "2025-07-01", "morning", "Bruno")
	mustCreate(ana, "2025-06-30", "afternoon", "Ana")
	mustCreate(ana, "2025-06-30", "morning", "Ana")

	june, err := svc.List(ctx, ana, ListQuery{Month: "6", Year: "2025"})
	if err != nil {
		t.Fatalf("List june: %v", err)
	}
	if len(june) != 2 || june[0].TimeSlot != "afternoon" || june[1].TimeSlot != "morning" {
		t.Fatalf("june = %+v", june)
	}

	all, err := svc.List(ctx, ana, ListQuery{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 || all[2].BookingDate != "2025-07-01" {
		t.Fatalf("all = %+v", all)
	}
	if all[2].CustomerName != "" || all[2].CustomerPhone != nil {
		t.Errorf("other customer's booking not redacted: %+v", all[2])
	}
	if all[0].CustomerName != "Ana" || all[0].CustomerPhone == nil {
		t.Errorf("own booking redacted: %+v", all[0])
	}

	if _, err := svc.List(ctx, ana, ListQuery{All: true}); !errors.Is(err, ErrForbidden) {
		t.Errorf("all=true for customer: got %v, want forbidden", err)
	}
	full, err := svc.List(ctx, admin, ListQuery{All: true})
	if err != nil || len(full) != 3 || full[2].CustomerName != "Bruno" {
		t.Errorf("admin all = %+v, %v", full, err)
	}

	if _, err := svc.List(ctx, ana, ListQuery{Month: "13", Year: "2025"}); !errors.Is(err, ErrInvalidPeriod) {
		t.Errorf("bad month: got %v", err)
	}
}

func TestAvailability(t *testing.T) {
	svc := newTestBookingService(t, periods)
	ctx := context.Background()

	if _, err := svc.Create(ctx, ana, CreateBookingInput{BookingDate: "2025-06-10", TimeSlot: "morning", CustomerName: "Ana"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	day, err := svc.Availability(ctx, "2025-06-10")
	if err != nil {
		t.Fatalf("Availability: %v", err)
	}
	if day.Booked != 1 || day.Remaining != 1 {
		t.Fatalf("day = %+v", day)
	}
	if day.Slots[0].Available || !day.Slots[1].Available || day.Slots[0].Label != "Manha" {
		t.Fatalf("slots = %+v", day.Slots)
	}

	if _, err := svc.Availability(ctx, "amanha"); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("bad date: %v", err)
	}
}

func TestUpdateStatus(t *testing.T) {
	svc := newTestBookingService(t, periods)
	ctx := context.Background()

	b, err := svc.Create(ctx, ana, CreateBookingInput{BookingDate: "2025-06-10", TimeSlot: "morning", CustomerName: "Ana", PaymentType: "paid"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.UpdateStatus(ctx, ana, b.ID, "approved"); !errors.Is(err, ErrAdminOnlyStatus) {
		t.Fatalf("customer: got %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, admin, b.ID, "pending"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("pending target: got %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, admin, "missing", "approved"); !errors.Is(err, ErrBookingNotFound) {
		t.Fatalf("unknown id: got %v", err)
	}

	if _, err := svc.UpdateStatus(ctx, admin, b.ID, "approved"); err != nil {
		t.Fatalf("approve: %v", err)
	}
	got, err := svc.UpdateStatus(ctx, admin, b.ID, "rejected")
	if err != nil {
		t.Fatalf("re-decide: %v", err)
	}
	if got.Status != models.StatusRejected {
		t.Fatalf("status = %s", got.Status)
	}

	stored, err := svc.Get(ctx, ana, b.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	var seen []models.BookingStatus
	for _, h := range stored.StatusHistory {
		seen = append(seen, h.Status)
	}
	if len(seen) != 3 || seen[0] != models.StatusPending || seen[1] != models.StatusApproved || seen[2] != models.StatusRejected {
		t.Fatalf("history = %v", seen)
	}
	if stored.StatusHistory[2].By != admin.UserID {
		t.Errorf("history actor = %q", stored.StatusHistory[2].By)
	}
}

func TestDeleteBooking(t *testing.T) {
	svc := newTestBookingService(t, periods)
	ctx := context.Background()

	a, _ := svc.Create(ctx, ana, CreateBookingInput{BookingDate: "2025-06-10", TimeSlot: "morning", CustomerName: "Ana"})
	b, _ := svc.Create(ctx, bruno, CreateBookingInput{BookingDate: "2025-06-10", TimeSlot: "afternoon", CustomerName: "Bruno"})

	if err := svc.Delete(ctx, bruno, a.ID); !errors.Is(err, ErrBookingNotFound) {
		t.Fatalf("foreign delete: got %v", err)
	}
	if err := svc.Delete(ctx, ana, a.ID); err != nil {
		t.Fatalf("own delete: %v", err)
	}
	if err := svc.Delete(ctx, admin, b.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if err := svc.Delete(ctx, admin, b.ID); !errors.Is(err, ErrBookingNotFound) {
		t.Fatalf("second delete: got %v", err)
	}

	// a freed day accepts bookings again
	if _, err := svc.Create(ctx, ana, CreateBookingInput{BookingDate: "2025-06-10", TimeSlot: "morning", CustomerName: "Ana"}); err != nil {
		t.Fatalf("rebook: %v", err)
	}

	svc.OwnerDelete = false
	c, _ := svc.Create(ctx, bruno, CreateBookingInput{BookingDate: "2025-06-12", TimeSlot: "morning", CustomerName: "Bruno"})
	if err := svc.Delete(ctx, bruno, c.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("owner delete disabled: got %v", err)
	}
}

func TestGetBookingOwnership(t *testing.T) {
	svc := newTestBookingService(t, periods)
	ctx := context.Background()

	b, _ := svc.Create(ctx, ana, CreateBookingInput{BookingDate: "2025-06-10", TimeSlot: "morning", CustomerName: "Ana"})
	if _, err := svc.Get(ctx, bruno, b.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("foreign get: got %v", err)
	}
	if _, err := svc.Get(ctx, admin, b.ID); err != nil {
		t.Fatalf("admin get: %v", err)
	}
}

func TestCreateBookingPublishesEvent(t *testing.T) {
	hub := NewEventHub(discardLogger())
	go hub.Run()
	defer hub.Stop()

	client := NewEventClient(4)
	if !hub.Register(client) {
		t.Fatal("register failed")
	}

	svc := newTestBookingService(t, periods)
	svc.Events = hub
	b, err := svc.Create(context.Background(), ana, CreateBookingInput{BookingDate: "2025-06-10", TimeSlot: "morning", CustomerName: "Ana"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	select {
	case msg := <-client.Send:
		var ev BookingEvent
		if err := json.Unmarshal(msg, &ev); err != nil {
			t.Fatalf("decode event: %v", err)
		}
		if ev.Type != EventBookingCreated || ev.BookingID != b.ID {
			t.Fatalf("event = %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}
