package services

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"rageroom-backend/models"
	"rageroom-backend/utils"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []utils.Mail
	done chan struct{}
}

func (r *recordingMailer) SendMail(m utils.Mail) error {
	r.mu.Lock()
	r.sent = append(r.sent, m)
	r.mu.Unlock()
	r.done <- struct{}{}
	return nil
}

func TestAdminNotifierMailsPendingBookings(t *testing.T) {
	hub := NewEventHub(discardLogger())
	go hub.Run()
	defer hub.Stop()

	mailer := &recordingMailer{done: make(chan struct{}, 64)}
	n := NewAdminNotifier(mailer, []string{"admin@example.com"}, discardLogger())
	go n.Run(hub)

	// Run registers asynchronously; a sentinel proves the notifier is subscribed
	// once it has seen an event published after it.
	deadline := time.After(2 * time.Second)
	for {
		hub.Publish(BookingEvent{Type: EventBookingCreated, BookingID: "pending",
			Booking: &models.Booking{ID: "pending", BookingDate: "2025-06-10", TimeSlot: "afternoon",
				CustomerName: "Bruno", PaymentType: models.PaymentPaid, Status: models.StatusPending}})
		select {
		case <-mailer.done:
		case <-time.After(50 * time.Millisecond):
			continue
		case <-deadline:
			t.Fatal("notifier never mailed")
		}
		break
	}

	mailer.mu.Lock()
	defer mailer.mu.Unlock()
	m := mailer.sent[0]
	if m.To[0] != "admin@example.com" || !strings.Contains(m.Subject, "10/06/2025 Tarde") || !strings.Contains(m.Plain, "Bruno") {
		t.Fatalf("mail = %+v", m)
	}
}

// gatedMailer blocks its first delivery until release is closed.
type gatedMailer struct {
	once    sync.Once
	started chan struct{}
	release chan struct{}
	sent    chan string
}

func (g *gatedMailer) SendMail(m utils.Mail) error {
	g.once.Do(func() { close(g.started) })
	<-g.release
	g.sent <- m.Plain
	return nil
}

func pendingEvent(id, name string) BookingEvent {
	return BookingEvent{Type: EventBookingCreated, BookingID: id,
		Booking: &models.Booking{ID: id, BookingDate: "2025-06-10", TimeSlot: "afternoon",
			CustomerName: name, PaymentType: models.PaymentPaid, Status: models.StatusPending}}
}

func TestAdminNotifierSurvivesBurst(t *testing.T) {
	hub := NewEventHub(discardLogger())
	go hub.Run()
	defer hub.Stop()

	mailer := &gatedMailer{started: make(chan struct{}), release: make(chan struct{}), sent: make(chan string, 64)}
	n := NewAdminNotifier(mailer, []string{"admin@example.com"}, discardLogger())
	n.Buffer = 4
	stopped := make(chan struct{})
	go func() {
		n.Run(hub)
		close(stopped)
	}()

	deadline := time.After(2 * time.Second)
subscribed:
	for {
		hub.Publish(pendingEvent("first", "Ana"))
		select {
		case <-mailer.started:
			break subscribed
		case <-time.After(50 * time.Millisecond):
		case <-deadline:
			t.Fatal("notifier never subscribed")
		}
	}

	// overflow the notifier buffer while its mailer is stuck
	sentinel := NewEventClient(64)
	hub.Register(sentinel)
	for i := 0; i < 40; i++ {
		hub.Publish(pendingEvent(fmt.Sprintf("burst-%d", i), "Bruno"))
	}
	for i := 0; i < 40; i++ {
		select {
		case <-sentinel.Send:
		case <-time.After(2 * time.Second):
			t.Fatal("burst not delivered to sentinel")
		}
	}
	close(mailer.release)

	select {
	case <-stopped:
		t.Fatal("notifier stopped after the burst")
	default:
	}

	// the buffer drains asynchronously, so keep publishing until one copy gets through
	timeout := time.After(2 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	hub.Publish(pendingEvent("later", "Carla"))
	for {
		select {
		case plain := <-mailer.sent:
			if strings.Contains(plain, "Carla") {
				return
			}
		case <-tick.C:
			hub.Publish(pendingEvent("later", "Carla"))
		case <-timeout:
			t.Fatal("booking published after the burst was never mailed")
		}
	}
}

func TestAdminNotifierIgnoresApprovedBookings(t *testing.T) {
	mailer := &recordingMailer{done: make(chan struct{}, 1)}
	n := NewAdminNotifier(mailer, []string{"admin@example.com"}, discardLogger())

	n.handle(BookingEvent{Type: EventBookingCreated, Booking: &models.Booking{Status: models.StatusApproved}})
	n.handle(BookingEvent{Type: EventBookingDeleted, BookingID: "x"})
	if len(mailer.sent) != 0 {
		t.Fatalf("sent %d mails", len(mailer.sent))
	}
}
