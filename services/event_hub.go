package services

import (
	"encoding/json"
	"log/slog"
	"time"

	"rageroom-backend/models"
)

const (
	EventBookingCreated       = "booking.created"
	EventBookingStatusChanged = "booking.status_changed"
	EventBookingDeleted       = "booking.deleted"
)

type BookingEvent struct {
	Type      string          `json:"type"`
	BookingID string          `json:"booking_id"`
	Booking   *models.Booking `json:"booking,omitempty"`
	At        time.Time       `json:"at"`
}

// EventClient is one subscriber. Send is closed by the hub when the client is dropped.
type EventClient struct {
	Send chan []byte
	// durable clients stay registered when their buffer is full; they miss that event instead.
	durable bool
}

func NewEventClient(buffer int) *EventClient {
	return &EventClient{Send: make(chan []byte, buffer)}
}

// NewDurableEventClient is for in-process consumers that must outlive a burst of events.
func NewDurableEventClient(buffer int) *EventClient {
	return &EventClient{Send: make(chan []byte, buffer), durable: true}
}

// EventHub fans booking events out to connected admin dashboards.
type EventHub struct {
	clients    map[*EventClient]struct{}
	register   chan *EventClient
	unregister chan *EventClient
	broadcast  chan []byte
	quit       chan struct{}
	logger     *slog.Logger
}

func NewEventHub(logger *slog.Logger) *EventHub {
	return &EventHub{
		clients:    make(map[*EventClient]struct{}),
		register:   make(chan *EventClient),
		unregister: make(chan *EventClient),
		broadcast:  make(chan []byte, 64),
		quit:       make(chan struct{}),
		logger:     logger,
	}
}

func (h *EventHub) Run() {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = struct{}{}
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.Send)
			}
		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.Send <- msg:
				default:
					if c.durable {
						h.logger.Warn("booking event skipped for busy subscriber")
						continue
					}
					// slow consumer
					delete(h.clients, c)
					close(c.Send)
				}
			}
		case <-h.quit:
			for c := range h.clients {
				delete(h.clients, c)
				close(c.Send)
			}
			return
		}
	}
}

func (h *EventHub) Stop() {
	close(h.quit)
}

// Register adds c; it returns false when the hub has stopped.
func (h *EventHub) Register(c *EventClient) bool {
	select {
	case h.register <- c:
		return true
	case <-h.quit:
		return false
	}
}

func (h *EventHub) Unregister(c *EventClient) {
	select {
	case h.unregister <- c:
	case <-h.quit:
	}
}

// Publish never blocks the caller: events are dropped when the hub is saturated or stopped.
func (h *EventHub) Publish(ev BookingEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("failed to encode booking event", "type", ev.Type, "err", err)
		return
	}
	select {
	case h.broadcast <- data:
	case <-h.quit:
	default:
		h.logger.Warn("booking event dropped", "type", ev.Type, "booking_id", ev.BookingID)
	}
}
