package services

import (
	"encoding/json"
	"fmt"
	"html"
	"log/slog"

	"rageroom-backend/models"
	"rageroom-backend/utils"
)

// MailSender delivers one message.
type MailSender interface {
	SendMail(m utils.Mail) error
}

const notifierBuffer = 128

// AdminNotifier e-mails the administrators whenever a booking is created pending approval.
// It subscribes to the event hub as a durable client, so a slow mail server costs
// notifications for that burst but never the subscription.
type AdminNotifier struct {
	Mailer     MailSender
	Recipients []string
	Logger     *slog.Logger
	Buffer     int
}

func NewAdminNotifier(mailer MailSender, recipients []string, logger *slog.Logger) *AdminNotifier {
	return &AdminNotifier{Mailer: mailer, Recipients: recipients, Logger: logger, Buffer: notifierBuffer}
}

// Run blocks until the hub stops.
func (n *AdminNotifier) Run(hub *EventHub) {
	client := NewDurableEventClient(n.Buffer)
	if !hub.Register(client) {
		return
	}
	for msg := range client.Send {
		var ev BookingEvent
		if err := json.Unmarshal(msg, &ev); err != nil {
			n.Logger.Warn("notifier: undecodable event", "err", err)
			continue
		}
		n.handle(ev)
	}
}

func (n *AdminNotifier) handle(ev BookingEvent) {
	if ev.Type != EventBookingCreated || ev.Booking == nil || ev.Booking.Status != models.StatusPending {
		return
	}
	if len(n.Recipients) == 0 {
		return
	}
	m := pendingBookingMail(n.Recipients, ev.Booking)
	if err := n.Mailer.SendMail(m); err != nil {
		n.Logger.Error("failed to notify admins", "booking_id", ev.BookingID, "err", err)
		return
	}
	n.Logger.Info("admins notified", "booking_id", ev.BookingID, "recipients", len(n.Recipients))
}

func pendingBookingMail(to []string, b *models.Booking) utils.Mail {
	date := utils.FormatDateBR(b.BookingDate)
	slot := utils.SlotLabel(b.TimeSlot)
	payment := utils.PaymentLabel(string(b.PaymentType))

	return utils.Mail{
		To:      to,
		Subject: fmt.Sprintf("Agendamento aguardando aprovacao - %s %s", date, slot),
		Plain: fmt.Sprintf("Novo agendamento aguardando aprovacao.\n\nCliente: %s\nData: %s\nHorario: %s\nTipo: %s\n",
			b.CustomerName, date, slot, payment),
		HTML: fmt.Sprintf(`<p>Novo agendamento aguardando aprovacao.</p>
<ul>
<li><strong>Cliente:</strong> %s</li>
<li><strong>Data:</strong> %s</li>
<li><strong>Horario:</strong> %s</li>
<li><strong>Tipo:</strong> %s</li>
</ul>`, html.EscapeString(b.CustomerName), date, html.EscapeString(slot), payment),
	}
}

// LogMailer stands in when SMTP is not configured.
type LogMailer struct {
	Logger *slog.Logger
}

func (l LogMailer) SendMail(m utils.Mail) error {
	l.Logger.Info("mail delivery disabled", "to", m.To, "subject", m.Subject)
	return nil
}
