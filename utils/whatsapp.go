package utils

import (
	"fmt"
	"net/url"
	"strings"
)

// RoomTitle appears in outbound messages and documents.
const RoomTitle = "Sala da Raiva Joinville"

// WhatsAppMessage holds the booking fields the deep link message is built from.
type WhatsAppMessage struct {
	CustomerName string
	BookingDate  string
	TimeSlot     string
	PaymentType  string
	Notes        string
}

// BuildWhatsAppURL returns a wa.me link that opens a chat with number prefilled with the booking request.
// number is in international format without "+", spaces or dashes.
func BuildWhatsAppURL(number string, m WhatsAppMessage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*Nova Solicitacao de Agendamento - %s*\n\n", RoomTitle)
	fmt.Fprintf(&b, "*Cliente:* %s\n", m.CustomerName)
	fmt.Fprintf(&b, "*Data:* %s\n", FormatDateBR(m.BookingDate))
	fmt.Fprintf(&b, "*Horario:* %s\n", SlotLabel(m.TimeSlot))
	fmt.Fprintf(&b, "*Tipo:* %s\n", PaymentLabel(m.PaymentType))
	if m.Notes != "" {
		fmt.Fprintf(&b, "*Observacoes:* %s\n", m.Notes)
	}
	if m.PaymentType == "paid" {
		b.WriteString("\n_Este agendamento requer aprovacao do administrador._")
	}

	// wa.me expects %20 for spaces, not the form encoding "+".
	text := strings.ReplaceAll(url.QueryEscape(b.String()), "+", "%20")
	return fmt.Sprintf("https://wa.me/%s?text=%s", number, text)
}
