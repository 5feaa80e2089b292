package services

import (
	"bytes"
	"fmt"

	"rageroom-backend/models"
	"rageroom-backend/utils"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
)

// WhatsAppMessageFor maps a booking onto the deep link message.
func WhatsAppMessageFor(b *models.Booking) utils.WhatsAppMessage {
	m := utils.WhatsAppMessage{
		CustomerName: b.CustomerName,
		BookingDate:  b.BookingDate,
		TimeSlot:     b.TimeSlot,
		PaymentType:  string(b.PaymentType),
	}
	if b.Notes != nil {
		m.Notes = *b.Notes
	}
	return m
}

// ReceiptService renders booking confirmations. The QR code opens the same WhatsApp
// conversation as the booking's deep link.
type ReceiptService struct {
	WhatsAppNumber string
}

func NewReceiptService(whatsAppNumber string) *ReceiptService {
	return &ReceiptService{WhatsAppNumber: whatsAppNumber}
}

func (s *ReceiptService) Render(b *models.Booking, room models.RoomInfo) ([]byte, error) {
	link := utils.BuildWhatsAppURL(s.WhatsAppNumber, WhatsAppMessageFor(b))
	qrPNG, err := qrcode.Encode(link, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(0, 10, tr(room.Title))
	pdf.Ln(12)
	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 8, tr("Comprovante de agendamento"))
	pdf.Ln(14)

	rows := [][2]string{
		{"Codigo", b.ID},
		{"Cliente", b.CustomerName},
		{"Data", utils.FormatDateBR(b.BookingDate)},
		{"Horario", utils.SlotLabel(b.TimeSlot)},
		{"Tipo", utils.PaymentLabel(string(b.PaymentType))},
		{"Status", utils.StatusLabel(string(b.Status))},
	}
	if b.PaymentType == models.PaymentPaid {
		rows = append(rows, [2]string{"Valor", fmt.Sprintf("R$ %.2f", room.PricePerDay)})
	}
	if b.Notes != nil {
		rows = append(rows, [2]string{"Observacoes", *b.Notes})
	}
	for _, r := range rows {
		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(40, 8, tr(r[0]+":"))
		pdf.SetFont("Arial", "", 12)
		pdf.Cell(0, 8, tr(r[1]))
		pdf.Ln(8)
	}

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 40, 40, 40, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}
