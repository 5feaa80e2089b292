package services

import (
	"fmt"

	"rageroom-backend/models"
	"rageroom-backend/utils"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Agendamentos"

var exportHeaders = []string{"Data", "Horario", "Cliente", "Telefone", "Tipo", "Status", "Observacoes", "Criado em"}

// ExportBookings writes bookings into a single-sheet workbook, one row per booking.
func ExportBookings(bookings []models.Booking) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, h := range exportHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(exportSheet, cell, h); err != nil {
			return nil, fmt.Errorf("failed to write header %s: %w", cell, err)
		}
		if err := f.SetCellStyle(exportSheet, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("failed to style header %s: %w", cell, err)
		}
	}

	for i, b := range bookings {
		row := i + 2
		values := []any{
			utils.FormatDateBR(b.BookingDate),
			utils.SlotLabel(b.TimeSlot),
			b.CustomerName,
			deref(b.CustomerPhone),
			utils.PaymentLabel(string(b.PaymentType)),
			utils.StatusLabel(string(b.Status)),
			deref(b.Notes),
			b.CreatedAt.Format("02/01/2006 15:04"),
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(exportSheet, cell, v); err != nil {
				return nil, fmt.Errorf("failed to write %s: %w", cell, err)
			}
		}
	}

	for _, w := range []struct {
		from, to string
		width    float64
	}{
		{"A", "B", 14},
		{"C", "C", 30},
		{"D", "F", 16},
		{"G", "G", 40},
		{"H", "H", 18},
	} {
		if err := f.SetColWidth(exportSheet, w.from, w.to, w.width); err != nil {
			return nil, fmt.Errorf("failed to size columns %s:%s: %w", w.from, w.to, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
