package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the wire and storage format of booking dates.
const DateLayout = "2006-01-02"

// ParseDate accepts YYYY-MM-DD and returns the canonical string form.
func ParseDate(raw string) (string, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}
	return t.Format(DateLayout), nil
}

// MonthRange returns the first and last calendar day of month/year as YYYY-MM-DD.
func MonthRange(month, year string) (string, string, error) {
	m, err := strconv.Atoi(strings.TrimSpace(month))
	if err != nil || m < 1 || m > 12 {
		return "", "", fmt.Errorf("invalid month %q", month)
	}
	y, err := strconv.Atoi(strings.TrimSpace(year))
	if err != nil || y < 1 || y > 9999 {
		return "", "", fmt.Errorf("invalid year %q", year)
	}

	first := time.Date(y, time.Month(m), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first.Format(DateLayout), last.Format(DateLayout), nil
}

// FormatDateBR renders YYYY-MM-DD as dd/mm/yyyy; unparseable input is returned unchanged.
func FormatDateBR(date string) string {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return date
	}
	return t.Format("02/01/2006")
}
