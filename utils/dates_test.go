package utils

import "testing"

func TestMonthRange(t *testing.T) {
	cases := []struct {
		month, year string
		from, to    string
	}{
		{"6", "2025", "2025-06-01", "2025-06-30"},
		{"02", "2024", "2024-02-01", "2024-02-29"},
		{"2", "2025", "2025-02-01", "2025-02-28"},
		{"12", "2025", "2025-12-01", "2025-12-31"},
	}
	for _, tc := range cases {
		from, to, err := MonthRange(tc.month, tc.year)
		if err != nil {
			t.Fatalf("MonthRange(%s, %s): %v", tc.month, tc.year, err)
		}
		if from != tc.from || to != tc.to {
			t.Errorf("MonthRange(%s, %s) = %s..%s, want %s..%s", tc.month, tc.year, from, to, tc.from, tc.to)
		}
	}

	for _, bad := range [][2]string{{"0", "2025"}, {"13", "2025"}, {"x", "2025"}, {"5", "abc"}} {
		if _, _, err := MonthRange(bad[0], bad[1]); err == nil {
			t.Errorf("MonthRange(%s, %s) should fail", bad[0], bad[1])
		}
	}
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate(" 2025-06-10 ")
	if err != nil || got != "2025-06-10" {
		t.Fatalf("ParseDate = %q, %v", got, err)
	}
	for _, bad := range []string{"", "10/06/2025", "2025-13-01", "2025-02-30"} {
		if _, err := ParseDate(bad); err == nil {
			t.Errorf("ParseDate(%q) should fail", bad)
		}
	}
}

func TestFormatDateBR(t *testing.T) {
	if got := FormatDateBR("2025-06-10"); got != "10/06/2025" {
		t.Errorf("FormatDateBR = %q", got)
	}
	if got := FormatDateBR("garbage"); got != "garbage" {
		t.Errorf("FormatDateBR(garbage) = %q", got)
	}
}
