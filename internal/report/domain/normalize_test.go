package report

import (
	"math"
	"testing"
	"time"
)

func TestNormalizeDateKnownLayouts(t *testing.T) {
	cases := map[string]time.Time{
		"2024/1/5":             time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC),
		"2024-01-05":           time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC),
		"1/20/2024":            time.Date(2024, time.January, 20, 0, 0, 0, 0, time.UTC),
		"2024-01-05 13:45:01":  time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC),
		"2024年1月5日":            time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC),
		"2024-01-05T10:00:00Z": time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC),
	}
	for raw, want := range cases {
		got, ok := NormalizeDate(raw)
		if !ok {
			t.Errorf("NormalizeDate(%q) failed, want %s", raw, want.Format("2006-01-02"))
			continue
		}
		if !got.Equal(want) {
			t.Errorf("NormalizeDate(%q) = %s, want %s", raw, got, want)
		}
	}
}

func TestNormalizeDateSpreadsheetSerial(t *testing.T) {
	got, ok := NormalizeDate("45000")
	if !ok {
		t.Fatal("serial 45000 did not normalize")
	}
	want := time.Date(2023, time.March, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("serial 45000 = %s, want %s", got, want)
	}

	// Small all-digit values are not serials.
	if _, ok := NormalizeDate("999"); ok {
		t.Fatal("999 should not normalize as a serial")
	}
}

func TestNormalizeDateFractionalSerial(t *testing.T) {
	// Datetime cells read raw carry the time of day as a fraction.
	got, ok := NormalizeDate("45123.75")
	if !ok {
		t.Fatal("serial 45123.75 did not normalize")
	}
	want := time.Date(2023, time.July, 16, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("serial 45123.75 = %s, want %s", got, want)
	}

	// Dotted calendar dates are not serials.
	got, ok = NormalizeDate("2024.1.2")
	if !ok || !got.Equal(time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("2024.1.2 = %s (ok=%v), want 2024-01-02", got, ok)
	}

	// Small fractional values are plain numbers, not dates.
	if _, ok := NormalizeDate("12.5"); ok {
		t.Fatal("12.5 should not normalize as a serial")
	}
}

func TestNormalizeDateTotality(t *testing.T) {
	inputs := []string{"", "   ", "not a date", "13/45/9999", "--", "2024-99-99", "¥100"}
	for _, raw := range inputs {
		if _, ok := NormalizeDate(raw); ok {
			t.Errorf("NormalizeDate(%q) unexpectedly succeeded", raw)
		}
	}
}

func TestNormalizeAmount(t *testing.T) {
	cases := map[string]float64{
		"100.50":    100.50,
		"$50":       50,
		"¥1,234.56": 1234.56,
		"-12.5":     -12.5,
		"CNY 88":    88,
		"":          0,
		"abc":       0,
		"1.2.3":     0,
		"--":        0,
	}
	for raw, want := range cases {
		got := NormalizeAmount(raw)
		if math.IsNaN(got) || math.IsInf(got, 0) {
			t.Fatalf("NormalizeAmount(%q) is not finite", raw)
		}
		if got != want {
			t.Errorf("NormalizeAmount(%q) = %v, want %v", raw, got, want)
		}
	}
}
