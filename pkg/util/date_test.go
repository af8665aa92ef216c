package util

import (
	"testing"
	"time"
)

func TestMonthName(t *testing.T) {
	if got := MonthName(1); got != "January" {
		t.Fatalf("unexpected %q", got)
	}
	if got := MonthName(12); got != "December" {
		t.Fatalf("unexpected %q", got)
	}
	if got := MonthName(13); got != "" {
		t.Fatalf("expected empty for 13, got %q", got)
	}
}

func TestMonthStepWraps(t *testing.T) {
	want := []struct{ month, off int }{{11, 0}, {12, 0}, {1, 1}, {2, 1}}
	for i, w := range want {
		m, off := MonthStep(11, i+1)
		if m != w.month || off != w.off {
			t.Fatalf("step %d: got (%d,%d) want (%d,%d)", i+1, m, off, w.month, w.off)
		}
	}
	if m, off := MonthStep(1, 25); m != 1 || off != 2 {
		t.Fatalf("step 25 from January: got (%d,%d)", m, off)
	}
}

func TestParseTimeSQLDateTime(t *testing.T) {
	got, ok := ParseTime("2024-10-10 10:10:10")
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Year() != 2024 || got.Hour() != 10 {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeDefault(t *testing.T) {
	def := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC)
	got := ParseTimeDefault("garbage", def)
	if !got.Equal(def) {
		t.Fatalf("expected default")
	}
}

func TestParseIntDefaultFromDateTests(t *testing.T) {
	if ParseIntDefault("", 6) != 6 || ParseIntDefault("x", 6) != 6 || ParseIntDefault("12", 6) != 12 {
		t.Fatalf("unexpected ParseIntDefault result")
	}
}
