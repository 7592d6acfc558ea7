package time

import (
	"testing"
	"time"

	perr "weatherjar/internal/platform/errors"
)

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2024-01-01")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if !got.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("ParseDate = %v", got)
	}

	for _, bad := range []string{"2024-13-01", "01/01/2024", "2024-1-1", ""} {
		_, err := ParseDate(bad)
		if !perr.IsCode(err, perr.ErrorCodeInvalidDate) {
			t.Fatalf("ParseDate(%q) err = %v, want InvalidDate", bad, err)
		}
	}
}

func TestParseMonthAndHour(t *testing.T) {
	m, err := ParseMonth("2024-02")
	if err != nil || FormatDate(m) != "2024-02-01" {
		t.Fatalf("ParseMonth = %v, %v", m, err)
	}
	if _, err := ParseMonth("2024-2-x"); !perr.IsCode(err, perr.ErrorCodeInvalidDate) {
		t.Fatalf("ParseMonth bad err = %v", err)
	}

	h, err := ParseHour("2024-01-01T13:00")
	if err != nil || h.Hour() != 13 {
		t.Fatalf("ParseHour = %v, %v", h, err)
	}
}

func TestNaiveKeepsWallClock(t *testing.T) {
	denver, err := time.LoadLocation("America/Denver")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	local := time.Date(2024, 7, 4, 23, 30, 0, 0, denver)
	n := Naive(local)
	if n.Location() != time.UTC || n.Hour() != 23 || n.Day() != 4 {
		t.Fatalf("Naive = %v", n)
	}
	if got := Today(local, denver); FormatDate(got) != "2024-07-04" {
		t.Fatalf("Today = %v", got)
	}
}

func TestTruncation(t *testing.T) {
	ts := time.Date(2024, 3, 17, 18, 0, 0, 0, time.UTC)
	if FormatDate(StartOfDay(ts)) != "2024-03-17" || StartOfDay(ts).Hour() != 0 {
		t.Fatalf("StartOfDay = %v", StartOfDay(ts))
	}
	if FormatMonth(StartOfMonth(ts)) != "2024-03" || StartOfMonth(ts).Day() != 1 {
		t.Fatalf("StartOfMonth = %v", StartOfMonth(ts))
	}
}

func TestDays(t *testing.T) {
	start, _ := ParseDate("2024-02-27")
	end, _ := ParseDate("2024-03-01")
	days := Days(start, end)
	want := []string{"2024-02-27", "2024-02-28", "2024-02-29", "2024-03-01"}
	if len(days) != len(want) {
		t.Fatalf("Days len = %d", len(days))
	}
	for i, d := range days {
		if FormatDate(d) != want[i] {
			t.Fatalf("Days[%d] = %s, want %s", i, FormatDate(d), want[i])
		}
	}
	if Days(end, start) != nil {
		t.Fatalf("reversed range should be empty")
	}
	if len(Days(start, start)) != 1 {
		t.Fatalf("single day range should have one entry")
	}
}
