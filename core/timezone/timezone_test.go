package timezone

import (
	"testing"
	"time"
)

func mustParse(t *testing.T, s string) time.Time {
	t.Helper()
	tm, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("time.Parse(%q): %v", s, err)
	}
	return tm
}

func TestDayKey(t *testing.T) {
	tests := []struct {
		name string
		at   string
		want string
	}{
		{name: "late UTC evening rolls into next IST day", at: "2024-01-10T23:45:00Z", want: "2024-01-11"},
		{name: "just after UTC midnight", at: "2024-01-11T00:15:00Z", want: "2024-01-11"},
		{name: "just before IST midnight", at: "2024-01-10T18:29:59Z", want: "2024-01-10"},
		{name: "exactly IST midnight", at: "2024-01-10T18:30:00Z", want: "2024-01-11"},
		{name: "already in another zone", at: "2024-03-01T06:00:00-08:00", want: "2024-03-01"},
		{name: "year boundary", at: "2023-12-31T19:00:00Z", want: "2024-01-01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DayKey(mustParse(t, tt.at)); got != tt.want {
				t.Errorf("DayKey() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSameDay_acrossUTCMidnight(t *testing.T) {
	a := mustParse(t, "2024-01-10T23:45:00Z")
	b := mustParse(t, "2024-01-11T00:15:00Z")
	if !SameDay(a, b) {
		t.Errorf("SameDay(%v, %v) = false, want true", a, b)
	}
}

func TestStartOfDay(t *testing.T) {
	got := StartOfDay(mustParse(t, "2024-01-10T23:45:00Z"))
	want := mustParse(t, "2024-01-10T18:30:00Z")
	if !got.Equal(want) {
		t.Errorf("StartOfDay() = %v, want %v", got, want)
	}
	if got.Location() != IST {
		t.Errorf("StartOfDay() location = %v, want IST", got.Location())
	}
	if end := EndOfDay(got); DayKey(end) != "2024-01-11" || DayKey(end.Add(time.Nanosecond)) != "2024-01-12" {
		t.Errorf("EndOfDay() = %v", end)
	}
}

func TestParseDayKey(t *testing.T) {
	got, err := ParseDayKey("2024-02-29")
	if err != nil {
		t.Fatalf("ParseDayKey() error = %v", err)
	}
	if DayKey(got) != "2024-02-29" || !got.Equal(StartOfDay(got)) {
		t.Errorf("ParseDayKey() = %v", got)
	}
	if _, err := ParseDayKey("2024-02-30"); err == nil {
		t.Error("ParseDayKey() want error for invalid date")
	}
}

func TestAddDaysAndDaysBetween(t *testing.T) {
	now := mustParse(t, "2024-03-01T02:00:00Z") // 07:30 IST
	tests := []struct {
		n       int
		wantKey string
	}{
		{n: 0, wantKey: "2024-03-01"},
		{n: -1, wantKey: "2024-02-29"},
		{n: 30, wantKey: "2024-03-31"},
		{n: -60, wantKey: "2024-01-01"},
	}
	for _, tt := range tests {
		got := AddDays(now, tt.n)
		if DayKey(got) != tt.wantKey {
			t.Errorf("AddDays(%d) = %v, want %v", tt.n, DayKey(got), tt.wantKey)
		}
		if d := DaysBetween(now, got); d != tt.n {
			t.Errorf("DaysBetween(now, AddDays(%d)) = %d", tt.n, d)
		}
	}
	// 23:59 IST and 00:01 IST the next day are one day apart
	a := mustParse(t, "2024-03-01T18:29:00Z")
	b := mustParse(t, "2024-03-01T18:31:00Z")
	if d := DaysBetween(a, b); d != 1 {
		t.Errorf("DaysBetween() = %d, want 1", d)
	}
}
