package records_test

import (
	"testing"
	"time"

	"tccretro/internal/records"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in     string
		want   time.Duration
		wantOK bool
	}{
		{"", 0, true},
		{"  ", 0, true},
		{"01:30:00", 90 * time.Minute, true},
		{"0:05:30", 5*time.Minute + 30*time.Second, true},
		{"25:00:00", 25 * time.Hour, true},
		{"1:15", 75 * time.Minute, true},
		{"90", 90 * time.Minute, true},
		{"12.5", 12*time.Minute + 30*time.Second, true},
		{"abc", 0, false},
		{"-5", 0, false},
		{"1:75:00", 0, false},
		{"1:2:3:4", 0, false},
		{"1:xx", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"-Inf", 0, false},
		{"1e300", 0, false},
		{"99999999999:00:00", 0, false},
		{"2562047:00:00", 2562047 * time.Hour, true},
	}
	for _, tc := range tests {
		got, ok := records.ParseDuration(tc.in)
		if got != tc.want || ok != tc.wantOK {
			t.Fatalf("ParseDuration(%q) = %v, %v; want %v, %v", tc.in, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestFormatClock(t *testing.T) {
	tests := map[time.Duration]string{
		0:                            "0:00:00",
		90 * time.Minute:             "1:30:00",
		26*time.Hour + 5*time.Second: "26:00:05",
		-(20 * time.Minute):          "-0:20:00",
		1500 * time.Millisecond:      "0:00:02",
	}
	for in, want := range tests {
		if got := records.FormatClock(in); got != want {
			t.Fatalf("FormatClock(%v) = %q, want %q", in, got, want)
		}
	}
}
