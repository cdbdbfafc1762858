package calendar_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"tccretro/internal/calendar"
)

func d(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func TestHolidayTable2025(t *testing.T) {
	want := map[time.Time]string{
		d(2025, 1, 1):   "元日",
		d(2025, 1, 13):  "成人の日",
		d(2025, 2, 11):  "建国記念の日",
		d(2025, 2, 23):  "天皇誕生日",
		d(2025, 2, 24):  "振替休日",
		d(2025, 3, 20):  "春分の日",
		d(2025, 4, 29):  "昭和の日",
		d(2025, 5, 3):   "憲法記念日",
		d(2025, 5, 4):   "みどりの日",
		d(2025, 5, 5):   "こどもの日",
		d(2025, 5, 6):   "振替休日",
		d(2025, 7, 21):  "海の日",
		d(2025, 8, 11):  "山の日",
		d(2025, 9, 15):  "敬老の日",
		d(2025, 9, 23):  "秋分の日",
		d(2025, 10, 13): "スポーツの日",
		d(2025, 11, 3):  "文化の日",
		d(2025, 11, 23): "勤労感謝の日",
		d(2025, 11, 24): "振替休日",
	}
	got := calendar.NewHolidayTable(4).Year(2025)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("2025 holidays mismatch (-want +got):\n%s", diff)
	}
}

func TestHolidaySpecialYears(t *testing.T) {
	table := calendar.NewHolidayTable(4)
	tests := []struct {
		date time.Time
		want string
	}{
		{d(2019, 4, 30), "国民の休日"},
		{d(2019, 5, 1), "天皇の即位の日"},
		{d(2019, 5, 2), "国民の休日"},
		{d(2019, 5, 6), "振替休日"},
		{d(2019, 10, 22), "即位礼正殿の儀の行われる日"},
		{d(2018, 12, 23), "天皇誕生日"},
		{d(2020, 7, 23), "海の日"},
		{d(2020, 7, 24), "スポーツの日"},
		{d(2020, 8, 10), "山の日"},
		{d(2021, 8, 9), "振替休日"},
		{d(2026, 9, 22), "国民の休日"},
		{d(2015, 9, 22), "国民の休日"},
		{d(2006, 4, 29), "みどりの日"},
		{d(2002, 7, 20), "海の日"},
		{d(2019, 10, 14), "体育の日"},
	}
	for _, tc := range tests {
		got, ok := table.Lookup(tc.date)
		if !ok || got != tc.want {
			t.Fatalf("Lookup(%s) = %q, %v; want %q", tc.date.Format(calendar.DateLayout), got, ok, tc.want)
		}
	}

	for _, notHoliday := range []time.Time{d(2019, 12, 23), d(2020, 7, 20), d(2020, 10, 12), d(2021, 8, 11), d(1999, 1, 1), d(2100, 1, 1)} {
		if name, ok := table.Lookup(notHoliday); ok {
			t.Fatalf("expected %s to be an ordinary day, got %q", notHoliday.Format(calendar.DateLayout), name)
		}
	}
}

func TestResolveExplicitRange(t *testing.T) {
	r := calendar.NewResolver()
	rg, err := calendar.NewRange(d(2025, 11, 1), d(2025, 11, 3))
	if err != nil {
		t.Fatalf("NewRange: %v", err)
	}
	got, days := r.Resolve(&rg, nil)
	if got != rg {
		t.Fatalf("unexpected effective range %v", got)
	}
	want := []calendar.Day{
		{Date: d(2025, 11, 1), Weekday: time.Saturday, Weekend: true},
		{Date: d(2025, 11, 2), Weekday: time.Sunday, Weekend: true},
		{Date: d(2025, 11, 3), Weekday: time.Monday, Holiday: true, HolidayName: "文化の日"},
	}
	if diff := cmp.Diff(want, days); diff != "" {
		t.Fatalf("days mismatch (-want +got):\n%s", diff)
	}
	if days[2].Kind() != "holiday" || days[0].Kind() != "weekend" {
		t.Fatalf("unexpected kinds: %s %s", days[2].Kind(), days[0].Kind())
	}
}

func TestResolveFromRecordDates(t *testing.T) {
	clock := calendar.ClockFunc(func() time.Time {
		t.Fatal("clock must not be consulted when dates are present")
		return time.Time{}
	})
	r := calendar.NewResolver(calendar.WithClock(clock))
	rg, days := r.Resolve(nil, []time.Time{d(2025, 11, 24), {}, d(2025, 11, 20), d(2025, 11, 24)})
	if rg.Start != d(2025, 11, 20) || rg.End != d(2025, 11, 24) {
		t.Fatalf("unexpected range %v", rg)
	}
	if len(days) != 5 {
		t.Fatalf("expected one entry per date, got %d", len(days))
	}
	for i := 1; i < len(days); i++ {
		if !days[i].Date.After(days[i-1].Date) {
			t.Fatalf("days not ascending at %d", i)
		}
	}
	if !days[4].Holiday || days[4].HolidayName != "振替休日" {
		t.Fatalf("expected substitute holiday on 11/24, got %+v", days[4])
	}
}

func TestResolveFallsBackToYesterday(t *testing.T) {
	jst := time.FixedZone("JST", 9*3600)
	now := time.Date(2026, 1, 1, 0, 30, 0, 0, jst)
	r := calendar.NewResolver(calendar.WithClock(calendar.ClockFunc(func() time.Time { return now })))
	rg, days := r.Resolve(nil, nil)
	if rg.Start != d(2025, 12, 31) || rg.End != d(2025, 12, 31) {
		t.Fatalf("expected yesterday in clock's zone, got %v", rg)
	}
	if len(days) != 1 || days[0].Weekday != time.Wednesday {
		t.Fatalf("unexpected days %+v", days)
	}
}

func TestNewRangeRejectsReversed(t *testing.T) {
	_, err := calendar.NewRange(d(2025, 11, 3), d(2025, 11, 1))
	if !errors.Is(err, calendar.ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
	rg := calendar.SingleDay(time.Date(2025, 11, 3, 15, 4, 5, 0, time.UTC))
	if rg.Days() != 1 || rg.String() != "2025-11-03" {
		t.Fatalf("unexpected single day range %v", rg)
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	r := calendar.NewResolver()
	rg, _ := calendar.NewRange(d(2025, 1, 1), d(2025, 12, 31))
	first := r.Days(rg)
	second := calendar.NewResolver().Days(rg)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("resolver output differs across instances:\n%s", diff)
	}
	if len(first) != 365 {
		t.Fatalf("expected 365 days, got %d", len(first))
	}
}
