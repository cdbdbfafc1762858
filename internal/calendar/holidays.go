package calendar

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Holiday table coverage. Years outside the range resolve to no holidays.
const (
	MinHolidayYear = 2000
	MaxHolidayYear = 2099
)

const (
	nameSubstitute = "振替休日"
	nameCitizens   = "国民の休日"
)

// HolidayTable answers Japanese national holiday lookups. Each year's table is
// computed once and kept in a bounded cache.
type HolidayTable struct {
	years *lru.Cache[int, map[time.Time]string]
}

// NewHolidayTable returns a table caching up to size years.
func NewHolidayTable(size int) *HolidayTable {
	if size <= 0 {
		size = 16
	}
	cache, err := lru.New[int, map[time.Time]string](size)
	if err != nil {
		// lru.New only fails on a non-positive size.
		panic(err)
	}
	return &HolidayTable{years: cache}
}

// Lookup returns the official holiday name for date.
func (t *HolidayTable) Lookup(date time.Time) (string, bool) {
	date = civil(date)
	name, ok := t.year(date.Year())[date]
	return name, ok
}

// Year returns a copy of the holiday table for year.
func (t *HolidayTable) Year(year int) map[time.Time]string {
	src := t.year(year)
	out := make(map[time.Time]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

func (t *HolidayTable) year(year int) map[time.Time]string {
	if table, ok := t.years.Get(year); ok {
		return table
	}
	table := buildYear(year)
	t.years.Add(year, table)
	return table
}

func buildYear(year int) map[time.Time]string {
	table := make(map[time.Time]string, 20)
	if year < MinHolidayYear || year > MaxHolidayYear {
		return table
	}
	set := func(month time.Month, day int, name string) {
		table[date(year, month, day)] = name
	}

	set(time.January, 1, "元日")
	table[nthWeekday(year, time.January, time.Monday, 2)] = "成人の日"
	set(time.February, 11, "建国記念の日")
	if year >= 2020 {
		set(time.February, 23, "天皇誕生日")
	}
	set(time.March, vernalEquinoxDay(year), "春分の日")
	if year >= 2007 {
		set(time.April, 29, "昭和の日")
		set(time.May, 4, "みどりの日")
	} else {
		set(time.April, 29, "みどりの日")
	}
	set(time.May, 3, "憲法記念日")
	set(time.May, 5, "こどもの日")

	switch year {
	case 2020:
		set(time.July, 23, "海の日")
		set(time.July, 24, "スポーツの日")
		set(time.August, 10, "山の日")
	case 2021:
		set(time.July, 22, "海の日")
		set(time.July, 23, "スポーツの日")
		set(time.August, 8, "山の日")
	default:
		if year >= 2003 {
			table[nthWeekday(year, time.July, time.Monday, 3)] = "海の日"
		} else {
			set(time.July, 20, "海の日")
		}
		if year >= 2016 {
			set(time.August, 11, "山の日")
		}
		if year >= 2020 {
			table[nthWeekday(year, time.October, time.Monday, 2)] = "スポーツの日"
		} else {
			table[nthWeekday(year, time.October, time.Monday, 2)] = "体育の日"
		}
	}

	if year >= 2003 {
		table[nthWeekday(year, time.September, time.Monday, 3)] = "敬老の日"
	} else {
		set(time.September, 15, "敬老の日")
	}
	set(time.September, autumnalEquinoxDay(year), "秋分の日")
	set(time.November, 3, "文化の日")
	set(time.November, 23, "勤労感謝の日")
	if year <= 2018 {
		set(time.December, 23, "天皇誕生日")
	}
	if year == 2019 {
		set(time.May, 1, "天皇の即位の日")
		set(time.October, 22, "即位礼正殿の儀の行われる日")
	}

	named := make(map[time.Time]struct{}, len(table))
	for d := range table {
		named[d] = struct{}{}
	}
	addSubstitutes(table, named, year)
	addCitizensHolidays(table, named, year)
	return table
}

// addSubstitutes marks the first following non-holiday after a Sunday holiday.
func addSubstitutes(table map[time.Time]string, named map[time.Time]struct{}, year int) {
	for d := range named {
		if d.Weekday() != time.Sunday {
			continue
		}
		next := d.AddDate(0, 0, 1)
		if year >= 2007 {
			for {
				if _, ok := table[next]; !ok {
					break
				}
				next = next.AddDate(0, 0, 1)
			}
		} else if _, ok := table[next]; ok {
			continue
		}
		if next.Year() == year {
			table[next] = nameSubstitute
		}
	}
}

// addCitizensHolidays marks ordinary days sandwiched between two named holidays.
func addCitizensHolidays(table map[time.Time]string, named map[time.Time]struct{}, year int) {
	for d := range named {
		mid := d.AddDate(0, 0, 1)
		after := d.AddDate(0, 0, 2)
		if _, ok := named[after]; !ok {
			continue
		}
		if _, ok := table[mid]; ok {
			continue
		}
		if year < 2007 && mid.Weekday() == time.Sunday {
			continue
		}
		table[mid] = nameCitizens
	}
}

// vernalEquinoxDay approximates the March equinox for 1980-2099.
func vernalEquinoxDay(year int) int {
	n := year - 1980
	return int(20.8431 + 0.242194*float64(n) - float64(n/4))
}

// autumnalEquinoxDay approximates the September equinox for 1980-2099.
func autumnalEquinoxDay(year int) int {
	n := year - 1980
	return int(23.2488 + 0.242194*float64(n) - float64(n/4))
}

func nthWeekday(year int, month time.Month, wd time.Weekday, n int) time.Time {
	first := date(year, month, 1)
	offset := (int(wd) - int(first.Weekday()) + 7) % 7
	return first.AddDate(0, 0, offset+7*(n-1))
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return date(y, m, d)
}
