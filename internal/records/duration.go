package records

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// ParseDuration interprets a duration cell. Accepted forms are "H:MM:SS",
// "H:MM", and a bare number of minutes ("90", "12.5"). An empty cell is a
// valid zero. Anything else, including negative, non-finite, or out of range
// values, yields zero with ok=false so callers can count it as a data-quality
// defect.
func ParseDuration(cell string) (d time.Duration, ok bool) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return 0, true
	}
	if strings.Contains(s, ":") {
		return parseClock(s)
	}
	minutes, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(minutes) || minutes < 0 || minutes >= maxMinutes {
		return 0, false
	}
	return time.Duration(minutes * float64(time.Minute)), true
}

// maxMinutes bounds bare-minute cells so the conversion cannot overflow.
const maxMinutes = float64(math.MaxInt64 / int64(time.Minute))

func parseClock(s string) (time.Duration, bool) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}
	units := []time.Duration{time.Hour, time.Minute, time.Second}
	var total time.Duration
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 {
			return 0, false
		}
		if i > 0 && n >= 60 {
			return 0, false
		}
		if int64(n) > (math.MaxInt64-int64(total))/int64(units[i]) {
			return 0, false
		}
		total += time.Duration(n) * units[i]
	}
	return total, true
}

// FormatClock renders d as H:MM:SS, the export's own notation.
func FormatClock(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	return sign + strconv.FormatInt(int64(h), 10) + ":" + pad2(int64(m)) + ":" + pad2(int64(s))
}

func pad2(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}
