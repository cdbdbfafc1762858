package main

import (
	"errors"
	"fmt"
	"strings"

	"tccretro/internal/calendar"
	"tccretro/internal/records"
)

// rangeFlags holds --date/--start/--end values.
type rangeFlags struct {
	date  string
	start string
	end   string
}

// resolve returns nil when no range was requested. --date excludes the pair,
// and --start/--end must be given together.
func (f rangeFlags) resolve(layouts []string) (*calendar.Range, error) {
	date := strings.TrimSpace(f.date)
	start := strings.TrimSpace(f.start)
	end := strings.TrimSpace(f.end)

	switch {
	case date != "" && (start != "" || end != ""):
		return nil, errors.New("--date cannot be combined with --start/--end")
	case date != "":
		d, err := records.ParseDate(date, layouts)
		if err != nil {
			return nil, fmt.Errorf("--date: %w", err)
		}
		rg := calendar.SingleDay(d)
		return &rg, nil
	case start == "" && end == "":
		return nil, nil
	case start == "" || end == "":
		return nil, errors.New("--start and --end must be given together")
	}

	s, err := records.ParseDate(start, layouts)
	if err != nil {
		return nil, fmt.Errorf("--start: %w", err)
	}
	e, err := records.ParseDate(end, layouts)
	if err != nil {
		return nil, fmt.Errorf("--end: %w", err)
	}
	rg, err := calendar.NewRange(s, e)
	if err != nil {
		return nil, err
	}
	return &rg, nil
}
